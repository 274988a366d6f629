package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		want   Category
		wantOK bool
	}{
		{"SPACE_EARTH", CategorySpaceEarth, true},
		{"space earth", CategorySpaceEarth, true},
		{"Space-Earth", CategorySpaceEarth, true},
		{"  animals_nature\n", CategoryAnimalsNature, true},
		{"\"ARTS_CULTURE\"", CategoryArtsCulture, true},
		{"World Records Fun Facts", CategoryWorldRecordsFunFacts, true},
		{"POLITICS", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseCategory(tc.input)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCategoryLabels(t *testing.T) {
	t.Parallel()

	all := AllCategories()
	require.Len(t, all, 7)
	for _, c := range all {
		assert.True(t, c.IsValid())
		assert.NotEqual(t, string(c), c.Label(), "every category should have a label")
	}
	assert.Equal(t, "Space & Earth", CategorySpaceEarth.Label())
	assert.Equal(t, "UNKNOWN", Category("UNKNOWN").Label())
	assert.Equal(t, CategoryScienceDiscovery, DefaultCategory)
}

func TestParseAgeRange(t *testing.T) {
	t.Parallel()

	r, err := ParseAgeRange(" 10-12 ")
	require.NoError(t, err)
	assert.Equal(t, AgeRange10To12, r)

	_, err = ParseAgeRange("13-15")
	assert.ErrorIs(t, err, ErrInvalidAgeRange)

	assert.Equal(t, AgeRange7To9, DefaultAgeRange)
}

func TestMonthlyBookPeriod(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateBookPeriod(2025, time.March))
	assert.ErrorIs(t, ValidateBookPeriod(2025, 13), ErrInvalidBookMonth)
	assert.ErrorIs(t, ValidateBookPeriod(0, time.March), ErrInvalidBookYear)
	assert.ErrorIs(t, ValidateBookPeriod(2025, 0), ErrValidation)

	assert.Equal(t, MonthlyBookID(2025, time.March), MonthlyBookID(2025, time.March))
	assert.NotEqual(t, MonthlyBookID(2025, time.March), MonthlyBookID(2025, time.April))

	book := &MonthlyBook{ID: MonthlyBookID(2025, time.March), Year: 2025, Month: time.March, Title: "t"}
	assert.NoError(t, book.Validate())
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), book.PeriodStart())
}
