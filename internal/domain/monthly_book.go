package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuizQuestion is one end-of-month quiz item.
type QuizQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MonthlyBook is the compiled collection of a month's processed events.
type MonthlyBook struct {
	ID             uuid.UUID      `json:"id"`
	Year           int            `json:"year"`
	Month          time.Month     `json:"month"`
	Title          string         `json:"title"`
	CoverImageURL  string         `json:"cover_image_url"`
	DailyEntries   []NewsEvent    `json:"daily_entries"`
	EndOfMonthQuiz []QuizQuestion `json:"end_of_month_quiz"`
	ParentsGuide   string         `json:"parents_guide"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// MonthlyBookID derives the book ID for a year and month. Assembling the
// same month twice yields the same ID.
func MonthlyBookID(year int, month time.Month) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("monthly-book/%04d-%02d", year, int(month))))
}

// ValidateBookPeriod checks a year and month pair.
func ValidateBookPeriod(year int, month time.Month) error {
	if year <= 0 {
		return ErrInvalidBookYear
	}
	if month < time.January || month > time.December {
		return ErrInvalidBookMonth
	}
	return nil
}

// Validate checks if the MonthlyBook has valid data.
func (b *MonthlyBook) Validate() error {
	if b.ID == uuid.Nil {
		return fmt.Errorf("%w: book ID cannot be empty", ErrValidation)
	}
	if err := ValidateBookPeriod(b.Year, b.Month); err != nil {
		return err
	}
	if b.Title == "" {
		return fmt.Errorf("%w: book title cannot be empty", ErrValidation)
	}
	return nil
}

// PeriodStart returns the first instant of the book's month in UTC.
func (b *MonthlyBook) PeriodStart() time.Time {
	return time.Date(b.Year, b.Month, 1, 0, 0, 0, 0, time.UTC)
}

// EntryIDs returns the IDs of the book's daily entries in order.
func (b *MonthlyBook) EntryIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.DailyEntries))
	for _, e := range b.DailyEntries {
		ids = append(ids, e.ID)
	}
	return ids
}
