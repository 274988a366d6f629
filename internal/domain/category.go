package domain

import "strings"

// Category is one of the fixed topical buckets an event is filed under.
type Category string

// The seven supported categories.
const (
	CategoryAnimalsNature          Category = "ANIMALS_NATURE"
	CategoryScienceDiscovery       Category = "SCIENCE_DISCOVERY"
	CategorySpaceEarth             Category = "SPACE_EARTH"
	CategoryTechnologyInnovation   Category = "TECHNOLOGY_INNOVATION"
	CategorySportsHumanAchievement Category = "SPORTS_HUMAN_ACHIEVEMENT"
	CategoryArtsCulture            Category = "ARTS_CULTURE"
	CategoryWorldRecordsFunFacts   Category = "WORLD_RECORDS_FUN_FACTS"
)

// DefaultCategory is assigned when categorization fails or is inconclusive.
const DefaultCategory = CategoryScienceDiscovery

var categoryLabels = map[Category]string{
	CategoryAnimalsNature:          "Animals & Nature",
	CategoryScienceDiscovery:       "Science & Discovery",
	CategorySpaceEarth:             "Space & Earth",
	CategoryTechnologyInnovation:   "Technology & Innovation",
	CategorySportsHumanAchievement: "Sports & Human Achievement",
	CategoryArtsCulture:            "Arts & Culture",
	CategoryWorldRecordsFunFacts:   "World Records & Fun Facts",
}

// AllCategories returns the supported categories in their canonical order.
func AllCategories() []Category {
	return []Category{
		CategoryAnimalsNature,
		CategoryScienceDiscovery,
		CategorySpaceEarth,
		CategoryTechnologyInnovation,
		CategorySportsHumanAchievement,
		CategoryArtsCulture,
		CategoryWorldRecordsFunFacts,
	}
}

// Label returns the human readable name shown to readers, e.g. "Space & Earth".
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// IsValid reports whether c is one of the seven supported categories.
func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory normalizes a free-form category name ("space earth",
// "Space-Earth", " SPACE_EARTH\n") and reports whether it names a
// supported category.
func ParseCategory(name string) (Category, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	normalized = strings.Trim(normalized, `"'.`)
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	c := Category(normalized)
	if !c.IsValid() {
		return "", false
	}
	return c, true
}

// AgeRange is the target reader age band for adapted content.
type AgeRange string

// Supported age ranges.
const (
	AgeRange4To6   AgeRange = "4-6"
	AgeRange7To9   AgeRange = "7-9"
	AgeRange10To12 AgeRange = "10-12"

	DefaultAgeRange = AgeRange7To9
)

// IsValid reports whether r is a supported age range.
func (r AgeRange) IsValid() bool {
	switch r {
	case AgeRange4To6, AgeRange7To9, AgeRange10To12:
		return true
	default:
		return false
	}
}

// ParseAgeRange validates a textual age range such as "7-9".
func ParseAgeRange(s string) (AgeRange, error) {
	r := AgeRange(strings.TrimSpace(s))
	if !r.IsValid() {
		return "", ErrInvalidAgeRange
	}
	return r, nil
}

// VerificationStatus records the outcome of checking a single fact.
type VerificationStatus string

// Possible verification status values
const (
	VerificationUnverified VerificationStatus = "UNVERIFIED"
	VerificationVerified   VerificationStatus = "VERIFIED"
)

// ProcessingStatus is the lifecycle position of a NewsEvent in the pipeline.
type ProcessingStatus string

// Possible processing status values
const (
	StatusRaw              ProcessingStatus = "RAW"
	StatusCategorized      ProcessingStatus = "CATEGORIZED"
	StatusAdapted          ProcessingStatus = "ADAPTED"
	StatusFactChecked      ProcessingStatus = "FACT_CHECKED"
	StatusProcessed        ProcessingStatus = "PROCESSED"
	StatusPendingReprocess ProcessingStatus = "PENDING_REPROCESS"
	StatusRejected         ProcessingStatus = "REJECTED"
)

// IsValid reports whether s is a known processing status.
func (s ProcessingStatus) IsValid() bool {
	switch s {
	case StatusRaw, StatusCategorized, StatusAdapted, StatusFactChecked,
		StatusProcessed, StatusPendingReprocess, StatusRejected:
		return true
	default:
		return false
	}
}
