package domain

import (
	"time"

	"github.com/google/uuid"
)

// Fact is a single checkable statement attached to a NewsEvent.
type Fact struct {
	Content            string             `json:"content"`
	Source             string             `json:"source"`
	VerificationStatus VerificationStatus `json:"verification_status"`
}

// NewFact creates an unverified fact attributed to source.
func NewFact(content, source string) Fact {
	return Fact{
		Content:            content,
		Source:             source,
		VerificationStatus: VerificationUnverified,
	}
}

// Verified reports whether the fact has been confirmed.
func (f Fact) Verified() bool {
	return f.VerificationStatus == VerificationVerified
}

// WithVerification returns a copy of the fact carrying the given status.
func (f Fact) WithVerification(status VerificationStatus) Fact {
	f.VerificationStatus = status
	return f
}

// GeographicLocation is a place a news event relates to. Any field may be empty.
type GeographicLocation struct {
	Country   string `json:"country,omitempty"`
	Continent string `json:"continent,omitempty"`
	City      string `json:"city,omitempty"`
}

// NewsEvent is a news article as it moves through the content pipeline.
//
// NewsEvent is a value type. The With... methods never modify the receiver;
// they return a new NewsEvent whose slices are independent copies, so a
// stage can hand its result to the next stage without aliasing.
type NewsEvent struct {
	ID                  uuid.UUID            `json:"id"`
	Title               string               `json:"title"`
	RawContent          string               `json:"raw_content"`
	SourceURL           string               `json:"source_url"`
	PublishedAt         time.Time            `json:"published_at"`
	ExtractedFacts      []Fact               `json:"extracted_facts"`
	Categories          []Category           `json:"categories"`
	GeographicLocations []GeographicLocation `json:"geographic_locations"`
	AgeAppropriateness  AgeRange             `json:"age_appropriateness,omitempty"`
	IsVerified          bool                 `json:"is_verified"`
	ProcessingStatus    ProcessingStatus     `json:"processing_status"`
	ImagePath           string               `json:"image_path,omitempty"`
	ImageURL            string               `json:"image_url,omitempty"`
	VideoURL            string               `json:"video_url,omitempty"`
	FunFacts            []string             `json:"fun_facts"`
	DiscussionQuestions []string             `json:"discussion_questions"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// EventIDFromURL derives the event ID from the article's source URL.
// The same URL always yields the same ID, across processes and restarts,
// which makes re-ingesting an article an update rather than a duplicate.
func EventIDFromURL(sourceURL string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceURL))
}

// NewNewsEventFromArticle creates a RAW NewsEvent from an aggregated article.
// Returns an error if the article fails validation.
func NewNewsEventFromArticle(article RawNewsArticle, now time.Time) (NewsEvent, error) {
	if err := article.Validate(); err != nil {
		return NewsEvent{}, err
	}

	now = now.UTC()
	event := NewsEvent{
		ID:                  EventIDFromURL(article.URL),
		Title:               article.Title,
		RawContent:          article.Content,
		SourceURL:           article.URL,
		PublishedAt:         article.PublishedAt.UTC(),
		ExtractedFacts:      []Fact{},
		Categories:          []Category{},
		GeographicLocations: []GeographicLocation{},
		ProcessingStatus:    StatusRaw,
		FunFacts:            []string{},
		DiscussionQuestions: []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return event, nil
}

// Validate checks if the NewsEvent has valid data.
// Returns an error if any field fails validation.
func (e NewsEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyEventID
	}
	if e.Title == "" {
		return ErrEmptyEventTitle
	}
	if e.RawContent == "" {
		return ErrEmptyEventContent
	}
	if e.SourceURL == "" {
		return ErrEmptyEventSourceURL
	}
	if e.PublishedAt.IsZero() {
		return ErrMissingPublishedAt
	}
	if !e.ProcessingStatus.IsValid() {
		return ErrInvalidStatus
	}
	if e.AgeAppropriateness != "" && !e.AgeAppropriateness.IsValid() {
		return ErrInvalidAgeRange
	}
	for _, c := range e.Categories {
		if !c.IsValid() {
			return ErrInvalidCategory
		}
	}
	for _, f := range e.ExtractedFacts {
		switch f.VerificationStatus {
		case VerificationUnverified, VerificationVerified:
		default:
			return ErrInvalidVerification
		}
	}
	return nil
}

// HasCategory reports whether the event is filed under c.
func (e NewsEvent) HasCategory(c Category) bool {
	for _, existing := range e.Categories {
		if existing == c {
			return true
		}
	}
	return false
}

// clone returns a copy of e that shares no slice storage with it.
func (e NewsEvent) clone() NewsEvent {
	e.ExtractedFacts = cloneSlice(e.ExtractedFacts)
	e.Categories = cloneSlice(e.Categories)
	e.GeographicLocations = cloneSlice(e.GeographicLocations)
	e.FunFacts = cloneSlice(e.FunFacts)
	e.DiscussionQuestions = cloneSlice(e.DiscussionQuestions)
	return e
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// WithStatus returns a copy of the event in the given processing status.
func (e NewsEvent) WithStatus(status ProcessingStatus) NewsEvent {
	out := e.clone()
	out.ProcessingStatus = status
	return out
}

// WithCategories returns a copy of the event filed under exactly the given categories.
func (e NewsEvent) WithCategories(categories ...Category) NewsEvent {
	out := e.clone()
	out.Categories = cloneSlice(categories)
	return out
}

// WithRawContent returns a copy of the event with its body replaced.
func (e NewsEvent) WithRawContent(content string) NewsEvent {
	out := e.clone()
	out.RawContent = content
	return out
}

// WithAgeAppropriateness returns a copy of the event tagged for the given age range.
func (e NewsEvent) WithAgeAppropriateness(ageRange AgeRange) NewsEvent {
	out := e.clone()
	out.AgeAppropriateness = ageRange
	return out
}

// WithExtractedFacts returns a copy of the event carrying the given facts.
// The event is marked unverified until WithVerifiedFacts is applied.
func (e NewsEvent) WithExtractedFacts(facts []Fact) NewsEvent {
	out := e.clone()
	out.ExtractedFacts = cloneSlice(facts)
	out.IsVerified = false
	return out
}

// WithVerifiedFacts returns a copy of the event carrying checked facts.
// IsVerified is true only when there is at least one fact and every fact is VERIFIED.
func (e NewsEvent) WithVerifiedFacts(facts []Fact) NewsEvent {
	out := e.clone()
	out.ExtractedFacts = cloneSlice(facts)

	verified := len(facts) > 0
	for _, f := range facts {
		if !f.Verified() {
			verified = false
			break
		}
	}
	out.IsVerified = verified
	return out
}

// WithGeographicLocations returns a copy of the event with the given locations.
func (e NewsEvent) WithGeographicLocations(locations []GeographicLocation) NewsEvent {
	out := e.clone()
	out.GeographicLocations = cloneSlice(locations)
	return out
}

// WithFunFacts returns a copy of the event with the given fun facts.
func (e NewsEvent) WithFunFacts(funFacts []string) NewsEvent {
	out := e.clone()
	out.FunFacts = cloneSlice(funFacts)
	return out
}

// WithDiscussionQuestions returns a copy of the event with the given questions.
func (e NewsEvent) WithDiscussionQuestions(questions []string) NewsEvent {
	out := e.clone()
	out.DiscussionQuestions = cloneSlice(questions)
	return out
}

// WithImageURL returns a copy of the event pointing at an external photo.
func (e NewsEvent) WithImageURL(url string) NewsEvent {
	out := e.clone()
	out.ImageURL = url
	return out
}

// WithImagePath returns a copy of the event pointing at a locally stored illustration.
func (e NewsEvent) WithImagePath(path string) NewsEvent {
	out := e.clone()
	out.ImagePath = path
	return out
}

// WithVideoURL returns a copy of the event pointing at a related video.
func (e NewsEvent) WithVideoURL(url string) NewsEvent {
	out := e.clone()
	out.VideoURL = url
	return out
}

// WithUpdatedAt returns a copy of the event with its modification time set.
func (e NewsEvent) WithUpdatedAt(t time.Time) NewsEvent {
	out := e.clone()
	out.UpdatedAt = t.UTC()
	return out
}

// Age returns how long ago the event was published relative to now.
func (e NewsEvent) Age(now time.Time) time.Duration {
	return now.Sub(e.PublishedAt)
}
