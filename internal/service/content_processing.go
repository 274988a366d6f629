package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/events"
	"github.com/bookofmonth/bookofmonth-api/internal/generation"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/logger"
	"github.com/google/uuid"
)

// Stage names used in logs and stage_fallback events.
const (
	StageSafetyFilter       = "safety_filter"
	StageCategorize         = "categorize"
	StageAdaptForAge        = "adapt_for_age"
	StageExtractFacts       = "extract_facts"
	StageVerifyFacts        = "verify_facts"
	StageFunFacts           = "fun_facts"
	StageQuestions          = "questions"
	StageEducationalContext = "educational_context"
	StageSearchTerms        = "search_terms"
	StageFindImage          = "find_image"
	StageFindVideo          = "find_video"
	StageIllustration       = "illustration"
)

const (
	// DefaultQuestionCount is used when no question count is requested.
	DefaultQuestionCount = 3

	maxFunFacts = 5

	illustrationPrompt = "A child-friendly, educational illustration of: "
	illustrationStyle  = "child-friendly, educational"
)

// ContentProcessingService applies the per-article pipeline stages.
//
// Every stage returns a new NewsEvent and never fails: when the delegated
// call errors or answers with nothing usable, the stage logs a warning,
// emits a stage_fallback event and uses its safe default.
type ContentProcessingService struct {
	generator generation.ContentGenerator
	photos    PhotoSearcher
	videos    VideoSearcher
	images    generation.ImageGenerator
	logger    *slog.Logger
	now       func() time.Time
	emitter   events.Emitter
}

// NewContentProcessingService creates a ContentProcessingService.
// generator is required; photos, videos and images may be nil, in which
// case the corresponding media lookups return "".
func NewContentProcessingService(
	generator generation.ContentGenerator,
	photos PhotoSearcher,
	videos VideoSearcher,
	images generation.ImageGenerator,
	logger *slog.Logger,
	opts ...Option,
) (*ContentProcessingService, error) {
	if generator == nil {
		return nil, ErrNoGenerator
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := buildOptions(opts)

	return &ContentProcessingService{
		generator: generator,
		photos:    photos,
		videos:    videos,
		images:    images,
		logger:    logger.With(slog.String("component", "content_processing")),
		now:       o.now,
		emitter:   o.emitter,
	}, nil
}

// HasImageGenerator reports whether illustrations can be generated.
func (s *ContentProcessingService) HasImageGenerator() bool {
	return s.images != nil
}

// eventRef identifies the article a stage works on, for logs and events.
type eventRef struct {
	id    uuid.UUID
	title string
}

func refOf(e domain.NewsEvent) eventRef {
	return eventRef{id: e.ID, title: e.Title}
}

// withFallback runs call and returns its result, or fallback when call fails.
// It is the one place where a port failure is turned into a safe default.
func withFallback[T any](
	ctx context.Context,
	s *ContentProcessingService,
	ref eventRef,
	stage string,
	fallback T,
	call func(ctx context.Context) (T, error),
) T {
	value, err := call(ctx)
	if err == nil {
		return value
	}

	logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "stage fell back to default",
		slog.String("stage", stage),
		slog.String("news_event_id", ref.id.String()),
		slog.String("title", ref.title),
		slog.String("error", err.Error()))
	s.emit(ctx, events.Fallback(ref.id, ref.title, stage))
	return fallback
}

func (s *ContentProcessingService) emit(ctx context.Context, event events.PipelineEvent) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).DebugContext(ctx, "pipeline event handler failed",
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()))
	}
}

// FilterContentSafety reports whether content may be shown to children.
// Any error or inconclusive answer counts as unsafe.
func (s *ContentProcessingService) FilterContentSafety(ctx context.Context, content string) bool {
	return s.filterSafety(ctx, eventRef{}, content)
}

func (s *ContentProcessingService) filterSafety(ctx context.Context, ref eventRef, content string) bool {
	return withFallback(ctx, s, ref, StageSafetyFilter, false, func(ctx context.Context) (bool, error) {
		return s.generator.FilterContentSafety(ctx, content)
	})
}

// CategorizeEvent files the event under exactly one category. Unknown or
// failed answers resolve to domain.DefaultCategory.
func (s *ContentProcessingService) CategorizeEvent(ctx context.Context, event domain.NewsEvent) domain.NewsEvent {
	category := withFallback(ctx, s, refOf(event), StageCategorize, domain.DefaultCategory,
		func(ctx context.Context) (domain.Category, error) {
			c, err := s.generator.CategorizeContent(ctx, event.Title, event.RawContent)
			if err != nil {
				return c, err
			}
			if !c.IsValid() {
				return c, fmt.Errorf("unknown category %q", c)
			}
			return c, nil
		})

	return event.WithCategories(category).WithStatus(domain.StatusCategorized)
}

// AdaptContentForAge rewrites the event's content for ageRange. When the
// rewrite fails or comes back blank the original content is kept.
func (s *ContentProcessingService) AdaptContentForAge(
	ctx context.Context,
	event domain.NewsEvent,
	ageRange domain.AgeRange,
) domain.NewsEvent {
	if !ageRange.IsValid() {
		ageRange = domain.DefaultAgeRange
	}

	original := event.RawContent
	adapted := withFallback(ctx, s, refOf(event), StageAdaptForAge, original,
		func(ctx context.Context) (string, error) {
			out, err := s.generator.AdaptContentForAge(ctx, original, ageRange)
			if err != nil {
				return "", err
			}
			if strings.TrimSpace(out) == "" {
				return "", errEmptyResult
			}
			return out, nil
		})

	return event.
		WithRawContent(adapted).
		WithAgeAppropriateness(ageRange).
		WithStatus(domain.StatusAdapted)
}

// DetermineAgeAppropriateness tags the event with ageRange without rewriting
// its content.
func (s *ContentProcessingService) DetermineAgeAppropriateness(
	_ context.Context,
	event domain.NewsEvent,
	ageRange domain.AgeRange,
) domain.NewsEvent {
	if !ageRange.IsValid() {
		ageRange = domain.DefaultAgeRange
	}
	return event.WithAgeAppropriateness(ageRange)
}

// ExtractFacts derives one unverified fact from educational context about
// the title, or from the title itself when no context can be generated.
func (s *ContentProcessingService) ExtractFacts(ctx context.Context, event domain.NewsEvent) domain.NewsEvent {
	content := withFallback(ctx, s, refOf(event), StageExtractFacts, event.Title,
		func(ctx context.Context) (string, error) {
			out, err := s.generator.GenerateEducationalContext(ctx, event.Title)
			if err != nil {
				return "", err
			}
			out = strings.TrimSpace(out)
			if out == "" {
				return "", errEmptyResult
			}
			return out, nil
		})

	return event.WithExtractedFacts([]domain.Fact{domain.NewFact(content, event.SourceURL)})
}

// VerifyFacts checks each fact independently and keeps their order. A fact
// that cannot be checked stays unverified. Events without facts are
// returned unchanged.
func (s *ContentProcessingService) VerifyFacts(ctx context.Context, event domain.NewsEvent) domain.NewsEvent {
	if len(event.ExtractedFacts) == 0 {
		return event
	}

	ref := refOf(event)
	checked := make([]domain.Fact, len(event.ExtractedFacts))
	for i, fact := range event.ExtractedFacts {
		ok := withFallback(ctx, s, ref, StageVerifyFacts, false, func(ctx context.Context) (bool, error) {
			return s.generator.VerifyFact(ctx, fact.Content)
		})
		status := domain.VerificationUnverified
		if ok {
			status = domain.VerificationVerified
		}
		checked[i] = fact.WithVerification(status)
	}

	return event.WithVerifiedFacts(checked).WithStatus(domain.StatusFactChecked)
}

// ExtractFunFacts attaches up to five fun facts. Failure leaves the list empty.
func (s *ContentProcessingService) ExtractFunFacts(ctx context.Context, event domain.NewsEvent) domain.NewsEvent {
	facts := withFallback(ctx, s, refOf(event), StageFunFacts, []string{},
		func(ctx context.Context) ([]string, error) {
			return s.generator.ExtractFunFacts(ctx, event.RawContent)
		})
	return event.WithFunFacts(compact(facts, maxFunFacts))
}

// GenerateEducationalContextForFact explains a single fact. Returns "" on failure.
func (s *ContentProcessingService) GenerateEducationalContextForFact(ctx context.Context, fact domain.Fact) string {
	return withFallback(ctx, s, eventRef{}, StageEducationalContext, "", func(ctx context.Context) (string, error) {
		return s.generator.GenerateEducationalContext(ctx, fact.Content)
	})
}

// GenerateComprehensionQuestions asks for up to n questions about content.
// A non-positive n means DefaultQuestionCount. Returns an empty slice on failure.
func (s *ContentProcessingService) GenerateComprehensionQuestions(ctx context.Context, content string, n int) []string {
	return s.questions(ctx, eventRef{}, content, n)
}

func (s *ContentProcessingService) questions(ctx context.Context, ref eventRef, content string, n int) []string {
	if n <= 0 {
		n = DefaultQuestionCount
	}
	questions := withFallback(ctx, s, ref, StageQuestions, []string{}, func(ctx context.Context) ([]string, error) {
		return s.generator.GenerateQuestions(ctx, content, n)
	})
	return compact(questions, n)
}

// searchTerms asks the model for media queries, filling blanks from the title.
func (s *ContentProcessingService) searchTerms(ctx context.Context, event domain.NewsEvent) generation.SearchTerms {
	defaults := generation.DefaultSearchTerms(event.Title)
	terms := withFallback(ctx, s, refOf(event), StageSearchTerms, defaults,
		func(ctx context.Context) (generation.SearchTerms, error) {
			return s.generator.SuggestSearchTerms(ctx, event.Title, event.RawContent)
		})

	if strings.TrimSpace(terms.ImageQuery) == "" {
		terms.ImageQuery = defaults.ImageQuery
	}
	if strings.TrimSpace(terms.YouTubeQuery) == "" {
		terms.YouTubeQuery = defaults.YouTubeQuery
	}
	return terms
}

// FindImage returns a stock photo URL for the event, or "".
func (s *ContentProcessingService) FindImage(ctx context.Context, event domain.NewsEvent) string {
	if s.photos == nil {
		return ""
	}
	query := s.searchTerms(ctx, event).ImageQuery
	return withFallback(ctx, s, refOf(event), StageFindImage, "", func(ctx context.Context) (string, error) {
		return s.photos.SearchPhoto(ctx, query)
	})
}

// FindVideo returns a video URL for the event, or "".
func (s *ContentProcessingService) FindVideo(ctx context.Context, event domain.NewsEvent) string {
	if s.videos == nil {
		return ""
	}
	query := s.searchTerms(ctx, event).YouTubeQuery
	return withFallback(ctx, s, refOf(event), StageFindVideo, "", func(ctx context.Context) (string, error) {
		return s.videos.SearchVideo(ctx, query)
	})
}

// GenerateImageForEvent renders an illustration for the event and returns
// its local path, or "" when no image generator is configured or it fails.
func (s *ContentProcessingService) GenerateImageForEvent(ctx context.Context, event domain.NewsEvent) string {
	if s.images == nil {
		return ""
	}
	return withFallback(ctx, s, refOf(event), StageIllustration, "", func(ctx context.Context) (string, error) {
		img, err := s.images.GenerateImage(ctx, illustrationPrompt+event.Title, illustrationStyle)
		if err != nil {
			return "", err
		}
		return img.Path, nil
	})
}

// EnsureTimeliness reports whether the event is younger than maxAgeDays.
// The boundary is exclusive.
func (s *ContentProcessingService) EnsureTimeliness(event domain.NewsEvent, maxAgeDays int) bool {
	return event.Age(s.now()) < time.Duration(maxAgeDays)*24*time.Hour
}

// ProcessOptions selects how Process shapes an event.
type ProcessOptions struct {
	AgeRange      domain.AgeRange
	QuestionCount int

	// GenerateImages renders an illustration when no stock photo was found.
	GenerateImages bool
}

// Process runs the full stage sequence on event: categorize, adapt, extract
// and verify facts, fun facts, questions, image, video. Gates are not applied.
func (s *ContentProcessingService) Process(ctx context.Context, event domain.NewsEvent, opts ProcessOptions) domain.NewsEvent {
	e := s.CategorizeEvent(ctx, event)
	e = s.AdaptContentForAge(ctx, e, opts.AgeRange)
	e = s.ExtractFacts(ctx, e)
	e = s.VerifyFacts(ctx, e)
	e = s.ExtractFunFacts(ctx, e)
	e = e.WithDiscussionQuestions(s.questions(ctx, refOf(e), e.RawContent, opts.QuestionCount))

	if url := s.FindImage(ctx, e); url != "" {
		e = e.WithImageURL(url)
	} else if opts.GenerateImages {
		if path := s.GenerateImageForEvent(ctx, e); path != "" {
			e = e.WithImagePath(path)
		}
	}

	if url := s.FindVideo(ctx, e); url != "" {
		e = e.WithVideoURL(url)
	}
	return e
}

// compact drops blank entries and keeps at most limit items.
func compact(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}
