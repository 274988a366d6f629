package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/events"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/logger"
	"github.com/bookofmonth/bookofmonth-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// Ingest defaults applied to zero-valued IngestOptions fields.
const (
	DefaultDaysAgo     = 1
	DefaultLanguage    = "en"
	DefaultConcurrency = 1
)

// IngestOptions controls one ingestion run.
type IngestOptions struct {
	Query    string
	DaysAgo  int
	AgeRange domain.AgeRange
	Language string

	// QuestionCount is the number of discussion questions requested per article.
	QuestionCount int

	// Concurrency is how many articles are processed at once. 1 processes
	// them one after another in fetch order.
	Concurrency int

	GenerateImages bool
}

func (o IngestOptions) withDefaults() IngestOptions {
	if o.DaysAgo <= 0 {
		o.DaysAgo = DefaultDaysAgo
	}
	if !o.AgeRange.IsValid() {
		o.AgeRange = domain.DefaultAgeRange
	}
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.QuestionCount <= 0 {
		o.QuestionCount = DefaultQuestionCount
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// IngestReport counts what happened to the articles of one run.
type IngestReport struct {
	Fetched        int `json:"fetched"`
	Persisted      int `json:"persisted"`
	SkippedUnsafe  int `json:"skipped_unsafe"`
	SkippedStale   int `json:"skipped_stale"`
	SkippedInvalid int `json:"skipped_invalid"`
	Cancelled      int `json:"cancelled"`
}

// reportCounters is the concurrent form of IngestReport.
type reportCounters struct {
	persisted, unsafe, stale, invalid, cancelled atomic.Int64
}

func (c *reportCounters) report(fetched int) IngestReport {
	return IngestReport{
		Fetched:        fetched,
		Persisted:      int(c.persisted.Load()),
		SkippedUnsafe:  int(c.unsafe.Load()),
		SkippedStale:   int(c.stale.Load()),
		SkippedInvalid: int(c.invalid.Load()),
		Cancelled:      int(c.cancelled.Load()),
	}
}

// IngestService fetches news and turns it into processed, persisted events.
type IngestService struct {
	aggregator NewsAggregator
	store      store.NewsEventStore
	processor  *ContentProcessingService
	logger     *slog.Logger
	now        func() time.Time
	emitter    events.Emitter
}

// NewIngestService creates an IngestService. All collaborators are required.
func NewIngestService(
	aggregator NewsAggregator,
	eventStore store.NewsEventStore,
	processor *ContentProcessingService,
	logger *slog.Logger,
	opts ...Option,
) (*IngestService, error) {
	if aggregator == nil {
		return nil, errors.New("news aggregator cannot be nil")
	}
	if eventStore == nil {
		return nil, errors.New("news event store cannot be nil")
	}
	if processor == nil {
		return nil, errors.New("content processing service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := buildOptions(opts)

	return &IngestService{
		aggregator: aggregator,
		store:      eventStore,
		processor:  processor,
		logger:     logger.With(slog.String("component", "ingest")),
		now:        o.now,
		emitter:    o.emitter,
	}, nil
}

// Execute runs one ingestion: fetch, then for every article the safety gate,
// the processing stages, the timeliness gate and an upsert.
//
// Skipped articles are counted, not returned as errors. A fetch or save
// failure aborts the run. When ctx is cancelled, articles already started
// are finished and the rest are counted as cancelled.
func (s *IngestService) Execute(ctx context.Context, opts IngestOptions) (IngestReport, error) {
	opts = opts.withDefaults()
	log := logger.FromContextOrDefault(ctx, s.logger)

	since := s.now().Add(-time.Duration(opts.DaysAgo) * 24 * time.Hour)
	maxAgeDays := opts.DaysAgo + 1

	log.InfoContext(ctx, "starting ingestion",
		slog.String("query", opts.Query),
		slog.Time("since", since),
		slog.String("language", opts.Language),
		slog.Int("concurrency", opts.Concurrency))

	articles, err := s.aggregator.FetchRecentNews(ctx, opts.Query, since, opts.Language)
	if err != nil {
		return IngestReport{}, NewIngestError("fetch", "failed to fetch news", err)
	}

	var counters reportCounters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, article := range articles {
		if gctx.Err() != nil {
			counters.cancelled.Add(1)
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				counters.cancelled.Add(1)
				return nil
			}
			return s.ingestArticle(context.WithoutCancel(gctx), article, opts, maxAgeDays, &counters)
		})
	}

	err = g.Wait()
	report := counters.report(len(articles))

	log.InfoContext(ctx, "ingestion finished",
		slog.Int("fetched", report.Fetched),
		slog.Int("persisted", report.Persisted),
		slog.Int("skipped_unsafe", report.SkippedUnsafe),
		slog.Int("skipped_stale", report.SkippedStale),
		slog.Int("skipped_invalid", report.SkippedInvalid),
		slog.Int("cancelled", report.Cancelled))

	if err != nil {
		return report, err
	}
	if ctx.Err() != nil {
		return report, fmt.Errorf("ingestion cancelled: %w", ctx.Err())
	}
	return report, nil
}

func (s *IngestService) ingestArticle(
	ctx context.Context,
	article domain.RawNewsArticle,
	opts IngestOptions,
	maxAgeDays int,
	counters *reportCounters,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("url", article.URL))
	ref := eventRef{id: domain.EventIDFromURL(article.URL), title: article.Title}

	if !s.processor.filterSafety(ctx, ref, article.Content) {
		counters.unsafe.Add(1)
		log.InfoContext(ctx, "skipping unsafe article", slog.String("title", article.Title))
		s.processor.emit(ctx, events.Skipped(ref.id, ref.title, events.ReasonUnsafe))
		return nil
	}

	event, err := domain.NewNewsEventFromArticle(article, s.now())
	if err != nil {
		counters.invalid.Add(1)
		log.WarnContext(ctx, "skipping invalid article", slog.String("error", err.Error()))
		return nil
	}

	processed := s.processor.Process(ctx, event, ProcessOptions{
		AgeRange:       opts.AgeRange,
		QuestionCount:  opts.QuestionCount,
		GenerateImages: opts.GenerateImages,
	})

	if !s.processor.EnsureTimeliness(processed, maxAgeDays) {
		counters.stale.Add(1)
		log.InfoContext(ctx, "skipping stale article",
			slog.String("title", article.Title),
			slog.Time("published_at", processed.PublishedAt),
			slog.Int("max_age_days", maxAgeDays))
		s.processor.emit(ctx, events.Skipped(processed.ID, processed.Title, events.ReasonStale))
		return nil
	}

	return s.persist(ctx, processed, counters)
}

func (s *IngestService) persist(ctx context.Context, event domain.NewsEvent, counters *reportCounters) error {
	final := event.WithStatus(domain.StatusProcessed).WithUpdatedAt(s.now())
	if err := s.store.Save(ctx, final); err != nil {
		return NewIngestError("save", fmt.Sprintf("failed to save news event %s", final.ID), err)
	}

	counters.persisted.Add(1)
	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "news event persisted",
		slog.String("news_event_id", final.ID.String()),
		slog.String("title", final.Title),
		slog.Bool("is_verified", final.IsVerified))
	s.processor.emit(ctx, events.Persisted(final.ID, final.Title))
	return nil
}

// ReprocessPending runs the stages again on every stored RAW or
// PENDING_REPROCESS event, oldest first. Unsafe events are marked REJECTED.
// Reprocessing is explicit, so no timeliness gate is applied.
func (s *IngestService) ReprocessPending(ctx context.Context, ageRange domain.AgeRange) (IngestReport, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pending, err := s.store.GetEventsForProcessing(ctx)
	if err != nil {
		return IngestReport{}, NewIngestError("reprocess", "failed to load pending events", err)
	}
	log.InfoContext(ctx, "reprocessing pending events", slog.Int("count", len(pending)))

	opts := IngestOptions{AgeRange: ageRange}.withDefaults()
	var counters reportCounters

	for i, event := range pending {
		if ctx.Err() != nil {
			counters.cancelled.Add(int64(len(pending) - i))
			break
		}
		runCtx := context.WithoutCancel(ctx)

		if !s.processor.filterSafety(runCtx, refOf(event), event.RawContent) {
			if err := s.store.UpdateProcessingStatus(runCtx, event.ID, domain.StatusRejected); err != nil {
				return counters.report(len(pending)), NewIngestError("reprocess", "failed to reject unsafe event", err)
			}
			counters.unsafe.Add(1)
			log.InfoContext(ctx, "rejected unsafe event", slog.String("news_event_id", event.ID.String()))
			s.processor.emit(runCtx, events.Skipped(event.ID, event.Title, events.ReasonUnsafe))
			continue
		}

		processed := s.processor.Process(runCtx, event, ProcessOptions{
			AgeRange:      opts.AgeRange,
			QuestionCount: opts.QuestionCount,
		})
		if err := s.persist(runCtx, processed, &counters); err != nil {
			return counters.report(len(pending)), err
		}
	}

	report := counters.report(len(pending))
	if ctx.Err() != nil {
		return report, fmt.Errorf("reprocessing cancelled: %w", ctx.Err())
	}
	return report, nil
}

// Refresh deletes every stored event and runs a fresh ingestion.
func (s *IngestService) Refresh(ctx context.Context, opts IngestOptions) (IngestReport, error) {
	deleted, err := s.store.DeleteAll(ctx)
	if err != nil {
		return IngestReport{}, NewIngestError("refresh", "failed to clear news events", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "cleared news events", slog.Int64("deleted", deleted))
	return s.Execute(ctx, opts)
}
