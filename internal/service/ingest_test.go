package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/events"
	"github.com/bookofmonth/bookofmonth-api/internal/mocks"
	"github.com/bookofmonth/bookofmonth-api/internal/service"
	"github.com/bookofmonth/bookofmonth-api/internal/store"
	"github.com/bookofmonth/bookofmonth-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngest(
	t *testing.T,
	agg service.NewsAggregator,
	st store.NewsEventStore,
	gen *mocks.MockContentGenerator,
	opts ...service.Option,
) *service.IngestService {
	t.Helper()

	p := newProcessor(t, gen, nil, nil, opts...)
	opts = append([]service.Option{service.WithClock(fixedClock)}, opts...)
	s, err := service.NewIngestService(agg, st, p, discardLogger(), opts...)
	require.NoError(t, err)
	return s
}

func TestNewIngestService_Validation(t *testing.T) {
	t.Parallel()

	p := newProcessor(t, &mocks.MockContentGenerator{}, nil, nil)
	st := newRecordingStore()

	_, err := service.NewIngestService(nil, st, p, discardLogger())
	assert.Error(t, err)
	_, err = service.NewIngestService(&mocks.MockNewsAggregator{}, nil, p, discardLogger())
	assert.Error(t, err)
	_, err = service.NewIngestService(&mocks.MockNewsAggregator{}, st, nil, discardLogger())
	assert.Error(t, err)
}

func TestIngest_EndToEndOctopus(t *testing.T) {
	t.Parallel()

	article := domain.RawNewsArticle{
		Title:       "Octopus Facts",
		Content:     "...",
		URL:         "http://x/1",
		PublishedAt: testNow,
		SourceName:  "Example News",
	}
	agg := &mocks.MockNewsAggregator{Articles: []domain.RawNewsArticle{article}}
	gen := &mocks.MockContentGenerator{
		CategorizeContentFn: func(context.Context, string, string) (domain.Category, error) {
			return domain.CategoryAnimalsNature, nil
		},
		AdaptContentForAgeFn: func(context.Context, string, domain.AgeRange) (string, error) {
			return "Did you know octopuses have three hearts?", nil
		},
		GenerateEducationalContextFn: func(context.Context, string) (string, error) {
			return "Octopuses have three hearts.", nil
		},
		VerifyFactFn: func(context.Context, string) (bool, error) { return true, nil },
	}
	st := newRecordingStore()
	emitter, rec := newEmitter()
	s := newIngest(t, agg, st, gen, service.WithEmitter(emitter))

	report, err := s.Execute(context.Background(), service.IngestOptions{})
	require.NoError(t, err)

	saved := st.Saved()
	require.Len(t, saved, 1, "save must be called exactly once")
	event := saved[0]
	assert.Equal(t, domain.StatusProcessed, event.ProcessingStatus)
	assert.Equal(t, []domain.Category{domain.CategoryAnimalsNature}, event.Categories)
	assert.Equal(t, domain.EventIDFromURL("http://x/1"), event.ID)
	assert.Equal(t, "Did you know octopuses have three hearts?", event.RawContent)
	assert.Equal(t, domain.AgeRange7To9, event.AgeAppropriateness)
	require.Len(t, event.ExtractedFacts, 1)
	assert.True(t, event.IsVerified)
	assert.Len(t, event.DiscussionQuestions, service.DefaultQuestionCount)

	assert.Equal(t, service.IngestReport{Fetched: 1, Persisted: 1}, report)
	assert.Len(t, rec.ofType(events.TypeEventPersisted), 1)

	calls := agg.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, testNow.Add(-24*time.Hour), calls[0].Since)
	assert.Equal(t, "en", calls[0].Language)
}

func TestIngest_SafetyGateShortCircuits(t *testing.T) {
	t.Parallel()

	agg := &mocks.MockNewsAggregator{Articles: []domain.RawNewsArticle{testutils.CreateTestArticle("Scary story", testNow)}}
	gen := &mocks.MockContentGenerator{
		FilterContentSafetyFn: func(context.Context, string) (bool, error) { return false, nil },
	}
	st := newRecordingStore()
	emitter, rec := newEmitter()
	s := newIngest(t, agg, st, gen, service.WithEmitter(emitter))

	report, err := s.Execute(context.Background(), service.IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.CallCount(mocks.MethodFilterContentSafety))
	assert.Zero(t, gen.CallCount(mocks.MethodCategorizeContent))
	assert.Zero(t, gen.CallCount(mocks.MethodAdaptContentForAge))
	assert.Equal(t, 1, gen.TotalCalls())
	assert.Empty(t, st.Saved())
	assert.Equal(t, 1, report.SkippedUnsafe)

	skipped := rec.ofType(events.TypeArticleSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, events.ReasonUnsafe, skipped[0].Reason)
}

func TestIngest_SafetyFilterFailureSkips(t *testing.T) {
	t.Parallel()

	agg := &mocks.MockNewsAggregator{Articles: []domain.RawNewsArticle{testutils.CreateTestArticle("Story", testNow)}}
	gen := &mocks.MockContentGenerator{
		FilterContentSafetyFn: func(context.Context, string) (bool, error) { return false, errModelDown },
	}
	st := newRecordingStore()
	s := newIngest(t, agg, st, gen)

	report, err := s.Execute(context.Background(), service.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.SkippedUnsafe)
	assert.Empty(t, st.Saved())
}

func TestIngest_StaleAfterProcessing(t *testing.T) {
	t.Parallel()

	agg := &mocks.MockNewsAggregator{Articles: []domain.RawNewsArticle{
		testutils.CreateTestArticle("Old news", testNow.Add(-6*24*time.Hour)),
	}}
	gen := &mocks.MockContentGenerator{}
	st := newRecordingStore()
	emitter, rec := newEmitter()
	s := newIngest(t, agg, st, gen, service.WithEmitter(emitter))

	report, err := s.Execute(context.Background(), service.IngestOptions{DaysAgo: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.CallCount(mocks.MethodCategorizeContent), "event is computed")
	assert.Empty(t, st.Saved(), "stale event is never saved")
	assert.Equal(t, 1, report.SkippedStale)

	skipped := rec.ofType(events.TypeArticleSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, events.ReasonStale, skipped[0].Reason)
}

func TestIngest_TimelinessWindowIsDaysAgoPlusOne(t *testing.T) {
	t.Parallel()

	agg := &mocks.MockNewsAggregator{Articles: []domain.RawNewsArticle{
		testutils.CreateTestArticle("Inside slack", testNow.Add(-3*24*time.Hour+time.Minute)),
		testutils.CreateTestArticle("Outside slack", testNow.Add(-3*24*time.Hour)),
	}}
	st := newRecordingStore()
	s := newIngest(t, agg, st, &mocks.MockContentGenerator{})

	report, err := s.Execute(context.Background(), service.IngestOptions{DaysAgo: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Persisted)
	assert.Equal(t, 1, report.SkippedStale)
	require.Len(t, st.Saved(), 1)
	assert.Equal(t, "Inside slack", st.Saved()[0].Title)
}

func TestIngest_FunFactsFailureDoesNotStopPipeline(t *testing.T) {
	t.Parallel()

	agg := &mocks.MockNewsAggregator{Articles: []domain.RawNewsArticle{testutils.CreateTestArticle("Story", testNow)}}
	gen := &mocks.MockContentGenerator{
		ExtractFunFactsFn: func(context.Context, string) ([]string, error) { return nil, errModelDown },
	}
	st := newRecordingStore()
	s := newIngest(t, agg, st, gen)

	_, err := s.Execute(context.Background(), service.IngestOptions{})
	require.NoError(t, err)

	require.Len(t, st.Saved(), 1)
	assert.Empty(t, st.Saved()[0].FunFacts)
	assert.Equal(t, 1, gen.CallCount(mocks.MethodGenerateQuestions), "next stage still runs")
}

func TestIngest_AllStagesFailingStillPersists(t *testing.T) {
	t.Parallel()

	article := testutils.CreateTestArticle("Clever Octopus", testNow)
	agg := &mocks.MockNewsAggregator{Articles: []domain.RawNewsArticle{article}}
	gen := mocks.NewFailingContentGenerator(errModelDown)
	gen.FilterContentSafetyFn = func(context.Context, string) (bool, error) { return true, nil }
	st := newRecordingStore()
	s := newIngest(t, agg, st, gen)

	report, err := s.Execute(context.Background(), service.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Persisted)

	event := st.Saved()[0]
	assert.Equal(t, []domain.Category{domain.DefaultCategory}, event.Categories)
	assert.Equal(t, article.Content, event.RawContent)
	require.Len(t, event.ExtractedFacts, 1)
	assert.Equal(t, "Clever Octopus", event.ExtractedFacts[0].Content)
	assert.False(t, event.IsVerified)
	assert.Empty(t, event.DiscussionQuestions)
}

func TestIngest_PersistenceFailurePropagates(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("connection refused")
	agg := &mocks.MockNewsAggregator{Articles: []domain.RawNewsArticle{
		testutils.CreateTestArticle("First", testNow),
		testutils.CreateTestArticle("Second", testNow),
	}}
	st := newRecordingStore()
	st.saveErr = dbErr
	s := newIngest(t, agg, st, &mocks.MockContentGenerator{})

	report, err := s.Execute(context.Background(), service.IngestOptions{})
	require.Error(t, err)

	assert.ErrorIs(t, err, dbErr)
	var ingestErr *service.IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, "save", ingestErr.Operation)
	assert.Zero(t, report.Persisted)
	assert.Len(t, st.Saved(), 1, "batch stops after the failed save")
}

func TestIngest_FetchFailure(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("newsapi: 401")
	s := newIngest(t, &mocks.MockNewsAggregator{Err: fetchErr}, newRecordingStore(), &mocks.MockContentGenerator{})

	_, err := s.Execute(context.Background(), service.IngestOptions{})
	assert.ErrorIs(t, err, fetchErr)
	assert.Contains(t, err.Error(), "ingest fetch failed")
}

func TestIngest_UpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	agg := &mocks.MockNewsAggregator{Articles: []domain.RawNewsArticle{testutils.CreateTestArticle("Same story", testNow)}}
	st := newRecordingStore()
	s := newIngest(t, agg, st, &mocks.MockContentGenerator{})

	for i := 0; i < 2; i++ {
		_, err := s.Execute(context.Background(), service.IngestOptions{})
		require.NoError(t, err)
	}

	assert.Len(t, st.Saved(), 2)
	assert.Equal(t, 1, st.Len())
}

func TestIngest_Concurrent(t *testing.T) {
	t.Parallel()

	articles := make([]domain.RawNewsArticle, 8)
	for i := range articles {
		articles[i] = testutils.CreateTestArticle(fmt.Sprintf("Story %d", i), testNow)
	}
	agg := &mocks.MockNewsAggregator{Articles: articles}
	gen := &mocks.MockContentGenerator{}
	st := newRecordingStore()
	s := newIngest(t, agg, st, gen)

	report, err := s.Execute(context.Background(), service.IngestOptions{Concurrency: 4})
	require.NoError(t, err)

	assert.Equal(t, 8, report.Persisted)
	assert.Equal(t, 8, st.Len())
	assert.Equal(t, 8, gen.CallCount(mocks.MethodCategorizeContent))
}

func TestIngest_CancellationFinishesCurrentArticle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agg := &mocks.MockNewsAggregator{Articles: []domain.RawNewsArticle{
		testutils.CreateTestArticle("First", testNow),
		testutils.CreateTestArticle("Second", testNow),
		testutils.CreateTestArticle("Third", testNow),
	}}
	gen := &mocks.MockContentGenerator{
		CategorizeContentFn: func(ctx context.Context, _, _ string) (domain.Category, error) {
			cancel()
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return domain.CategorySpaceEarth, nil
		},
	}
	st := newRecordingStore()
	s := newIngest(t, agg, st, gen)

	report, err := s.Execute(ctx, service.IngestOptions{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, report.Persisted)
	assert.Equal(t, 2, report.Cancelled)
	require.Len(t, st.Saved(), 1)
	assert.Equal(t, []domain.Category{domain.CategorySpaceEarth}, st.Saved()[0].Categories,
		"in-flight calls are not cancelled")
}

func TestReprocessPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newRecordingStore()

	safe := testutils.CreateTestNewsEvent(t, "Panda cub", testNow.Add(-10*24*time.Hour))
	unsafe := testutils.CreateTestNewsEvent(t, "Scary story", testNow.Add(-9*24*time.Hour)).
		WithStatus(domain.StatusPendingReprocess)
	done := testutils.CreateProcessedNewsEvent(t, "Done", testNow, domain.CategoryArtsCulture)
	for _, e := range []domain.NewsEvent{safe, unsafe, done} {
		require.NoError(t, st.NewsEventStore.Save(ctx, e))
	}

	gen := &mocks.MockContentGenerator{
		FilterContentSafetyFn: func(_ context.Context, content string) (bool, error) {
			return content != unsafe.RawContent, nil
		},
	}
	s := newIngest(t, &mocks.MockNewsAggregator{}, st, gen)

	report, err := s.ReprocessPending(ctx, domain.AgeRange10To12)
	require.NoError(t, err)

	assert.Equal(t, service.IngestReport{Fetched: 2, Persisted: 1, SkippedUnsafe: 1}, report)

	got, err := st.GetByID(ctx, safe.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessed, got.ProcessingStatus, "old events are not gated on timeliness")
	assert.Equal(t, domain.AgeRange10To12, got.AgeAppropriateness)

	got, err = st.GetByID(ctx, unsafe.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.ProcessingStatus)

	assert.Equal(t, 1, gen.CallCount(mocks.MethodCategorizeContent), "only the safe event is processed")
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newRecordingStore()
	old := testutils.CreateProcessedNewsEvent(t, "Yesterday", testNow.Add(-24*time.Hour), domain.CategorySpaceEarth)
	require.NoError(t, st.NewsEventStore.Save(ctx, old))

	agg := &mocks.MockNewsAggregator{Articles: []domain.RawNewsArticle{testutils.CreateTestArticle("Today", testNow)}}
	s := newIngest(t, agg, st, &mocks.MockContentGenerator{})

	report, err := s.Refresh(ctx, service.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Persisted)

	_, err = st.GetByID(ctx, old.ID)
	assert.ErrorIs(t, err, store.ErrNewsEventNotFound)
	assert.Equal(t, 1, st.Len())
}
