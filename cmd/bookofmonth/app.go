package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/config"
	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/events"
	"github.com/bookofmonth/bookofmonth-api/internal/generation"
	"github.com/bookofmonth/bookofmonth-api/internal/metrics"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/gemini"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/memory"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/newsapi"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/openai"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/pexels"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/postgres"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/rss"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/youtube"
	"github.com/bookofmonth/bookofmonth-api/internal/service"
	"github.com/bookofmonth/bookofmonth-api/internal/store"
	"google.golang.org/genai"
)

// application holds the wired pipeline and the resources it must release.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	eventStore store.NewsEventStore
	bookStore  store.MonthlyBookStore

	processor *service.ContentProcessingService
	ingest    *service.IngestService
	books     *service.BookAssemblyService

	metrics *metrics.PipelineCollector
}

// newApplication wires every component. A nil db selects the in-memory
// stores, which is how dry runs work.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	if db != nil {
		app.eventStore = postgres.NewPostgresNewsEventStore(db, logger)
		app.bookStore = postgres.NewPostgresMonthlyBookStore(db, logger)
	} else {
		logger.Info("using in-memory stores, nothing will be persisted")
		app.eventStore = memory.NewNewsEventStore()
		app.bookStore = memory.NewMonthlyBookStore()
	}

	collector, err := metrics.NewPipelineCollector()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics collector: %w", err)
	}
	app.metrics = collector

	emitter := events.NewInMemoryEmitter(logger)
	emitter.RegisterHandler(events.NewLogHandler(logger))
	emitter.RegisterHandler(collector)
	opts := []service.Option{service.WithEmitter(emitter)}

	var geminiClient *genai.Client
	if cfg.LLM.GeminiAPIKey != "" {
		geminiClient, err = gemini.NewClient(ctx, cfg.LLM)
		if err != nil {
			return nil, err
		}
	}

	completer, err := newCompleter(cfg.LLM, geminiClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM completer: %w", err)
	}
	generator, err := generation.NewContentClient(
		generation.NewRateLimitedCompleter(completer, cfg.LLM.RequestsPerMinute),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize content generator: %w", err)
	}
	logger.Info("content generator initialized",
		slog.String("provider", cfg.LLM.Provider))

	photos := pexels.NewClient(cfg.Media.PexelsAPIKey, cfg.Media.RequestsPerMinute, logger)
	videos, err := youtube.NewClient(ctx, cfg.Media.YouTubeAPIKey, cfg.Media.RequestsPerMinute, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize video search: %w", err)
	}

	var images generation.ImageGenerator
	if cfg.Pipeline.GenerateImages {
		if geminiClient == nil {
			logger.Warn("image generation requires a gemini API key, illustrations disabled")
		} else {
			g, err := gemini.NewImageGenerator(geminiClient, logger, cfg.LLM, cfg.Pipeline.ImageDir)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize image generator: %w", err)
			}
			images = g
		}
	}

	app.processor, err = service.NewContentProcessingService(generator, photos, videos, images, logger, opts...)
	if err != nil {
		return nil, err
	}

	aggregator, err := newAggregator(cfg.News, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize news aggregator: %w", err)
	}

	app.ingest, err = service.NewIngestService(aggregator, app.eventStore, app.processor, logger, opts...)
	if err != nil {
		return nil, err
	}
	app.books, err = service.NewBookAssemblyService(app.eventStore, app.bookStore, logger, opts...)
	if err != nil {
		return nil, err
	}

	return app, nil
}

func newCompleter(cfg config.LLMConfig, geminiClient *genai.Client, logger *slog.Logger) (generation.Completer, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewCompleter(logger, cfg)
	case "gemini":
		return gemini.NewCompleter(geminiClient, logger, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown LLM provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}

func newAggregator(cfg config.NewsConfig, logger *slog.Logger) (service.NewsAggregator, error) {
	switch cfg.Provider {
	case "rss":
		return rss.NewAggregator(cfg.FeedURLs, &http.Client{Timeout: 30 * time.Second}, logger)
	case "newsapi":
		return newsapi.NewClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown news provider %q", cfg.Provider)
	}
}

// ingestOptions maps the pipeline configuration onto one ingestion run.
func (app *application) ingestOptions() (service.IngestOptions, error) {
	ageRange, err := domain.ParseAgeRange(app.config.Pipeline.AgeRange)
	if err != nil {
		return service.IngestOptions{}, err
	}
	return service.IngestOptions{
		Query:          app.config.News.Query,
		DaysAgo:        app.config.News.DaysAgo,
		AgeRange:       ageRange,
		Language:       app.config.News.Language,
		QuestionCount:  app.config.Pipeline.QuestionCount,
		Concurrency:    app.config.Pipeline.Concurrency,
		GenerateImages: app.config.Pipeline.GenerateImages && app.processor.HasImageGenerator(),
	}, nil
}

func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}
