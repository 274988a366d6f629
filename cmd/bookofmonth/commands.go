package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/config"
	"github.com/bookofmonth/bookofmonth-api/internal/domain"
	"github.com/bookofmonth/bookofmonth-api/internal/platform/logger"
	"github.com/bookofmonth/bookofmonth-api/internal/service"
	"github.com/spf13/cobra"
)

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	configFile string
	logLevel   string
	dryRun     bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "bookofmonth",
		Short: "Children's news pipeline and monthly book assembly",
		Long: `bookofmonth fetches recent news, filters it for safety, adapts it for
young readers with a generative model, enriches it with facts, questions and
media, and compiles the processed stories into a monthly book.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file path (default: ./config.yaml or ./config/config.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "use in-memory stores instead of the database")

	root.AddCommand(
		newIngestCmd(flags),
		newRefreshCmd(flags),
		newReprocessCmd(flags),
		newAssembleBookCmd(flags),
		newServeCmd(flags),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads configuration and applies flag overrides.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configFile != "" {
		cfg, err = config.LoadFromFile(flags.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Server.LogLevel = flags.logLevel
	}
	return cfg, nil
}

// runWithApp loads configuration, wires the application and calls fn with a
// context cancelled on SIGINT or SIGTERM.
func runWithApp(cmd *cobra.Command, flags *rootFlags, fn func(ctx context.Context, app *application) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	var app *application
	if flags.dryRun {
		app, err = newApplication(ctx, cfg, log, nil)
	} else {
		db, dbErr := setupAppDatabase(ctx, cfg.Database, log)
		if dbErr != nil {
			return dbErr
		}
		app, err = newApplication(ctx, cfg, log, db)
		if err != nil {
			_ = db.Close()
		}
	}
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return fn(ctx, app)
}

func newIngestCmd(flags *rootFlags) *cobra.Command {
	var query string
	var daysAgo int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch, process and store recent news once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, flags, func(ctx context.Context, app *application) error {
				opts, err := app.ingestOptions()
				if err != nil {
					return err
				}
				if query != "" {
					opts.Query = query
				}
				if daysAgo > 0 {
					opts.DaysAgo = daysAgo
				}
				report, err := app.ingest.Execute(ctx, opts)
				logReport(app.logger, "ingestion finished", report)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "news search query (overrides news.query)")
	cmd.Flags().IntVar(&daysAgo, "days-ago", 0, "how many days back to fetch (overrides news.days_ago)")
	return cmd
}

func newRefreshCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Delete every stored event and ingest again",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, flags, func(ctx context.Context, app *application) error {
				opts, err := app.ingestOptions()
				if err != nil {
					return err
				}
				report, err := app.ingest.Refresh(ctx, opts)
				logReport(app.logger, "refresh finished", report)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}

func newReprocessCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reprocess",
		Short: "Run the pipeline again on RAW and PENDING_REPROCESS events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, flags, func(ctx context.Context, app *application) error {
				opts, err := app.ingestOptions()
				if err != nil {
					return err
				}
				report, err := app.ingest.ReprocessPending(ctx, opts.AgeRange)
				logReport(app.logger, "reprocessing finished", report)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}

func newAssembleBookCmd(flags *rootFlags) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "assemble-book",
		Short: "Compile a month's processed events into its book",
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, month, err := parsePeriod(period, time.Now().UTC())
			if err != nil {
				return err
			}
			return runWithApp(cmd, flags, func(ctx context.Context, app *application) error {
				book, err := app.books.AssembleBook(ctx, year, month)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), book)
			})
		},
	}
	cmd.Flags().StringVar(&period, "month", "", "month to assemble as YYYY-MM (default: previous month)")
	return cmd
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Ingest on a schedule and serve /health and /metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, flags, func(ctx context.Context, app *application) error {
				return app.serve(ctx, app.config.Pipeline.ScheduleInterval)
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bookofmonth %s\n", version)
			fmt.Fprintf(out, "  commit:  %s\n", commit)
			fmt.Fprintf(out, "  built:   %s\n", date)
		},
	}
}

// parsePeriod parses a YYYY-MM month. An empty value selects the month
// before now.
func parsePeriod(value string, now time.Time) (int, time.Month, error) {
	if value == "" {
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		return prev.Year(), prev.Month(), nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: month must be YYYY-MM, got %q", domain.ErrValidation, value)
	}
	return t.Year(), t.Month(), nil
}

func logReport(log *slog.Logger, msg string, report service.IngestReport) {
	log.Info(msg,
		slog.Int("fetched", report.Fetched),
		slog.Int("persisted", report.Persisted),
		slog.Int("skipped_unsafe", report.SkippedUnsafe),
		slog.Int("skipped_stale", report.SkippedStale),
		slog.Int("skipped_invalid", report.SkippedInvalid),
		slog.Int("cancelled", report.Cancelled))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
