package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/task"
)

const shutdownTimeout = 10 * time.Second

// ingestJob runs one scheduled ingestion and logs its report.
func (app *application) ingestJob(ctx context.Context) error {
	opts, err := app.ingestOptions()
	if err != nil {
		return err
	}
	report, err := app.ingest.Execute(ctx, opts)
	logReport(app.logger, "scheduled ingestion finished", report)
	return err
}

// serve runs scheduled ingestion and the operational HTTP server until ctx
// is cancelled, then shuts both down.
func (app *application) serve(ctx context.Context, interval time.Duration) error {
	scheduler := task.NewScheduler("ingest", app.ingestJob, interval, app.logger)
	scheduler.SetResultHandler(app.metrics.ObserveRun)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("server failed", slog.String("error", err.Error()))
			serverErr <- err
			cancelServer()
		}
	}()

	if err := scheduler.Start(serverCtx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	<-serverCtx.Done()
	app.logger.Info("shutting down")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	select {
	case err := <-serverErr:
		return err
	default:
	}
	app.logger.Info("shutdown completed")
	return nil
}
