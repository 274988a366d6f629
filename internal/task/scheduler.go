package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrAlreadyStarted is returned by Start when the scheduler is running.
var ErrAlreadyStarted = errors.New("scheduler already started")

// Job is a unit of work run by a Scheduler.
type Job func(ctx context.Context) error

// ResultHandler is told how each run of the job went.
type ResultHandler func(duration time.Duration, end time.Time, err error)

// Scheduler runs a job immediately when started and then once per interval.
// Runs never overlap: a run that outlasts the interval delays the next tick.
type Scheduler struct {
	name     string
	job      Job
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	onResult ResultHandler
}

// NewScheduler creates a scheduler for job. A non-positive interval
// defaults to one hour.
func NewScheduler(name string, job Job, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		name:     name,
		job:      job,
		interval: interval,
		logger:   logger.With("component", "scheduler", "job", name),
	}
}

// SetResultHandler registers a function called after every run.
// It must be set before Start.
func (s *Scheduler) SetResultHandler(handler ResultHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResult = handler
}

// Start begins running the job in the background. The scheduler stops when
// ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(runCtx, s.onResult)

	s.logger.Info("scheduler started", "interval", s.interval.String())
	return nil
}

// Stop cancels the current run, if any, and waits for the loop to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// Wait blocks until the loop has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, onResult ResultHandler) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.run(ctx, onResult)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx, onResult)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, onResult ResultHandler) {
	start := time.Now()
	s.logger.Info("running scheduled job")

	err := s.job(ctx)

	end := time.Now()
	duration := end.Sub(start)
	if err != nil {
		s.logger.Error("scheduled job failed", "error", err, "duration", duration.String())
	} else {
		s.logger.Info("scheduled job completed", "duration", duration.String())
	}
	if onResult != nil {
		onResult(duration, end, err)
	}
}
