package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunsImmediatelyAndOnInterval(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewScheduler("ingest", func(context.Context) error {
		runs.Add(1)
		return nil
	}, 20*time.Millisecond, discardLogger())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, time.Millisecond,
		"job should run right after start")
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_StartTwice(t *testing.T) {
	t.Parallel()

	s := NewScheduler("ingest", func(context.Context) error { return nil }, time.Hour, discardLogger())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	var sawCancel atomic.Bool
	s := NewScheduler("ingest", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
		return ctx.Err()
	}, time.Hour, discardLogger())

	require.NoError(t, s.Start(context.Background()))
	<-started
	s.Stop()

	assert.True(t, sawCancel.Load())
}

func TestScheduler_StopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler("ingest", func(context.Context) error { return nil }, 10*time.Millisecond, discardLogger())
	require.NoError(t, s.Start(ctx))

	cancel()
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}

func TestScheduler_ResultHandler(t *testing.T) {
	t.Parallel()

	jobErr := errors.New("aggregator down")
	var mu sync.Mutex
	var results []error

	s := NewScheduler("ingest", func(context.Context) error { return jobErr }, time.Hour, discardLogger())
	s.SetResultHandler(func(d time.Duration, end time.Time, err error) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, err)
	})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(results) == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, results[0], jobErr)
}

func TestNewScheduler_DefaultInterval(t *testing.T) {
	t.Parallel()

	s := NewScheduler("ingest", func(context.Context) error { return nil }, 0, nil)
	assert.Equal(t, time.Hour, s.interval)
	s.Stop()
}
