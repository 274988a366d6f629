// Package metrics exposes Prometheus metrics for the content pipeline.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/bookofmonth/bookofmonth-api/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookofmonth"

// Article outcomes recorded by the articles_total counter.
const (
	OutcomePersisted     = "persisted"
	OutcomeSkippedUnsafe = "skipped_unsafe"
	OutcomeSkippedStale  = "skipped_stale"
)

// PipelineCollector counts pipeline events and scheduled run results.
// It implements events.Handler so it can be registered on an emitter.
type PipelineCollector struct {
	registry       *prometheus.Registry
	articlesTotal  *prometheus.CounterVec
	fallbacksTotal *prometheus.CounterVec
	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Histogram
	lastSuccess    prometheus.Gauge
}

var _ events.Handler = (*PipelineCollector)(nil)

// NewPipelineCollector constructs a collector on its own registry.
func NewPipelineCollector() (*PipelineCollector, error) {
	registry := prometheus.NewRegistry()

	articlesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "articles_total",
		Help:      "Articles handled by the pipeline, by outcome.",
	}, []string{"outcome"})

	fallbacksTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "stage_fallbacks_total",
		Help:      "Stages that fell back to their safe default, by stage.",
	}, []string{"stage"})

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "runs_total",
		Help:      "Scheduled ingestion runs, by result.",
	}, []string{"result"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "run_duration_seconds",
		Help:      "Duration of scheduled ingestion runs.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	})

	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful ingestion run.",
	})

	for _, c := range []prometheus.Collector{articlesTotal, fallbacksTotal, runsTotal, runDuration, lastSuccess} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &PipelineCollector{
		registry:       registry,
		articlesTotal:  articlesTotal,
		fallbacksTotal: fallbacksTotal,
		runsTotal:      runsTotal,
		runDuration:    runDuration,
		lastSuccess:    lastSuccess,
	}, nil
}

// HandleEvent records a pipeline event. Unknown event types are ignored.
func (c *PipelineCollector) HandleEvent(_ context.Context, event events.PipelineEvent) error {
	switch event.Type {
	case events.TypeEventPersisted:
		c.articlesTotal.WithLabelValues(OutcomePersisted).Inc()
	case events.TypeArticleSkipped:
		outcome := OutcomeSkippedUnsafe
		if event.Reason == events.ReasonStale {
			outcome = OutcomeSkippedStale
		}
		c.articlesTotal.WithLabelValues(outcome).Inc()
	case events.TypeStageFallback:
		c.fallbacksTotal.WithLabelValues(event.Stage).Inc()
	}
	return nil
}

// ObserveRun records the result of one ingestion run that finished at end.
func (c *PipelineCollector) ObserveRun(duration time.Duration, end time.Time, err error) {
	c.runDuration.Observe(duration.Seconds())
	if err != nil {
		c.runsTotal.WithLabelValues("error").Inc()
		return
	}
	c.runsTotal.WithLabelValues("success").Inc()
	c.lastSuccess.Set(float64(end.Unix()))
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *PipelineCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
