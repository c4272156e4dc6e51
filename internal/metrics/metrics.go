// Package metrics exposes Prometheus instrumentation for the job
// pipeline. All Collector methods are nil-safe so callers can run
// without metrics wired, which keeps tests and one-off tools simple.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the pipeline's Prometheus instruments.
type Collector struct {
	registry *prometheus.Registry

	jobsClaimed   prometheus.Counter
	jobsSucceeded prometheus.Counter
	jobsFailed    *prometheus.CounterVec
	jobsRetried   prometheus.Counter
	jobDuration   prometheus.Histogram
	providerCalls *prometheus.CounterVec
}

// NewCollector registers the pipeline instruments on a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		jobsClaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drafted_jobs_claimed_total",
			Help: "Jobs transitioned from queued to running.",
		}),
		jobsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drafted_jobs_succeeded_total",
			Help: "Jobs that reached the succeeded state.",
		}),
		jobsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drafted_jobs_failed_total",
			Help: "Jobs that reached the failed state, by failure code.",
		}, []string{"failure_code"}),
		jobsRetried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drafted_job_retries_total",
			Help: "Retry attempts scheduled after transient failures.",
		}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "drafted_job_duration_seconds",
			Help:    "Wall time from claim to success.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drafted_provider_calls_total",
			Help: "Generation provider invocations, by provider.",
		}, []string{"provider"}),
	}
	registry.MustRegister(
		c.jobsClaimed,
		c.jobsSucceeded,
		c.jobsFailed,
		c.jobsRetried,
		c.jobDuration,
		c.providerCalls,
	)
	return c
}

// Handler serves the registry in Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) JobClaimed() {
	if c == nil {
		return
	}
	c.jobsClaimed.Inc()
}

func (c *Collector) JobSucceeded(durationSeconds float64) {
	if c == nil {
		return
	}
	c.jobsSucceeded.Inc()
	c.jobDuration.Observe(durationSeconds)
}

func (c *Collector) JobFailed(failureCode string) {
	if c == nil {
		return
	}
	c.jobsFailed.WithLabelValues(failureCode).Inc()
}

func (c *Collector) JobRetried() {
	if c == nil {
		return
	}
	c.jobsRetried.Inc()
}

func (c *Collector) ProviderCall(provider string) {
	if c == nil {
		return
	}
	if provider == "" {
		provider = "unknown"
	}
	c.providerCalls.WithLabelValues(provider).Inc()
}
