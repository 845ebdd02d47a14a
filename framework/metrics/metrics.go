// Package metrics exposes dispatcher counters on a private prometheus
// registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Collector records one observation per dispatched request.
type Collector struct {
	registry *prometheus.Registry

	dispatchTotal    *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
}

// New creates a Collector with its own registry, so several applications
// in one process (tests) never collide on metric names.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gomvc_dispatch_total",
				Help: "Number of dispatched requests by outcome.",
			},
			[]string{"outcome"},
		),
		dispatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gomvc_dispatch_duration_seconds",
				Help:    "Time taken to bind, invoke and write a dispatched request.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	c.registry.MustRegister(
		c.dispatchTotal,
		c.dispatchDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Observe counts one request with outcome and records its duration.
func (c *Collector) Observe(outcome string, d time.Duration) {
	c.dispatchTotal.WithLabelValues(outcome).Inc()
	c.dispatchDuration.Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
