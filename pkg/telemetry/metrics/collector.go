package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rose-hq/rosegate/pkg/config"
)

// Collector owns the Prometheus registry and every gateway metric. All
// recording methods are safe to call on a nil receiver, so call sites do not
// need to guard for metrics being disabled.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	staticRequests  *prometheus.CounterVec
	manifestEntries prometheus.Gauge
	manifestReloads *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry, pre-registering
// the Go runtime and process collectors alongside the gateway metrics.
// It returns nil when metrics are disabled.
func NewCollector(cfg *config.MetricsConfig) *Collector {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Requests handled, by route decision and status code.",
			},
			[]string{"route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds, by route decision.",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"route"},
		),
		staticRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "static_requests_total",
				Help:      "Static serving attempts, by outcome.",
			},
			[]string{"outcome"},
		),
		manifestEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "manifest_entries",
				Help:      "Number of entries in the current manifest snapshot.",
			},
		),
		manifestReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "manifest_reloads_total",
				Help:      "Manifest reload attempts, by result.",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.staticRequests,
		c.manifestEntries,
		c.manifestReloads,
	)
	return c
}

// RecordRequest records one handled request with its route decision,
// response status, and duration.
func (c *Collector) RecordRequest(route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordStaticOutcome records the outcome of one static serving attempt.
func (c *Collector) RecordStaticOutcome(outcome string) {
	if c == nil {
		return
	}
	c.staticRequests.WithLabelValues(outcome).Inc()
}

// RecordManifestReload records one reload attempt and the resulting entry
// count.
func (c *Collector) RecordManifestReload(result string, entries int) {
	if c == nil {
		return
	}
	c.manifestReloads.WithLabelValues(result).Inc()
	c.manifestEntries.Set(float64(entries))
}

// Handler returns the HTTP handler exposing the registry in the Prometheus
// text format, or nil when metrics are disabled.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return nil
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}
