// Package metrics exposes Prometheus instrumentation for the gateway.
//
// All metrics live on a dedicated registry rather than the global default,
// namespaced by the configured namespace/subsystem pair. The Collector's
// recording methods are nil-safe: with metrics disabled NewCollector returns
// nil and every RecordX call becomes a no-op, so wiring code never branches
// on whether metrics are on.
//
// Exposed series:
//
//	requests_total{route,status}       counter
//	request_duration_seconds{route}    histogram
//	static_requests_total{outcome}     counter
//	manifest_entries                   gauge
//	manifest_reloads_total{result}     counter
package metrics
