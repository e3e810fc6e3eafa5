// Package telemetry groups the observability subpackages: logging (slog
// setup), metrics (Prometheus collection), and health (liveness, readiness,
// and version endpoints).
package telemetry
