// Package health provides liveness, readiness, and version endpoints.
//
// Liveness answers as long as the process is running. Readiness aggregates
// named dependency checks (static root present, manifest loaded, upstream
// configured) under a shared timeout and returns 503 when any fail. The
// version endpoint reports build metadata injected via linker flags.
package health
