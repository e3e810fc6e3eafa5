package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// VersionInfo is the payload served by the version endpoint. The values are
// injected at build time via linker flags.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

// LivenessHandler reports that the process is up. It performs no dependency
// checks; a live-but-not-ready gateway still answers here.
func LivenessHandler() http.Handler {
	started := time.Now()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         StatusHealthy,
			"uptime_seconds": int64(time.Since(started).Seconds()),
		})
	})
}

// ReadinessHandler runs the registered checks and reports 200 when all pass,
// 503 otherwise.
func ReadinessHandler(checker *Checker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := checker.RunChecks(r.Context())
		status := http.StatusOK
		if report.Status != StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	})
}

// VersionHandler serves the build metadata.
func VersionHandler(info VersionInfo) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, info)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
