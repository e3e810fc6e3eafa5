package middleware

import (
	"net/http"
	"time"

	"rose-hq/rosegate/pkg/telemetry/metrics"
)

const (
	// corsAllowMethods is the fixed method list advertised to browsers,
	// independent of what the gateway or upstream actually accepts.
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS, PATCH"

	// corsPreflightMaxAge lets browsers cache preflight results for a day.
	corsPreflightMaxAge = "86400"
)

// ApplyCORS sets the reflective CORS response headers for the given Origin.
// The origin is echoed back rather than validated against an allowlist, with
// credentials permitted; Vary: Origin is appended so caches keep per-origin
// variants separate.
func ApplyCORS(header http.Header, origin string) {
	header.Set("Access-Control-Allow-Origin", origin)
	header.Add("Vary", "Origin")
	header.Set("Access-Control-Allow-Credentials", "true")
	header.Set("Access-Control-Allow-Methods", corsAllowMethods)
}

// CORS returns middleware that answers OPTIONS requests directly and applies
// reflective CORS headers to every other response that carries an Origin.
//
// OPTIONS never reaches the handlers behind it: with an Origin header the
// response is 204 with the full CORS header set and a preflight max-age;
// without one it is a bare 200 with no CORS headers at all. The bare-200
// shape is long-standing observable behavior and is kept as is.
func CORS(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if r.Method == http.MethodOptions {
				start := time.Now()
				if origin == "" {
					w.WriteHeader(http.StatusOK)
					collector.RecordRequest("preflight", http.StatusOK, time.Since(start))
					return
				}
				ApplyCORS(w.Header(), origin)
				w.Header().Set("Access-Control-Max-Age", corsPreflightMaxAge)
				w.WriteHeader(http.StatusNoContent)
				collector.RecordRequest("preflight", http.StatusNoContent, time.Since(start))
				return
			}

			if origin != "" {
				ApplyCORS(w.Header(), origin)
			}
			next.ServeHTTP(w, r)
		})
	}
}
