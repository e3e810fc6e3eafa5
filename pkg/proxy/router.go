package proxy

import (
	"log/slog"
	"net/http"
	"time"

	"rose-hq/rosegate/pkg/accesslog"
	"rose-hq/rosegate/pkg/proxy/middleware"
	"rose-hq/rosegate/pkg/static"
	"rose-hq/rosegate/pkg/telemetry/metrics"
)

// Route decision labels.
const (
	RouteStatic   = "static"
	RouteUpstream = "upstream"
)

// statusWriter captures the response status and body size for metrics and
// the access log.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(p []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(p)
	sw.bytes += int64(n)
	return n, err
}

func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Router is the static-versus-upstream decision point. Each request is first
// offered to the static handler; only when it declines (path outside the
// mount, illegal components, or no such file) does the request go to the
// upstream. Static filesystem errors other than absence terminate the
// request with a 500 rather than falling through, so upstream traffic never
// masks a broken static root.
type Router struct {
	static   *static.Handler
	upstream http.Handler
	recorder *accesslog.Recorder
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewRouter builds the router. staticHandler may be nil when static serving
// is not configured; recorder and collector may be nil when the access log
// or metrics are disabled.
func NewRouter(staticHandler *static.Handler, upstream http.Handler, recorder *accesslog.Recorder, collector *metrics.Collector) *Router {
	return &Router{
		static:   staticHandler,
		upstream: upstream,
		recorder: recorder,
		metrics:  collector,
		logger:   slog.Default().With("component", "proxy.router"),
	}
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w}

	if rt.static != nil {
		handled, err := rt.static.TryServe(sw, r)
		if err != nil {
			rt.logger.Error("static serving failed",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
				"request_id", middleware.RequestIDFromContext(r.Context()),
			)
			http.Error(sw, "internal server error", http.StatusInternalServerError)
			rt.finish(r, RouteStatic, sw, start)
			return
		}
		if handled {
			rt.finish(r, RouteStatic, sw, start)
			return
		}
	}

	rt.upstream.ServeHTTP(sw, r)
	rt.finish(r, RouteUpstream, sw, start)
}

func (rt *Router) finish(r *http.Request, route string, sw *statusWriter, start time.Time) {
	status := sw.status
	if status == 0 {
		status = http.StatusOK
	}
	duration := time.Since(start)

	rt.metrics.RecordRequest(route, status, duration)

	if rt.recorder != nil {
		rt.recorder.Record(accesslog.Record{
			Timestamp:  start,
			RequestID:  middleware.RequestIDFromContext(r.Context()),
			Method:     r.Method,
			Path:       r.URL.Path,
			Route:      route,
			Status:     status,
			BytesSent:  sw.bytes,
			DurationMs: duration.Milliseconds(),
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	}
}
