package proxy

import (
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"

	"rose-hq/rosegate/pkg/config"
)

// corsResponseHeaders are stripped from upstream responses: the gateway's
// own reflective CORS headers are authoritative, and letting the upstream's
// copies through would duplicate them.
var corsResponseHeaders = []string{
	"Access-Control-Allow-Origin",
	"Access-Control-Allow-Credentials",
	"Access-Control-Allow-Methods",
	"Access-Control-Max-Age",
}

// Forwarder proxies requests to the single configured upstream over plain
// HTTP.
type Forwarder struct {
	proxy  *httputil.ReverseProxy
	logger *slog.Logger
}

// NewForwarder builds the upstream leg. The outgoing Host header is the
// upstream host with any port stripped; X-Forwarded-* headers are set for
// the client hop.
func NewForwarder(cfg *config.UpstreamConfig) *Forwarder {
	logger := slog.Default().With("component", "proxy.upstream")

	hostHeader := cfg.Address
	if host, _, err := net.SplitHostPort(cfg.Address); err == nil {
		hostHeader = host
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Scheme = "http"
			pr.Out.URL.Host = cfg.Address
			pr.Out.Host = hostHeader
			pr.SetXForwarded()
		},
		ModifyResponse: func(resp *http.Response) error {
			for _, h := range corsResponseHeaders {
				resp.Header.Del(h)
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("upstream request failed",
				"method", r.Method, "path", r.URL.Path, "error", err)
			w.WriteHeader(http.StatusBadGateway)
		},
	}

	return &Forwarder{proxy: rp, logger: logger}
}

// ServeHTTP implements http.Handler.
func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.proxy.ServeHTTP(w, r)
}
