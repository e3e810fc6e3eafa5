package static

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rose-hq/rosegate/pkg/config"
	"rose-hq/rosegate/pkg/telemetry/metrics"
)

// streamChunkSize is the read buffer size used when streaming file bodies.
const streamChunkSize = 16 * 1024

// Outcome labels recorded per static serving attempt.
const (
	OutcomeServed      = "served"
	OutcomeNotModified = "not_modified"
	OutcomeNotFound    = "not_found"
	OutcomeFallthrough = "fallthrough"
	OutcomeError       = "error"
)

// Handler serves files from the static root, with manifest-aware resolution,
// conditional request handling, and cache-control policy. It deliberately
// does not implement http.Handler: TryServe reports whether it produced a
// response so the router can fall through to the upstream.
type Handler struct {
	resolver              *Resolver
	defaultCacheSeconds   uint64
	immutableCacheSeconds uint64
	logger                *slog.Logger
	metrics               *metrics.Collector
}

// NewHandler builds a static handler from configuration. manifest may be
// nil when no manifest is configured; collector may be nil when metrics are
// disabled.
func NewHandler(cfg *config.StaticConfig, manifest *Manifest, collector *metrics.Collector) *Handler {
	return &Handler{
		resolver:              NewResolver(cfg.Root, cfg.MountPath, cfg.IndexFile, manifest),
		defaultCacheSeconds:   cfg.DefaultCacheSeconds,
		immutableCacheSeconds: cfg.ImmutableCacheSeconds,
		logger:                slog.Default().With("component", "static.handler"),
		metrics:               collector,
	}
}

// TryServe attempts to serve the request from the static root. It returns
// (true, nil) when a response was written, (false, nil) when the request
// should fall through to the upstream, and a non-nil error for filesystem
// failures other than absence, which the caller surfaces as a server error.
//
// Only GET and HEAD are candidates for static serving; every other method
// falls through untouched.
func (h *Handler) TryServe(w http.ResponseWriter, r *http.Request) (bool, error) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false, nil
	}

	asset, ok := h.resolver.Resolve(r.URL.Path)
	if !ok {
		h.logger.Debug("request not resolvable as static asset", "path", r.URL.Path)
		h.metrics.RecordStaticOutcome(OutcomeFallthrough)
		return false, nil
	}

	info, err := os.Stat(asset.FullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.logger.Debug("static asset not found, falling through",
				"path", r.URL.Path, "file", asset.FullPath)
			h.metrics.RecordStaticOutcome(OutcomeFallthrough)
			return false, nil
		}
		h.metrics.RecordStaticOutcome(OutcomeError)
		return false, fmt.Errorf("failed to stat %q: %w", asset.FullPath, err)
	}

	// Directories and other non-regular files are a hard 404 rather than a
	// fallthrough: the path resolved inside the static tree but is not
	// servable.
	if !info.Mode().IsRegular() {
		h.respondNotFound(w)
		h.metrics.RecordStaticOutcome(OutcomeNotFound)
		return true, nil
	}

	etag := assetETag(info)
	lastModified := ""
	if mt := info.ModTime(); !mt.IsZero() {
		lastModified = mt.UTC().Format(http.TimeFormat)
	}

	if requestNotModified(r, etag, lastModified) {
		// 304 carries only the validators, no cache policy.
		writeValidatorHeaders(w, etag, lastModified)
		w.WriteHeader(http.StatusNotModified)
		h.metrics.RecordStaticOutcome(OutcomeNotModified)
		return true, nil
	}

	if r.Method == http.MethodHead {
		h.writeCachingHeaders(w, asset, etag, lastModified)
		h.writeContentHeaders(w, asset, info)
		w.WriteHeader(http.StatusOK)
		h.metrics.RecordStaticOutcome(OutcomeServed)
		return true, nil
	}

	file, err := os.Open(asset.FullPath)
	if err != nil {
		h.metrics.RecordStaticOutcome(OutcomeError)
		return false, fmt.Errorf("failed to open %q: %w", asset.FullPath, err)
	}
	defer file.Close()

	h.writeCachingHeaders(w, asset, etag, lastModified)
	h.writeContentHeaders(w, asset, info)
	w.WriteHeader(http.StatusOK)
	h.streamBody(w, file, asset.FullPath)

	h.metrics.RecordStaticOutcome(OutcomeServed)
	return true, nil
}

func writeValidatorHeaders(w http.ResponseWriter, etag, lastModified string) {
	w.Header().Set("ETag", etag)
	if lastModified != "" {
		w.Header().Set("Last-Modified", lastModified)
	}
}

// writeCachingHeaders sets the validator and cache-policy headers. HTML is
// the entry point into the hashed asset graph and must always revalidate;
// manifest-resolved files carry content hashes in their names and are
// immutable; everything else gets the short default lifetime.
func (h *Handler) writeCachingHeaders(w http.ResponseWriter, asset ResolvedAsset, etag, lastModified string) {
	writeValidatorHeaders(w, etag, lastModified)
	switch {
	case strings.HasSuffix(asset.LogicalPath, ".html"):
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")
	case asset.FromManifest:
		w.Header().Set("Cache-Control",
			fmt.Sprintf("public, max-age=%d, immutable", h.immutableCacheSeconds))
	default:
		w.Header().Set("Cache-Control",
			fmt.Sprintf("public, max-age=%d", h.defaultCacheSeconds))
	}
}

// writeContentHeaders sets Content-Type (when the extension is known) and
// Content-Length.
func (h *Handler) writeContentHeaders(w http.ResponseWriter, asset ResolvedAsset, info fs.FileInfo) {
	if contentType := mime.TypeByExtension(filepath.Ext(asset.LogicalPath)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
}

// streamBody copies the file to the client in fixed-size chunks. Errors here
// happen after the status line is committed, so they can only be logged.
func (h *Handler) streamBody(w http.ResponseWriter, file *os.File, path string) {
	buf := make([]byte, streamChunkSize)
	for {
		n, readErr := file.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				h.logger.Debug("client closed connection mid-stream",
					"file", path, "error", writeErr)
				return
			}
		}
		if readErr == io.EOF {
			return
		}
		if readErr != nil {
			h.logger.Error("read failed mid-stream", "file", path, "error", readErr)
			return
		}
	}
}

// respondNotFound writes the plain-text 404 used for unservable files.
func (h *Handler) respondNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, "404 not found")
}

// assetETag derives a weak-by-construction validator from file metadata:
// the file length and modification time in lowercase hex, quoted. Files
// with no usable modification time fall back to length only.
func assetETag(info fs.FileInfo) string {
	mt := info.ModTime()
	if mt.IsZero() {
		return fmt.Sprintf("%q", fmt.Sprintf("%x", info.Size()))
	}
	return fmt.Sprintf("%q", fmt.Sprintf("%x-%x", info.Size(), mt.Unix()))
}

// requestNotModified evaluates the conditional request headers against the
// current validators. Either condition alone is sufficient: a matching
// If-None-Match value, or a matching If-Modified-Since value, yields a 304
// even when the other header is present and stale.
//
// If-Modified-Since is compared by exact string equality with the
// Last-Modified value this handler would emit, not by parsing dates. A
// client echoing our own header back gets a 304; anything else, including a
// semantically equal date in a different format, is treated as modified.
func requestNotModified(r *http.Request, etag, lastModified string) bool {
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		for _, candidate := range strings.Split(inm, ",") {
			if strings.TrimSpace(candidate) == etag {
				return true
			}
		}
	}
	if ims := r.Header.Get("If-Modified-Since"); ims != "" && lastModified != "" {
		return ims == lastModified
	}
	return false
}
