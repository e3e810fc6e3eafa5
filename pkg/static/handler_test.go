package static

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rose-hq/rosegate/pkg/config"
)

func testStaticConfig(root string) *config.StaticConfig {
	return &config.StaticConfig{
		Root:                  root,
		MountPath:             "/",
		IndexFile:             "index.html",
		DefaultCacheSeconds:   60,
		ImmutableCacheSeconds: 31536000,
	}
}

func writeAsset(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func serve(t *testing.T, h *Handler, method, target string, headers map[string]string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	r := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handled, err := h.TryServe(w, r)
	if err != nil {
		t.Fatalf("TryServe(%s %s) error: %v", method, target, err)
	}
	return w, handled
}

func TestTryServeFile(t *testing.T) {
	root := t.TempDir()
	path := writeAsset(t, root, "app.js", "console.log('hi');")
	mtime := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	h := NewHandler(testStaticConfig(root), nil, nil)
	w, handled := serve(t, h, http.MethodGet, "/app.js", nil)
	if !handled {
		t.Fatal("TryServe did not handle the request")
	}

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "console.log('hi');" {
		t.Errorf("body = %q", got)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "javascript") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=60" {
		t.Errorf("Cache-Control = %q", cc)
	}

	wantETag := fmt.Sprintf("\"%x-%x\"", len("console.log('hi');"), mtime.Unix())
	if got := w.Header().Get("ETag"); got != wantETag {
		t.Errorf("ETag = %q, want %q", got, wantETag)
	}
	if got := w.Header().Get("Last-Modified"); got != mtime.Format(http.TimeFormat) {
		t.Errorf("Last-Modified = %q", got)
	}
}

func TestTryServeManifestAssetIsImmutable(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "app.3f2a91.js", "hashed")
	m := testManifest(t, `{"app.js": "app.3f2a91.js"}`)

	h := NewHandler(testStaticConfig(root), m, nil)
	w, handled := serve(t, h, http.MethodGet, "/app.js", nil)
	if !handled {
		t.Fatal("TryServe did not handle the request")
	}
	if w.Body.String() != "hashed" {
		t.Errorf("body = %q", w.Body.String())
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=31536000, immutable" {
		t.Errorf("Cache-Control = %q", cc)
	}
}

func TestTryServeCachePolicyFollowsLogicalName(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "app.abc123.html", "<html>shell</html>")
	m := testManifest(t, `{"app": "app.abc123.html"}`)

	// The manifest maps "app" to an .html file, but the cache policy and
	// content type follow the requested name, not the physical one.
	h := NewHandler(testStaticConfig(root), m, nil)
	w, handled := serve(t, h, http.MethodGet, "/app", nil)
	if !handled {
		t.Fatal("TryServe did not handle the request")
	}
	if w.Body.String() != "<html>shell</html>" {
		t.Errorf("body = %q", w.Body.String())
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=31536000, immutable" {
		t.Errorf("Cache-Control = %q", cc)
	}
	if ct := w.Header().Get("Content-Type"); ct != "" {
		t.Errorf("Content-Type = %q, want unset for an extensionless name", ct)
	}
}

func TestTryServeHTMLAlwaysRevalidates(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "index.html", "<html></html>")
	writeAsset(t, root, "docs/index.html", "<html>docs</html>")

	h := NewHandler(testStaticConfig(root), nil, nil)

	for _, target := range []string{"/", "/index.html", "/docs/"} {
		w, handled := serve(t, h, http.MethodGet, target, nil)
		if !handled {
			t.Fatalf("%s not handled", target)
		}
		if cc := w.Header().Get("Cache-Control"); cc != "no-cache, must-revalidate" {
			t.Errorf("%s: Cache-Control = %q", target, cc)
		}
	}
}

func TestTryServeConditional(t *testing.T) {
	root := t.TempDir()
	path := writeAsset(t, root, "app.js", "body")
	mtime := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	etag := fmt.Sprintf("\"%x-%x\"", len("body"), mtime.Unix())
	lastModified := mtime.Format(http.TimeFormat)

	h := NewHandler(testStaticConfig(root), nil, nil)

	t.Run("matching etag", func(t *testing.T) {
		w, _ := serve(t, h, http.MethodGet, "/app.js", map[string]string{"If-None-Match": etag})
		if w.Code != http.StatusNotModified {
			t.Errorf("status = %d, want 304", w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("304 carried a body: %q", w.Body.String())
		}
		if got := w.Header().Get("ETag"); got != etag {
			t.Errorf("ETag = %q", got)
		}
		if got := w.Header().Get("Cache-Control"); got != "" {
			t.Errorf("304 carried Cache-Control %q", got)
		}
	})

	t.Run("etag in comma list", func(t *testing.T) {
		w, _ := serve(t, h, http.MethodGet, "/app.js",
			map[string]string{"If-None-Match": `"other", ` + etag + ` , "another"`})
		if w.Code != http.StatusNotModified {
			t.Errorf("status = %d, want 304", w.Code)
		}
	})

	t.Run("non-matching etag", func(t *testing.T) {
		w, _ := serve(t, h, http.MethodGet, "/app.js", map[string]string{"If-None-Match": `"stale"`})
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("if-modified-since exact string", func(t *testing.T) {
		w, _ := serve(t, h, http.MethodGet, "/app.js", map[string]string{"If-Modified-Since": lastModified})
		if w.Code != http.StatusNotModified {
			t.Errorf("status = %d, want 304", w.Code)
		}
	})

	t.Run("if-modified-since equivalent date other format", func(t *testing.T) {
		// Same instant in RFC 850 format. The comparison is string
		// equality, so this does not match.
		w, _ := serve(t, h, http.MethodGet, "/app.js",
			map[string]string{"If-Modified-Since": mtime.Format(time.RFC850)})
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("stale etag with matching if-modified-since", func(t *testing.T) {
		// Either validator alone satisfies the request.
		w, _ := serve(t, h, http.MethodGet, "/app.js", map[string]string{
			"If-None-Match":     `"stale"`,
			"If-Modified-Since": lastModified,
		})
		if w.Code != http.StatusNotModified {
			t.Errorf("status = %d, want 304", w.Code)
		}
	})

	t.Run("stale etag with stale if-modified-since", func(t *testing.T) {
		w, _ := serve(t, h, http.MethodGet, "/app.js", map[string]string{
			"If-None-Match":     `"stale"`,
			"If-Modified-Since": mtime.Add(-time.Hour).Format(http.TimeFormat),
		})
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

func TestTryServeHead(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "app.js", "content")

	h := NewHandler(testStaticConfig(root), nil, nil)
	w, handled := serve(t, h, http.MethodHead, "/app.js", nil)
	if !handled {
		t.Fatal("TryServe did not handle the request")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("HEAD carried a body: %q", w.Body.String())
	}
	if got := w.Header().Get("Content-Length"); got != "7" {
		t.Errorf("Content-Length = %q, want 7", got)
	}
	if w.Header().Get("ETag") == "" {
		t.Error("HEAD missing ETag")
	}
}

func TestTryServeDirectoryIsNotFound(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "docs"), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	h := NewHandler(testStaticConfig(root), nil, nil)
	w, handled := serve(t, h, http.MethodGet, "/docs", nil)
	if !handled {
		t.Fatal("TryServe did not handle the request")
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w.Body.String() != "404 not found" {
		t.Errorf("body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestTryServeFallthrough(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "app.js", "content")
	h := NewHandler(testStaticConfig(root), nil, nil)

	t.Run("missing file", func(t *testing.T) {
		if _, handled := serve(t, h, http.MethodGet, "/missing.js", nil); handled {
			t.Error("missing file was handled")
		}
	})

	t.Run("non-GET method", func(t *testing.T) {
		if _, handled := serve(t, h, http.MethodPost, "/app.js", nil); handled {
			t.Error("POST was handled")
		}
	})

	t.Run("traversal", func(t *testing.T) {
		if _, handled := serve(t, h, http.MethodGet, "/js/../../etc/passwd", nil); handled {
			t.Error("traversal was handled")
		}
	})
}

func TestTryServeStreamsLargeFile(t *testing.T) {
	root := t.TempDir()
	content := strings.Repeat("0123456789abcdef", 4096) // 64 KiB, several chunks
	writeAsset(t, root, "big.bin", content)

	h := NewHandler(testStaticConfig(root), nil, nil)
	w, handled := serve(t, h, http.MethodGet, "/big.bin", nil)
	if !handled {
		t.Fatal("TryServe did not handle the request")
	}
	if w.Body.String() != content {
		t.Errorf("body length = %d, want %d", w.Body.Len(), len(content))
	}
	if got := w.Header().Get("Content-Length"); got != fmt.Sprint(len(content)) {
		t.Errorf("Content-Length = %q", got)
	}
}

type fakeFileInfo struct {
	size  int64
	mtime time.Time
}

func (f fakeFileInfo) Name() string       { return "f" }
func (f fakeFileInfo) Size() int64        { return f.size }
func (f fakeFileInfo) Mode() os.FileMode  { return 0o644 }
func (f fakeFileInfo) ModTime() time.Time { return f.mtime }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() any           { return nil }

func TestAssetETag(t *testing.T) {
	mtime := time.Unix(0x68c3a1ed, 0)
	if got := assetETag(fakeFileInfo{size: 255, mtime: mtime}); got != `"ff-68c3a1ed"` {
		t.Errorf("assetETag = %q, want %q", got, `"ff-68c3a1ed"`)
	}
	if got := assetETag(fakeFileInfo{size: 255}); got != `"ff"` {
		t.Errorf("assetETag without mtime = %q, want %q", got, `"ff"`)
	}
}
