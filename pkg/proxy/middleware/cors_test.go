package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(next http.Handler) http.Handler {
	return CORS(nil)(next)
}

func TestCORSReflectsOrigin(t *testing.T) {
	handler := corsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/app.js", nil)
	r.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != corsAllowMethods {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	found := false
	for _, v := range w.Header().Values("Vary") {
		if v == "Origin" {
			found = true
		}
	}
	if !found {
		t.Errorf("Vary = %v, missing Origin", w.Header().Values("Vary"))
	}
}

func TestCORSWithoutOrigin(t *testing.T) {
	handler := corsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/app.js", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	reached := false
	handler := corsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	t.Run("with origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
		r.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
		if got := w.Header().Get("Access-Control-Max-Age"); got != "86400" {
			t.Errorf("Access-Control-Max-Age = %q", got)
		}
		if reached {
			t.Error("preflight reached the inner handler")
		}
	})

	t.Run("without origin", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
		if len(w.Header().Values("Access-Control-Allow-Origin")) != 0 {
			t.Error("OPTIONS without Origin carried CORS headers")
		}
		if got := w.Header().Get("Access-Control-Max-Age"); got != "" {
			t.Errorf("Access-Control-Max-Age = %q, want empty", got)
		}
		if reached {
			t.Error("OPTIONS reached the inner handler")
		}
	})
}
