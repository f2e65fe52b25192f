package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWithCORSPreflight(t *testing.T) {
	called := false
	h := WithCORS(CORSPolicy{
		AllowedOrigins: []string{"http://localhost:5000"},
		AllowedMethods: []string{"GET", "POST", "PATCH"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         10 * time.Minute,
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/bookings", nil)
	req.Header.Set("Origin", "http://localhost:5000")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)

	if rw.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rw.Code)
	}
	if called {
		t.Fatal("preflight should not reach the handler")
	}
	if got := rw.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5000" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if got := rw.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("unexpected max age %q", got)
	}
}

func TestWithCORSIgnoresUnknownOrigin(t *testing.T) {
	h := WithCORS(CORSPolicy{AllowedOrigins: []string{"http://localhost:5000"}})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/providers", nil)
	req.Header.Set("Origin", "http://evil.test")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if got := rw.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow origin, got %q", got)
	}
}

func TestWithCORSExposesRequestIDOnSimpleRequests(t *testing.T) {
	h := WithCORS(CORSPolicy{AllowedOrigins: []string{"http://localhost:5000"}})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/providers", nil)
	req.Header.Set("Origin", "http://LOCALHOST:5000")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)

	if got := rw.Header().Get("Access-Control-Allow-Origin"); got != "http://LOCALHOST:5000" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if got := rw.Header().Get("Access-Control-Expose-Headers"); got != RequestIDHeader {
		t.Fatalf("unexpected expose headers %q", got)
	}
	if rw.Header().Get("Access-Control-Allow-Methods") != "" {
		t.Fatal("allow methods belong to preflight responses only")
	}
}
