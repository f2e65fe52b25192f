package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		if rw.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rw.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rw.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rwOther := httptest.NewRecorder()
	h.ServeHTTP(rwOther, other)
	if rwOther.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", rwOther.Code)
	}
}

func TestClientKeyPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := clientKey(req); got != "203.0.113.5" {
		t.Fatalf("unexpected client key %q", got)
	}
}

func TestRateLimiterSetsRetryAfter(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	base := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1"
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		return rw
	}
	send()
	rl.now = func() time.Time { return base.Add(45 * time.Second) }
	rw := send()
	if rw.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rw.Code)
	}
	if got := rw.Header().Get("Retry-After"); got != "15" {
		t.Fatalf("expected Retry-After 15, got %q", got)
	}

	rl.now = func() time.Time { return base.Add(time.Minute) }
	if rw := send(); rw.Code != http.StatusOK {
		t.Fatalf("expected a fresh window, got %d", rw.Code)
	}
}
