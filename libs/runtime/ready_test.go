package runtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadyzReportsFailures(t *testing.T) {
	mux := NewBaseMuxWithReady(
		ReadyCheck{Name: "db", Check: func(context.Context) error { return errors.New("down") }},
		ReadyCheck{Name: "noop"},
	)

	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rw.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rw.Code)
	}
	if !strings.Contains(rw.Body.String(), "db: down") {
		t.Fatalf("unexpected body %q", rw.Body.String())
	}

	if !strings.Contains(rw.Body.String(), `"status":"unavailable"`) {
		t.Fatalf("unexpected body %q", rw.Body.String())
	}

	rw = httptest.NewRecorder()
	mux.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
}

func TestRunChecksSortsFailures(t *testing.T) {
	fail := func(context.Context) error { return errors.New("down") }
	got := RunChecks(context.Background(),
		ReadyCheck{Name: "redis", Check: fail},
		ReadyCheck{Name: "db", Check: fail},
		ReadyCheck{Name: "kafka", Check: func(context.Context) error { return nil }},
	)
	if len(got) != 2 || got[0] != "db: down" || got[1] != "redis: down" {
		t.Fatalf("unexpected failures %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG").String() != "DEBUG" {
		t.Fatal("expected debug level")
	}
	if ParseLevel("nonsense").String() != "INFO" {
		t.Fatal("expected info fallback")
	}
}
