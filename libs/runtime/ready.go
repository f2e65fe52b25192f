package runtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// CheckTimeout bounds each readiness probe.
const CheckTimeout = 2 * time.Second

// ReadyCheck is a named dependency probe.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

func NewBaseMuxWithReady(checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", Healthz)
	mux.HandleFunc("GET /readyz", Readyz(checks...))
	return mux
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, readiness{Status: "ok"})
}

type readiness struct {
	Status   string   `json:"status"`
	Failures []string `json:"failures,omitempty"`
}

// Readyz answers 200 when every check passes and 503 with the failures otherwise.
func Readyz(checks ...ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if failures := RunChecks(r.Context(), checks...); len(failures) > 0 {
			writeStatus(w, http.StatusServiceUnavailable, readiness{Status: "unavailable", Failures: failures})
			return
		}
		writeStatus(w, http.StatusOK, readiness{Status: "ready"})
	}
}

// RunChecks probes every dependency concurrently and returns "name: error"
// entries sorted by name. Checks without a func are skipped.
func RunChecks(ctx context.Context, checks ...ReadyCheck) []string {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures []string
	)
	for _, c := range checks {
		if c.Check == nil {
			continue
		}
		wg.Add(1)
		go func(c ReadyCheck) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, CheckTimeout)
			defer cancel()
			if err := c.Check(cctx); err != nil {
				name := c.Name
				if name == "" {
					name = "dependency"
				}
				mu.Lock()
				failures = append(failures, name+": "+err.Error())
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()
	sort.Strings(failures)
	return failures
}

func writeStatus(w http.ResponseWriter, status int, body readiness) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
