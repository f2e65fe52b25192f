package httpx

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter is an in-process fixed-window limiter keyed by client IP.
type RateLimiter struct {
	limit   int
	window  time.Duration
	mu      sync.Mutex
	windows map[string]*fixedWindow
	now     func() time.Time
}

type fixedWindow struct {
	count   int
	resetAt time.Time
}

const maxTrackedClients = 10000

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{limit: limit, window: window, windows: map[string]*fixedWindow{}, now: time.Now}
}

func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ok, wait := rl.allow(clientKey(r)); !ok {
				tooManyRequests(w, r, wait)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// allow counts one hit for key and reports how long a rejected caller must wait.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if len(rl.windows) > maxTrackedClients {
		for k, fw := range rl.windows {
			if !now.Before(fw.resetAt) {
				delete(rl.windows, k)
			}
		}
	}

	fw, ok := rl.windows[key]
	if !ok || !now.Before(fw.resetAt) {
		rl.windows[key] = &fixedWindow{count: 1, resetAt: now.Add(rl.window)}
		return true, 0
	}
	if fw.count >= rl.limit {
		return false, fw.resetAt.Sub(now)
	}
	fw.count++
	return true, 0
}

func tooManyRequests(w http.ResponseWriter, r *http.Request, wait time.Duration) {
	if wait > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
	}
	WriteError(w, r, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
}

// clientKey trusts the first X-Forwarded-For hop; the API is expected to sit
// behind a proxy that sets it.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
