package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// limiterEntry tracks the token-bucket state for a single client.
type limiterEntry struct {
	tokens    float64
	lastCheck time.Time
}

// RateLimiter is an in-memory token-bucket limiter keyed by client address.
// Tokens refill continuously at limit-per-window.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   int
	window  time.Duration
}

// NewRateLimiter creates a limiter granting limit requests per window per
// client.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		window:  window,
	}
	go rl.cleanup()
	return rl
}

// Allow consumes one token for key, reporting whether capacity remained.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	e, ok := rl.entries[key]
	if !ok {
		rl.entries[key] = &limiterEntry{
			tokens:    float64(rl.limit - 1),
			lastCheck: now,
		}
		return true
	}

	refill := now.Sub(e.lastCheck).Seconds() * float64(rl.limit) / rl.window.Seconds()
	e.tokens += refill
	if e.tokens > float64(rl.limit) {
		e.tokens = float64(rl.limit)
	}
	e.lastCheck = now

	if e.tokens < 1 {
		return false
	}
	e.tokens--
	return true
}

// cleanup evicts idle entries so the map does not grow without bound.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-2 * rl.window)
		rl.mu.Lock()
		for key, e := range rl.entries {
			if e.lastCheck.Before(cutoff) {
				delete(rl.entries, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit rejects clients that exceed the limiter's budget with a 429.
// Health endpoints are exempt.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health") {
				next.ServeHTTP(w, r)
				return
			}
			if !rl.Allow(clientKey(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
