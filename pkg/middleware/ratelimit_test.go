package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)
	for i := 0; i < 3; i++ {
		if !rl.Allow("client") {
			t.Fatalf("request %d denied within limit", i+1)
		}
	}
	if rl.Allow("client") {
		t.Error("request over limit allowed")
	}
}

func TestAllowIsPerClient(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	if !rl.Allow("a") {
		t.Fatal("first client denied")
	}
	if !rl.Allow("b") {
		t.Error("second client should have its own bucket")
	}
}

func TestTokensRefill(t *testing.T) {
	rl := NewRateLimiter(100, 100*time.Millisecond)
	for rl.Allow("client") {
	}
	time.Sleep(50 * time.Millisecond)
	if !rl.Allow("client") {
		t.Error("tokens did not refill over time")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RateLimit(rl)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?prefix=A", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
}

func TestRateLimitExemptsHealthEndpoints(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RateLimit(rl)(next)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("health request %d status = %d, want 200", i+1, rec.Code)
		}
	}
}
