package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, rpm int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: rpm})
	t.Cleanup(rl.Stop)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request in the window should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients have their own budget")
	}

	*now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("budget should reset after the window")
	}
}

func TestLimiter_WindowDoesNotSlide(t *testing.T) {
	rl, now := newTestLimiter(t, 2)
	rl.Allow("a")
	*now = now.Add(40 * time.Second)
	rl.Allow("a")
	*now = now.Add(30 * time.Second)
	if !rl.Allow("a") {
		t.Fatal("window started 70s ago and should have reset")
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, 10)
	rl.Allow("old")
	*now = now.Add(11 * time.Minute)
	rl.Allow("fresh")

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Fatalf("ActiveClients() = %d, want 1", rl.ActiveClients())
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("first status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rr.Header().Get("Retry-After"))
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
