package llm

import (
	"testing"
	"time"
)

func TestHealthRegistry_MarkAndExpire(t *testing.T) {
	now := time.Now()
	r := NewHealthRegistry(24 * time.Hour)
	r.now = func() time.Time { return now }

	if !r.IsAvailable("groq") {
		t.Fatal("fresh key should be available")
	}

	r.MarkLimited("groq", time.Hour)
	if r.IsAvailable("groq") {
		t.Fatal("key should be unavailable right after MarkLimited")
	}

	now = now.Add(59 * time.Minute)
	if r.IsAvailable("groq") {
		t.Fatal("key should still be cooling down")
	}

	// Lazy expiry: no call other than the availability read.
	now = now.Add(2 * time.Minute)
	if !r.IsAvailable("groq") {
		t.Fatal("key should be available after the cooldown elapses")
	}
}

func TestHealthRegistry_DailyRollover(t *testing.T) {
	now := time.Now()
	r := NewHealthRegistry(24 * time.Hour)
	r.now = func() time.Time { return now }

	r.IncrementRequests("cloudflare")
	r.IncrementRequests("cloudflare")
	if got := r.RequestCount("cloudflare"); got != 2 {
		t.Fatalf("RequestCount = %d, want 2", got)
	}

	// A very long rate limit is lifted by the daily window.
	r.MarkLimited("cloudflare", 100*time.Hour)
	if r.IsAvailable("cloudflare") {
		t.Fatal("key should be limited")
	}

	now = now.Add(25 * time.Hour)
	if got := r.RequestCount("cloudflare"); got != 0 {
		t.Fatalf("RequestCount after rollover = %d, want 0", got)
	}
	if !r.IsAvailable("cloudflare") {
		t.Fatal("rollover should clear the rate limit")
	}
}

func TestHealthRegistry_AllLimited(t *testing.T) {
	r := NewHealthRegistry(24 * time.Hour)
	keys := []string{ModelKey("groq", "a"), ModelKey("groq", "b")}

	if r.AllLimited(keys) {
		t.Fatal("fresh keys should not count as all limited")
	}
	r.MarkLimited(keys[0], time.Hour)
	if r.AllLimited(keys) {
		t.Fatal("one available key should keep AllLimited false")
	}
	r.MarkLimited(keys[1], time.Hour)
	if !r.AllLimited(keys) {
		t.Fatal("expected all keys limited")
	}
	if r.AllLimited(nil) {
		t.Fatal("empty key set is never all limited")
	}
}

func TestHealthRegistry_Sweep(t *testing.T) {
	now := time.Now()
	r := NewHealthRegistry(24 * time.Hour)
	r.now = func() time.Time { return now }

	r.MarkLimited("together", 10*time.Minute)
	now = now.Add(11 * time.Minute)
	r.Sweep()

	r.mu.Lock()
	s := r.keys["together"]
	limited := s.rateLimited
	r.mu.Unlock()
	if limited {
		t.Fatal("sweep should clear expired cooldowns")
	}
}
