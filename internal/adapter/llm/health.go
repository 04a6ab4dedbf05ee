package llm

import (
	"sync"
	"time"
)

// ModelKey builds the secondary health key for a provider's model.
func ModelKey(provider, model string) string {
	return provider + "/" + model
}

// keyStatus tracks one provider or provider/model key.
type keyStatus struct {
	rateLimited  bool
	resetAt      time.Time
	requestCount int
	dailyResetAt time.Time
}

// HealthRegistry tracks rate-limit state per provider and per provider/model.
// State is advisory: races between check and mark only cost a wasted request.
type HealthRegistry struct {
	mu          sync.Mutex
	keys        map[string]*keyStatus
	dailyWindow time.Duration

	now func() time.Time
}

// NewHealthRegistry creates a registry with the given daily-quota window.
func NewHealthRegistry(dailyWindow time.Duration) *HealthRegistry {
	if dailyWindow <= 0 {
		dailyWindow = 24 * time.Hour
	}
	return &HealthRegistry{
		keys:        make(map[string]*keyStatus),
		dailyWindow: dailyWindow,
		now:         time.Now,
	}
}

func (r *HealthRegistry) get(key string) *keyStatus {
	s, ok := r.keys[key]
	if !ok {
		s = &keyStatus{dailyResetAt: r.now()}
		r.keys[key] = s
	}
	return s
}

// rollover clears daily accounting once the window has elapsed. Clearing also
// lifts any rate limit so daily-metered providers get a fresh start.
func (r *HealthRegistry) rollover(s *keyStatus) {
	if r.now().Sub(s.dailyResetAt) >= r.dailyWindow {
		s.requestCount = 0
		s.dailyResetAt = r.now()
		s.rateLimited = false
	}
}

// IsAvailable reports whether a key may be used. An expired cooldown is
// cleared lazily on read.
func (r *HealthRegistry) IsAvailable(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(key)
	r.rollover(s)
	if !s.rateLimited {
		return true
	}
	if !r.now().Before(s.resetAt) {
		s.rateLimited = false
		return true
	}
	return false
}

// MarkLimited takes a key out of rotation for the given duration.
func (r *HealthRegistry) MarkLimited(key string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(key)
	s.rateLimited = true
	s.resetAt = r.now().Add(d)
}

// IncrementRequests bumps the daily counter for a key.
func (r *HealthRegistry) IncrementRequests(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(key)
	r.rollover(s)
	s.requestCount++
}

// RequestCount returns the daily counter for a key.
func (r *HealthRegistry) RequestCount(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(key)
	r.rollover(s)
	return s.requestCount
}

// AllLimited reports whether every key in the set is currently limited.
// Used to escalate per-model limits into a provider-level cooldown.
func (r *HealthRegistry) AllLimited(keys []string) bool {
	for _, k := range keys {
		if r.IsAvailable(k) {
			return false
		}
	}
	return len(keys) > 0
}

// Sweep walks all keys and applies rollover and lazy cooldown expiry.
// Called periodically; correctness does not depend on it since reads
// expire lazily.
func (r *HealthRegistry) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.keys {
		r.rollover(s)
		if s.rateLimited && !r.now().Before(s.resetAt) {
			s.rateLimited = false
		}
	}
}
