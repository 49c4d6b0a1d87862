package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const throttleIdleTTL = 3 * time.Minute

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedThrottle keeps one token bucket per key (e.g. authenticated user id).
// Unlike the per-IP httprate limit on the router it follows a caller across
// addresses.
type KeyedThrottle struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewKeyedThrottle allows perMinute events per key with a burst of the same size.
// perMinute <= 0 disables throttling.
func NewKeyedThrottle(perMinute int) *KeyedThrottle {
	limit := rate.Inf
	burst := 0
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
		burst = perMinute
	}
	return &KeyedThrottle{
		entries: make(map[string]*throttleEntry),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether key may proceed now.
func (t *KeyedThrottle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		e = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.entries[key] = e
	}
	now := t.now()
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Run evicts idle keys every minute until ctx is cancelled.
func (t *KeyedThrottle) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.evictIdle()
		}
	}
}

func (t *KeyedThrottle) evictIdle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.now().Add(-throttleIdleTTL)
	for k, e := range t.entries {
		if e.lastSeen.Before(cutoff) {
			delete(t.entries, k)
		}
	}
}

// Middleware rejects requests with 429 once the key returned by keyFn is over
// its limit. Requests with an empty key pass through.
func (t *KeyedThrottle) Middleware(keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := keyFn(r); key != "" && !t.Allow(key) {
				w.Header().Set("Retry-After", "60")
				JSONError(w, http.StatusTooManyRequests, "too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
