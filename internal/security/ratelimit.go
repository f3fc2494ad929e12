package security

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

// Policy is a named rate-limit configuration. Distinct policies keep
// independent counters even for the same client.
type Policy struct {
	Name        string
	Window      time.Duration
	MaxRequests int
}

// Predefined policies: strict for credential endpoints, moderate for the
// authenticated API, generous for public reads.
var (
	PolicyAuth   = Policy{Name: "auth", Window: 15 * time.Minute, MaxRequests: 5}
	PolicyAPI    = Policy{Name: "api", Window: time.Minute, MaxRequests: 100}
	PolicyPublic = Policy{Name: "public", Window: time.Minute, MaxRequests: 1000}
)

// RateLimitResult is the outcome of one admission check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter int // seconds, set only when denied
}

type rateLimitEntry struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// RateLimiterStore is a sliding-window request counter. Each key keeps
// the instants of its requests inside the trailing window; admission is
// decided and recorded under one lock so two concurrent requests cannot
// both observe count = max-1 and slip through.
//
// The store is in-memory and single-node. Multi-node deployments need a
// shared external counter behind the same interface.
type RateLimiterStore struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiterStore creates a store and starts its background sweep.
// Call Close on shutdown to stop the sweep goroutine.
func NewRateLimiterStore() *RateLimiterStore {
	s := &RateLimiterStore{
		entries: make(map[string]*rateLimitEntry),
		stopCh:  make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Check records a request attempt for key under the given policy and
// reports whether it is admitted. Denied attempts are not recorded;
// admitted attempts count even if the request is later aborted, so
// retrying a cancelled request cannot evade the limit.
func (s *RateLimiterStore) Check(key string, policy Policy) RateLimitResult {
	// Wall clock read once so the window math stays consistent within
	// a single evaluation.
	now := time.Now()
	windowStart := now.Add(-policy.Window)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		entry = &rateLimitEntry{}
		s.entries[key] = entry
	}
	entry.lastSeen = now

	// Drop instants that have slid out of the window.
	kept := entry.timestamps[:0]
	for _, t := range entry.timestamps {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	entry.timestamps = kept

	if len(entry.timestamps) >= policy.MaxRequests {
		oldest := entry.timestamps[0]
		reset := oldest.Add(policy.Window)
		retryAfter := int((reset.Sub(now) + time.Second - 1) / time.Second)
		if retryAfter < 1 {
			retryAfter = 1
		}
		return RateLimitResult{
			Allowed:    false,
			Limit:      policy.MaxRequests,
			Remaining:  0,
			ResetTime:  reset,
			RetryAfter: retryAfter,
		}
	}

	entry.timestamps = append(entry.timestamps, now)
	return RateLimitResult{
		Allowed:   true,
		Limit:     policy.MaxRequests,
		Remaining: policy.MaxRequests - len(entry.timestamps),
		ResetTime: entry.timestamps[0].Add(policy.Window),
	}
}

// Len returns the number of tracked keys. Exposed for tests and metrics.
func (s *RateLimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the background sweep. Safe to call more than once.
func (s *RateLimiterStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *RateLimiterStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep purges keys whose last request is old enough that their window
// has fully elapsed, bounding memory.
func (s *RateLimiterStore) sweep() {
	cutoff := time.Now().Add(-2 * sweepInterval)

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(s.entries, key)
		}
	}
}

// ClientIP resolves the caller's address from proxy headers, in order:
// first X-Forwarded-For entry, CF-Connecting-IP, X-Real-IP, then the
// literal "unknown". A trailing :port is stripped.
func ClientIP(r *http.Request) string {
	ip := ""
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if ip == "" {
		ip = r.Header.Get("CF-Connecting-IP")
	}
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		ip = "unknown"
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return ip
}

// IPKey builds an identity key from the client address.
func IPKey(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

// UserKey builds an identity key scoped to a user across all of their
// addresses.
func UserKey(userID string) string {
	return "user:" + userID
}

// CombinedKey scopes a limit to one (user, address) pair for stricter
// per-user-per-IP accounting.
func CombinedKey(userID string, r *http.Request) string {
	return "user:" + userID + ":" + IPKey(r)
}

// EndpointKey namespaces an identity per endpoint path so buckets for
// different endpoints never collide.
func EndpointKey(path, identity string) string {
	return path + ":" + identity
}
