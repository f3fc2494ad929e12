package security

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestRateLimiterStore_SlidingWindowMonotonicity(t *testing.T) {
	store := NewRateLimiterStore()
	defer store.Close()

	policy := Policy{Name: "test", Window: 60 * time.Second, MaxRequests: 5}
	key := "/api/v1/students:ip:192.168.1.1"

	for i, wantRemaining := range []int{4, 3, 2, 1, 0} {
		result := store.Check(key, policy)
		if !result.Allowed {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
		if result.Remaining != wantRemaining {
			t.Errorf("request %d remaining = %d, want %d", i+1, result.Remaining, wantRemaining)
		}
		if result.Limit != 5 {
			t.Errorf("request %d limit = %d, want 5", i+1, result.Limit)
		}
	}

	sixth := store.Check(key, policy)
	if sixth.Allowed {
		t.Fatal("sixth request allowed, want denied")
	}
	if sixth.RetryAfter < 1 {
		t.Errorf("RetryAfter = %d, want >= 1", sixth.RetryAfter)
	}
	if sixth.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", sixth.Remaining)
	}
}

func TestRateLimiterStore_RetryAfterBoundedByWindow(t *testing.T) {
	store := NewRateLimiterStore()
	defer store.Close()

	policy := Policy{Name: "test", Window: 5 * time.Second, MaxRequests: 1}
	key := "/auth/login:ip:10.0.0.1"

	if result := store.Check(key, policy); !result.Allowed {
		t.Fatal("first request denied, want allowed")
	}

	denied := store.Check(key, policy)
	if denied.Allowed {
		t.Fatal("second request allowed, want denied")
	}
	// The wait is measured against the same instant the window was
	// evaluated at, so it can never exceed the window itself.
	if denied.RetryAfter < 1 || denied.RetryAfter > 5 {
		t.Errorf("RetryAfter = %d, want within [1, 5]", denied.RetryAfter)
	}
}

func TestRateLimiterStore_WindowSlides(t *testing.T) {
	store := NewRateLimiterStore()
	defer store.Close()

	policy := Policy{Name: "test", Window: 50 * time.Millisecond, MaxRequests: 2}
	key := "/login:ip:10.0.0.1"

	store.Check(key, policy)
	store.Check(key, policy)

	if result := store.Check(key, policy); result.Allowed {
		t.Fatal("third request inside window allowed, want denied")
	}

	time.Sleep(60 * time.Millisecond)

	if result := store.Check(key, policy); !result.Allowed {
		t.Fatal("request after window elapsed denied, want allowed")
	}
}

func TestRateLimiterStore_IndependentKeys(t *testing.T) {
	store := NewRateLimiterStore()
	defer store.Close()

	policy := Policy{Name: "test", Window: time.Minute, MaxRequests: 1}

	if result := store.Check("/a:ip:1.1.1.1", policy); !result.Allowed {
		t.Fatal("first key denied")
	}
	if result := store.Check("/a:ip:2.2.2.2", policy); !result.Allowed {
		t.Fatal("second key denied, want independent counter")
	}
	// Same identity, different endpoint: separate bucket.
	if result := store.Check("/b:ip:1.1.1.1", policy); !result.Allowed {
		t.Fatal("same identity on another endpoint denied, want independent counter")
	}
}

func TestRateLimiterStore_ConcurrentChecksNeverOveradmit(t *testing.T) {
	store := NewRateLimiterStore()
	defer store.Close()

	policy := Policy{Name: "test", Window: time.Minute, MaxRequests: 10}
	key := "/api/v1/courses:ip:3.3.3.3"

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Check(key, policy).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Errorf("allowed = %d concurrent requests, want exactly 10", allowed)
	}
}

func TestRateLimiterStore_Sweep(t *testing.T) {
	store := NewRateLimiterStore()
	defer store.Close()

	policy := Policy{Name: "test", Window: time.Millisecond, MaxRequests: 5}
	store.Check("stale-key", policy)

	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}

	// Backdate the entry past the sweep cutoff, then sweep directly.
	store.mu.Lock()
	store.entries["stale-key"].lastSeen = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	store.sweep()

	if store.Len() != 0 {
		t.Errorf("Len() after sweep = %d, want 0", store.Len())
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "forwarded_for_first_entry",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			want:    "203.0.113.7",
		},
		{
			name:    "cf_connecting_ip",
			headers: map[string]string{"CF-Connecting-IP": "198.51.100.2"},
			want:    "198.51.100.2",
		},
		{
			name:    "real_ip",
			headers: map[string]string{"X-Real-IP": "192.0.2.9"},
			want:    "192.0.2.9",
		},
		{
			name:    "port_stripped",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7:4567"},
			want:    "203.0.113.7",
		},
		{
			name:    "no_headers",
			headers: nil,
			want:    "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyDerivation(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	if got := IPKey(req); got != "ip:203.0.113.7" {
		t.Errorf("IPKey() = %q", got)
	}
	if got := UserKey("u-1"); got != "user:u-1" {
		t.Errorf("UserKey() = %q", got)
	}
	if got := CombinedKey("u-1", req); got != "user:u-1:ip:203.0.113.7" {
		t.Errorf("CombinedKey() = %q", got)
	}
	if got := EndpointKey("/api/v1/students", "ip:203.0.113.7"); got != "/api/v1/students:ip:203.0.113.7" {
		t.Errorf("EndpointKey() = %q", got)
	}
}
