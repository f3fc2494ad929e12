package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"classhub/internal/observability"
	"classhub/internal/security"
)

// RateLimit enforces the given policy against the shared store. The
// identity is the authenticated user when Auth ran earlier in the chain,
// otherwise the client IP; either way the key is namespaced per endpoint
// path. X-RateLimit-* headers are attached to every response, Retry-After
// only to rejections.
func RateLimit(store *security.RateLimiterStore, policy security.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := security.IPKey(r)
			if principal, ok := GetPrincipal(r.Context()); ok {
				identity = security.UserKey(principal.ID)
			}
			key := security.EndpointKey(r.URL.Path, identity)

			result := store.Check(key, policy)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime.Unix(), 10))

			if !result.Allowed {
				observability.RateLimitRejectionsTotal.WithLabelValues(policy.Name).Inc()
				observability.FromContext(r.Context()).Warn("rate limit exceeded",
					slog.String("policy", policy.Name),
					slog.String("key", key),
					slog.Int("retry_after", result.RetryAfter),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"error":"Rate limit exceeded","retryAfter":%d}`, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
