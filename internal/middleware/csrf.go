package middleware

import (
	"log/slog"
	"net/http"

	"classhub/internal/observability"
	"classhub/internal/security"
)

// CSRF validates the double-submit token pair on state-changing requests
// and rotates the pair after every successful validation. The rotated raw
// token travels in the X-New-CSRF-Token response header and the rotated
// hash in a fresh cookie; clients must pick it up for their next mutation.
func CSRF(guard *security.CSRFGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := guard.Validate(r)
			if !result.Valid {
				observability.CSRFFailuresTotal.WithLabelValues(result.Error).Inc()
				slog.Warn("CSRF validation failed",
					slog.String("reason", result.Error),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", security.ClientIP(r)),
				)
				http.Error(w, `{"error":"CSRF validation failed"}`, http.StatusForbidden)
				return
			}

			// Rotation headers must be written before the handler starts
			// the response body.
			if result.NewPair != nil {
				guard.SetCookie(w, result.NewPair.HashedToken)
				w.Header().Set(security.RotatedTokenHeader, result.NewPair.Token)
			}

			next.ServeHTTP(w, r)
		})
	}
}
