package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"classhub/internal/domain"
	"classhub/internal/observability"
	"classhub/internal/security"
)

type contextKey string

const principalKey contextKey = "principal"

// Auth authenticates a request with a JWT access token: extract, verify,
// then load the live user record so deleted accounts and role changes
// after token issuance are caught. Every failure path answers with the
// same generic 401 so responses never disclose which step rejected.
func Auth(tokens *security.TokenService, users domain.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokens.FromRequest(r)
			if token == "" {
				unauthorized(w, r, "missing token")
				return
			}

			claims, err := tokens.VerifyAccess(token)
			if err != nil {
				reason := "invalid token"
				if err == security.ErrTokenExpired {
					reason = "expired token"
				}
				unauthorized(w, r, reason)
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				unauthorized(w, r, "user lookup failed")
				return
			}

			principal := domain.Principal{
				ID:    user.ID,
				Email: user.Email,
				Role:  user.Role,
				Name:  user.Name,
			}

			ctx := WithPrincipal(r.Context(), principal)
			ctx = observability.WithUserID(ctx, user.ID)
			ctx = observability.WithRole(ctx, string(user.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to the given roles. Composes after Auth.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				unauthorized(w, r, "no principal in context")
				return
			}

			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			observability.AuthzFailuresTotal.WithLabelValues(string(principal.Role)).Inc()
			slog.Warn("role check failed",
				slog.String("user_id", principal.ID),
				slog.String("role", string(principal.Role)),
				slog.String("path", r.URL.Path),
			)
			http.Error(w, `{"error":"Insufficient permissions"}`, http.StatusForbidden)
		})
	}
}

// GetPrincipal returns the authenticated principal set by Auth.
func GetPrincipal(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(domain.Principal)
	return principal, ok
}

// WithPrincipal attaches a principal to the context. Exported for tests.
func WithPrincipal(ctx context.Context, principal domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

func unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	observability.AuthFailuresTotal.WithLabelValues(reason).Inc()
	slog.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	http.Error(w, `{"error":"Authentication required"}`, http.StatusUnauthorized)
}
