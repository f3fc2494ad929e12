package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classhub/internal/domain"
	"classhub/internal/security"
	"classhub/internal/testutil"
)

func newTestTokenService(t *testing.T) *security.TokenService {
	t.Helper()
	tokens, err := security.NewTokenService(
		"access-secret-for-middleware-tests",
		"refresh-secret-for-middleware-tests",
		security.DefaultAccessTTL,
		security.DefaultRefreshTTL,
	)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := newTestTokenService(t)
	users := testutil.NewMockUserRepository()
	user := testutil.NewTestUser(testutil.WithUserID("user-123"), testutil.WithRole(domain.RoleAdmin))
	users.Users[user.ID] = user

	pair, err := tokens.Issue(user.ID, user.Email, user.Role)
	testutil.AssertNoError(t, err)

	var gotPrincipal domain.Principal
	nextHandlerCalled := false
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextHandlerCalled = true
		gotPrincipal, _ = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Auth(tokens, users)(nextHandler)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertTrue(t, nextHandlerCalled, "next handler should be called")
	testutil.AssertEqual(t, gotPrincipal.ID, "user-123")
	testutil.AssertEqual(t, gotPrincipal.Role, domain.RoleAdmin)
}

func TestAuth_TokenFromCookie(t *testing.T) {
	tokens := newTestTokenService(t)
	users := testutil.NewMockUserRepository()
	user := testutil.NewTestUser(testutil.WithUserID("user-456"))
	users.Users[user.ID] = user

	pair, err := tokens.Issue(user.ID, user.Email, user.Role)
	testutil.AssertNoError(t, err)

	handler := Auth(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.AddCookie(&http.Cookie{Name: security.AccessCookieName, Value: pair.AccessToken})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
}

func TestAuth_NoToken(t *testing.T) {
	tokens := newTestTokenService(t)
	users := testutil.NewMockUserRepository()

	nextHandlerCalled := false
	handler := Auth(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextHandlerCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusUnauthorized)
	testutil.AssertFalse(t, nextHandlerCalled, "next handler should not be called")
	testutil.AssertContains(t, w.Body.String(), "Authentication required")
}

func TestAuth_ExpiredToken(t *testing.T) {
	tokens := newTestTokenService(t)
	users := testutil.NewMockUserRepository()
	user := testutil.NewTestUser(testutil.WithUserID("user-789"))
	users.Users[user.ID] = user

	expired, err := tokens.IssueAccessWithTTL(user.ID, user.Email, user.Role, -time.Minute)
	testutil.AssertNoError(t, err)

	handler := Auth(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with expired token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusUnauthorized)
	testutil.AssertContains(t, w.Body.String(), "Authentication required")
}

func TestAuth_GarbageToken(t *testing.T) {
	tokens := newTestTokenService(t)
	users := testutil.NewMockUserRepository()

	handler := Auth(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with garbage token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusUnauthorized)
}

func TestAuth_DeletedUser(t *testing.T) {
	tokens := newTestTokenService(t)
	users := testutil.NewMockUserRepository()
	// Token is valid but the account no longer exists.
	pair, err := tokens.Issue("ghost-user", "ghost@example.com", domain.RoleStudent)
	testutil.AssertNoError(t, err)

	handler := Auth(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for a deleted user")
	}))

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusUnauthorized)
	testutil.AssertContains(t, w.Body.String(), "Authentication required")
}

func TestAuth_RoleChangeReflectedLive(t *testing.T) {
	tokens := newTestTokenService(t)
	users := testutil.NewMockUserRepository()
	user := testutil.NewTestUser(testutil.WithUserID("user-demoted"), testutil.WithRole(domain.RoleAdmin))
	users.Users[user.ID] = user

	pair, err := tokens.Issue(user.ID, user.Email, domain.RoleAdmin)
	testutil.AssertNoError(t, err)

	// Role changed after token issuance; the live lookup wins.
	user.Role = domain.RoleStudent

	var gotPrincipal domain.Principal
	handler := Auth(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal, _ = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertEqual(t, gotPrincipal.Role, domain.RoleStudent)
}

func TestRequireRole_Allowed(t *testing.T) {
	nextHandlerCalled := false
	handler := RequireRole(domain.RoleAdmin, domain.RoleCoach)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextHandlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/coaches", nil)
	ctx := WithPrincipal(req.Context(), domain.Principal{ID: "u1", Role: domain.RoleCoach})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req.WithContext(ctx))

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertTrue(t, nextHandlerCalled, "next handler should be called")
}

func TestRequireRole_Forbidden(t *testing.T) {
	handler := RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for insufficient role")
	}))

	req := httptest.NewRequest(http.MethodDelete, "/students/abc", nil)
	ctx := WithPrincipal(req.Context(), domain.Principal{ID: "u2", Role: domain.RoleStudent})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req.WithContext(ctx))

	testutil.AssertStatusCode(t, w, http.StatusForbidden)
	testutil.AssertContains(t, w.Body.String(), "Insufficient permissions")
}

func TestRequireRole_NoPrincipal(t *testing.T) {
	handler := RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a principal")
	}))

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusUnauthorized)
}

func TestGetPrincipal_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetPrincipal(req.Context())
	testutil.AssertFalse(t, ok, "no principal expected on a bare context")
}
