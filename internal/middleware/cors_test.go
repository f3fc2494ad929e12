package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"classhub/internal/testutil"
)

func corsHandler(origins ...string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return CORS(origins)(next)
}

func TestCORS_OriginMatching(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		shouldAllow    bool
	}{
		{
			name:           "exact match",
			allowedOrigins: []string{"http://localhost:3000", "https://app.example.com"},
			requestOrigin:  "http://localhost:3000",
			shouldAllow:    true,
		},
		{
			name:           "second origin matches",
			allowedOrigins: []string{"http://localhost:3000", "https://app.example.com"},
			requestOrigin:  "https://app.example.com",
			shouldAllow:    true,
		},
		{
			name:           "case insensitive match",
			allowedOrigins: []string{"https://App.Example.com"},
			requestOrigin:  "https://app.example.com",
			shouldAllow:    true,
		},
		{
			name:           "wildcard allows any origin",
			allowedOrigins: []string{"*"},
			requestOrigin:  "https://anything.example.org",
			shouldAllow:    true,
		},
		{
			name:           "unknown origin rejected",
			allowedOrigins: []string{"http://localhost:3000"},
			requestOrigin:  "http://evil.example.com",
			shouldAllow:    false,
		},
		{
			name:           "missing origin header sets nothing",
			allowedOrigins: []string{"http://localhost:3000"},
			requestOrigin:  "",
			shouldAllow:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
			if tt.requestOrigin != "" {
				req.Header.Set("Origin", tt.requestOrigin)
			}
			w := httptest.NewRecorder()

			corsHandler(tt.allowedOrigins...).ServeHTTP(w, req)

			testutil.AssertStatusCode(t, w, http.StatusOK)
			if tt.shouldAllow {
				testutil.AssertHeader(t, w, "Access-Control-Allow-Origin", tt.requestOrigin)
				testutil.AssertHeader(t, w, "Access-Control-Allow-Credentials", "true")
			} else {
				testutil.AssertHeader(t, w, "Access-Control-Allow-Origin", "")
			}
		})
	}
}

func TestCORS_AllowedHeadersIncludeCSRF(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	corsHandler("http://localhost:3000").ServeHTTP(w, req)

	testutil.AssertHeaderContains(t, w, "Access-Control-Allow-Headers", "X-CSRF-Token")
	testutil.AssertHeaderContains(t, w, "Access-Control-Allow-Headers", "Authorization")
}

func TestCORS_ExposesRotationAndRateLimitHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	corsHandler("http://localhost:3000").ServeHTTP(w, req)

	testutil.AssertHeaderContains(t, w, "Access-Control-Expose-Headers", "X-New-CSRF-Token")
	testutil.AssertHeaderContains(t, w, "Access-Control-Expose-Headers", "X-RateLimit-Remaining")
	testutil.AssertHeaderContains(t, w, "Access-Control-Expose-Headers", "Retry-After")
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})
	handler := CORS([]string{"http://localhost:3000"})(next)

	req := httptest.NewRequest(http.MethodOptions, "/api/students", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertHeader(t, w, "Access-Control-Allow-Methods", corsAllowMethods)
	testutil.AssertFalse(t, nextCalled, "preflight should not reach the next handler")
}

func TestCORS_VaryOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	w := httptest.NewRecorder()

	corsHandler("http://localhost:3000").ServeHTTP(w, req)

	testutil.AssertHeader(t, w, "Vary", "Origin")
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single origin", "http://localhost:3000", []string{"http://localhost:3000"}},
		{"multiple with spaces", "http://localhost:3000, https://app.example.com", []string{"http://localhost:3000", "https://app.example.com"}},
		{"trailing comma dropped", "http://localhost:3000,", []string{"http://localhost:3000"}},
		{"empty string yields none", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseOrigins(tt.input)
			testutil.AssertLen(t, got, len(tt.want))
			for i := range tt.want {
				testutil.AssertEqual(t, got[i], tt.want[i])
			}
		})
	}
}
