package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"classhub/internal/observability"
	"classhub/internal/security"
)

// maxRequestSize bounds JSON request bodies.
const maxRequestSize = 1 << 20 // 1MB

// SecurityHeaders attaches the browser protection headers to every
// response.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "1; mode=block")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline';")
			next.ServeHTTP(w, r)
		})
	}
}

// RequestSecurity screens mutating JSON requests before any handler or
// decoder touches them: content type, size, raw-body injection scan, JSON
// well-formedness, and nesting depth. devMode controls whether the
// detailed issue list is echoed to the client; it is always logged.
//
// The stage is deliberately panic-proof: an unexpected failure inside the
// screen degrades to a 500 for this request instead of taking the process
// down with it.
func RequestSecurity(devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic in request security screen",
						slog.Any("panic", rec),
						slog.String("path", r.URL.Path),
					)
					writeSecurityReject(w, security.NewError(security.KindInternal, "Internal server error"), devMode)
				}
			}()

			if isSafeMethod(r.Method) || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			if secErr := screenBody(r); secErr != nil {
				observability.SecurityRejectionsTotal.WithLabelValues(string(secErr.Kind)).Inc()
				slog.Warn("request rejected by security screen",
					slog.String("kind", string(secErr.Kind)),
					slog.String("message", secErr.Message),
					slog.Any("issues", secErr.Issues),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", security.ClientIP(r)),
				)
				writeSecurityReject(w, secErr, devMode)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// screenBody validates the request body in place, restoring it for
// downstream decoding. Returns nil when the request may proceed.
func screenBody(r *http.Request) *security.Error {
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return security.NewError(security.KindMalformedInput, "Invalid content type",
			"unsupported content type: "+contentType)
	}

	if r.ContentLength > maxRequestSize {
		return security.NewError(security.KindMalformedInput, "Request too large",
			"request size exceeds limit")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize+1))
	if err != nil {
		return security.NewError(security.KindMalformedInput, "Failed to read request body")
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	if len(body) > maxRequestSize {
		return security.NewError(security.KindMalformedInput, "Request too large",
			"request size exceeds limit")
	}

	raw := string(body)
	if security.DetectScriptInjection(raw) {
		return security.NewError(security.KindSecurityViolation, "Malicious content detected",
			"script injection attempt detected in request body")
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return security.NewError(security.KindMalformedInput, "Invalid JSON format",
			"malformed JSON in request body")
	}
	if !security.ValidJSONDepth(payload, security.MaxJSONDepth) {
		return security.NewError(security.KindSecurityViolation, "Request structure too complex",
			"JSON depth exceeds security limit")
	}
	// Length and control-character limits apply per string value, not to
	// the document as a whole. A clean body may use the full size limit.
	if ok, reason := security.ValidateDecodedStrings(payload); !ok {
		return security.NewError(security.KindSecurityViolation, "Security validation failed", reason)
	}

	return nil
}

// writeSecurityReject answers with the kind's status code and a generic
// message. The securityIssues detail is included only in development.
func writeSecurityReject(w http.ResponseWriter, secErr *security.Error, devMode bool) {
	resp := map[string]any{"error": secErr.Message}
	if devMode && len(secErr.Issues) > 0 {
		resp["securityIssues"] = secErr.Issues
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(secErr.Kind.HTTPStatus())
	json.NewEncoder(w).Encode(resp)
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}
