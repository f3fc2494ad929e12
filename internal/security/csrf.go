package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
)

const (
	// CSRFCookieName holds the hashed half of the pair, httpOnly so
	// cross-origin script can never read it.
	CSRFCookieName = "csrf-token"
	// CSRFHeaderName carries the raw half; only same-origin JS can set
	// custom headers, which is what the double-submit pattern relies on.
	CSRFHeaderName = "X-CSRF-Token"
	// RotatedTokenHeader is attached to responses after a successful
	// validation so the client can pick up the replacement token.
	RotatedTokenHeader = "X-New-CSRF-Token"

	csrfTokenBytes   = 32
	csrfCookieMaxAge = 24 * 60 * 60
)

// CSRFPair is one generation of the double-submit pair. Token goes to
// the client, HashedToken into the httpOnly cookie. Possession of Token
// alone never reveals the secret the hash depends on.
type CSRFPair struct {
	Token       string
	HashedToken string
}

// CSRFResult reports the outcome of validating a mutating request.
// NewPair is set after a successful validation so the caller can rotate
// the cookie and response header.
type CSRFResult struct {
	Valid   bool
	Error   string
	NewPair *CSRFPair
}

// CSRFGuard implements the double-submit cookie pattern with token
// rotation after every validated mutation.
type CSRFGuard struct {
	secret         []byte
	allowedOrigins map[string]struct{}
	secureCookies  bool
}

// NewCSRFGuard requires a non-empty secret; origin checks use the given
// allow-list. secureCookies should be true in production.
func NewCSRFGuard(secret string, allowedOrigins []string, secureCookies bool) (*CSRFGuard, error) {
	if secret == "" {
		return nil, errors.New("CSRF secret not configured")
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &CSRFGuard{
		secret:         []byte(secret),
		allowedOrigins: origins,
		secureCookies:  secureCookies,
	}, nil
}

// GeneratePair creates a fresh random token and its server-side hash.
func (g *CSRFGuard) GeneratePair() (CSRFPair, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return CSRFPair{}, err
	}
	token := hex.EncodeToString(buf)
	return CSRFPair{Token: token, HashedToken: g.hash(token)}, nil
}

// hash computes SHA256(token || secret), hex-encoded. One-way: the
// cookie value cannot be derived from the raw token without the secret.
func (g *CSRFGuard) hash(token string) string {
	h := sha256.New()
	h.Write([]byte(token))
	h.Write(g.secret)
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateTokenPair checks a submitted raw token against a stored hash
// using a constant-time comparison. Empty inputs always fail.
func (g *CSRFGuard) ValidateTokenPair(token, hashedToken string) bool {
	if token == "" || hashedToken == "" {
		return false
	}
	expected := g.hash(token)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(hashedToken)) == 1
}

// SetCookie stores the hashed token in the CSRF cookie.
func (g *CSRFGuard) SetCookie(w http.ResponseWriter, hashedToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    hashedToken,
		Path:     "/",
		MaxAge:   csrfCookieMaxAge,
		HttpOnly: true,
		Secure:   g.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// Validate runs the full CSRF check for a request. Safe methods are
// exempt. The submitted token is read from the X-CSRF-Token header only;
// extraction from urlencoded form bodies is a known limitation.
func (g *CSRFGuard) Validate(r *http.Request) CSRFResult {
	if isSafeMethod(r.Method) {
		return CSRFResult{Valid: true}
	}

	if !g.validOrigin(r) {
		return CSRFResult{Error: "Invalid request origin"}
	}

	submitted := r.Header.Get(CSRFHeaderName)
	if submitted == "" {
		return CSRFResult{Error: "CSRF token missing from request"}
	}

	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return CSRFResult{Error: "CSRF token missing from cookie"}
	}

	if !g.ValidateTokenPair(submitted, cookie.Value) {
		return CSRFResult{Error: "Invalid CSRF token"}
	}

	// Single-use semantics: each validated mutation gets a replacement
	// pair. If generation fails the validation still stands.
	pair, err := g.GeneratePair()
	if err != nil {
		return CSRFResult{Valid: true}
	}
	return CSRFResult{Valid: true, NewPair: &pair}
}

// validOrigin checks the Origin header, falling back to Referer, against
// the allow-list. Requests carrying neither header pass; browsers attach
// Origin on all cross-site mutating requests.
func (g *CSRFGuard) validOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin != "" {
		_, ok := g.allowedOrigins[origin]
		return ok
	}

	referer := r.Header.Get("Referer")
	if referer != "" {
		u, err := url.Parse(referer)
		if err != nil {
			return false
		}
		_, ok := g.allowedOrigins[u.Scheme+"://"+u.Host]
		return ok
	}

	return true
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}
