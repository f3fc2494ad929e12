package handler

import (
	"net/http"
	"time"

	"classhub/internal/domain"
	"classhub/internal/middleware"
	"classhub/internal/security"
	"classhub/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	auth          *service.AuthService
	tokens        *security.TokenService
	csrf          *security.CSRFGuard
	secureCookies bool
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(auth *service.AuthService, tokens *security.TokenService, csrf *security.CSRFGuard, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		tokens:        tokens,
		csrf:          csrf,
		secureCookies: secureCookies,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents a refresh request; the token may come from
// the body or the refreshToken cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UserResponse is the user shape echoed back to clients. Name and email
// are output-encoded since they originate from user input.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// AuthResponse represents a successful register, login or refresh.
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"`
}

func userResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      security.EncodeOutput(user.Name),
		Email:     security.EncodeOutput(user.Email),
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, pair, err := h.auth.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setTokenCookies(w, pair)
	writeJSON(w, http.StatusCreated, AuthResponse{
		User:         userResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, pair, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setTokenCookies(w, pair)
	writeJSON(w, http.StatusOK, AuthResponse{
		User:         userResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Refresh exchanges a refresh token for a fresh pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}
	if req.RefreshToken == "" {
		if cookie, err := r.Cookie(security.RefreshCookieName); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setTokenCookies(w, pair)
	writeJSON(w, http.StatusOK, AuthResponse{
		User:         userResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Logout clears the auth and CSRF cookies. Tokens are stateless so there
// is nothing to revoke server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, security.AccessCookieName)
	h.clearCookie(w, security.RefreshCookieName)
	h.clearCookie(w, security.CSRFCookieName)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CSRFToken issues a fresh double-submit pair
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	pair, err := h.csrf.GeneratePair()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.csrf.SetCookie(w, pair.HashedToken)
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": pair.Token})
}

// Me returns the authenticated user's own record
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), principal.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]UserResponse{"user": userResponse(user)})
}

func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, pair *security.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.AccessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   pair.ExpiresIn,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     security.RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.tokens.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
