package handler

import (
	"net/http"

	"classhub/internal/domain"
	"classhub/internal/security"
	"classhub/internal/service"

	"github.com/go-chi/chi/v5"
)

// CoachHandler handles coach CRUD endpoints
type CoachHandler struct {
	coaches *service.CoachService
}

func NewCoachHandler(coaches *service.CoachService) *CoachHandler {
	return &CoachHandler{coaches: coaches}
}

// CreateCoachRequest creates a coach plus the backing user account
type CreateCoachRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Expertise string `json:"expertise"`
}

type UpdateCoachRequest struct {
	Expertise *string `json:"expertise"`
}

type CoachResponse struct {
	*domain.Coach
	Name  string `json:"name"`
	Email string `json:"email"`
}

func coachResponse(coach *domain.Coach) CoachResponse {
	return CoachResponse{
		Coach: coach,
		Name:  security.EncodeOutput(coach.Name),
		Email: security.EncodeOutput(coach.Email),
	}
}

func (h *CoachHandler) List(w http.ResponseWriter, r *http.Request) {
	coaches, err := h.coaches.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]CoachResponse, 0, len(coaches))
	for _, c := range coaches {
		out = append(out, coachResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CoachHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCoachRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coach, err := h.coaches.Create(r.Context(), service.CreateCoachInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Expertise: req.Expertise,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, coachResponse(coach))
}

func (h *CoachHandler) Get(w http.ResponseWriter, r *http.Request) {
	coach, err := h.coaches.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coachResponse(coach))
}

func (h *CoachHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateCoachRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coach, err := h.coaches.Update(r.Context(), chi.URLParam(r, "id"), service.UpdateCoachInput{
		Expertise: req.Expertise,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, coachResponse(coach))
}

func (h *CoachHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.coaches.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
