package handler

import (
	"net/http"
	"time"

	"classhub/internal/domain"
	"classhub/internal/middleware"
	"classhub/internal/service"

	"github.com/go-chi/chi/v5"
)

// CourseHandler handles course CRUD endpoints. Coaches may modify only
// the courses assigned to them; admins may modify any course.
type CourseHandler struct {
	courses *service.CourseService
	coaches *service.CoachService
}

func NewCourseHandler(courses *service.CourseService, coaches *service.CoachService) *CourseHandler {
	return &CourseHandler{courses: courses, coaches: coaches}
}

type CreateCourseRequest struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	CoachID       string              `json:"coachId"`
	DurationWeeks int                 `json:"durationWeeks"`
	Fee           float64             `json:"fee"`
	MaxStudents   int                 `json:"maxStudents"`
	StartDate     time.Time           `json:"startDate"`
	EndDate       time.Time           `json:"endDate"`
	Status        domain.CourseStatus `json:"status"`
}

type UpdateCourseRequest struct {
	Name          *string              `json:"name"`
	Description   *string              `json:"description"`
	CoachID       *string              `json:"coachId"`
	DurationWeeks *int                 `json:"durationWeeks"`
	Fee           *float64             `json:"fee"`
	MaxStudents   *int                 `json:"maxStudents"`
	StartDate     *time.Time           `json:"startDate"`
	EndDate       *time.Time           `json:"endDate"`
	Status        *domain.CourseStatus `json:"status"`
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := domain.CourseFilters{
		SearchTerm: r.URL.Query().Get("searchTerm"),
		Status:     domain.CourseStatus(r.URL.Query().Get("status")),
		CoachID:    r.URL.Query().Get("coachId"),
	}

	courses, err := h.courses.List(r.Context(), filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	course, err := h.courses.Create(r.Context(), service.CreateCourseInput{
		Name:          req.Name,
		Description:   req.Description,
		CoachID:       req.CoachID,
		DurationWeeks: req.DurationWeeks,
		Fee:           req.Fee,
		MaxStudents:   req.MaxStudents,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        req.Status,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, err := h.courses.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	course, ok := h.loadAssigned(w, r)
	if !ok {
		return
	}

	var req UpdateCourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.courses.Update(r.Context(), course.ID, service.UpdateCourseInput{
		Name:          req.Name,
		Description:   req.Description,
		CoachID:       req.CoachID,
		DurationWeeks: req.DurationWeeks,
		Fee:           req.Fee,
		MaxStudents:   req.MaxStudents,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        req.Status,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.courses.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// loadAssigned fetches the addressed course and, for the COACH role,
// verifies the course is assigned to the caller's coach profile.
func (h *CourseHandler) loadAssigned(w http.ResponseWriter, r *http.Request) (*domain.Course, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}

	course, err := h.courses.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}

	if principal.Role == domain.RoleCoach {
		coach, err := h.coaches.GetByUserID(r.Context(), principal.ID)
		if err != nil || coach.ID != course.CoachID {
			writeError(w, http.StatusForbidden, "Insufficient permissions")
			return nil, false
		}
	}
	return course, true
}
