package handler

import (
	"net/http"
	"strconv"

	"classhub/internal/domain"
	"classhub/internal/middleware"
	"classhub/internal/security"
	"classhub/internal/service"

	"github.com/go-chi/chi/v5"
)

// StudentHandler handles student CRUD endpoints
type StudentHandler struct {
	students *service.StudentService
}

func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// CreateStudentRequest creates a student plus the backing user account
type CreateStudentRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
	Course   string `json:"course"`
	FeesPaid bool   `json:"feesPaid"`
}

// UpdateStudentRequest carries partial updates; absent fields stay as-is
type UpdateStudentRequest struct {
	Age      *int    `json:"age"`
	Course   *string `json:"course"`
	FeesPaid *bool   `json:"feesPaid"`
}

// StudentResponse output-encodes the user-supplied fields
type StudentResponse struct {
	*domain.Student
	Name  string `json:"name"`
	Email string `json:"email"`
}

func studentResponse(student *domain.Student) StudentResponse {
	return StudentResponse{
		Student: student,
		Name:    security.EncodeOutput(student.Name),
		Email:   security.EncodeOutput(student.Email),
	}
}

// List returns students matching the query filters
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := domain.StudentFilters{
		SearchTerm: r.URL.Query().Get("searchTerm"),
		Course:     r.URL.Query().Get("course"),
	}
	if v := r.URL.Query().Get("minAge"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "minAge must be a number")
			return
		}
		filters.MinAge = age
	}
	if v := r.URL.Query().Get("maxAge"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "maxAge must be a number")
			return
		}
		filters.MaxAge = age
	}

	students, err := h.students.List(r.Context(), filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, studentResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	student, err := h.students.Create(r.Context(), service.CreateStudentInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
		Course:   req.Course,
		FeesPaid: req.FeesPaid,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, studentResponse(student))
}

// Get returns one student. Students may only read their own record.
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	student, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, studentResponse(student))
}

// Update applies a partial update. Students may only update their own
// record; admins may update anyone's.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	student, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req UpdateStudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.students.Update(r.Context(), student.ID, service.UpdateStudentInput{
		Age:      req.Age,
		Course:   req.Course,
		FeesPaid: req.FeesPaid,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, studentResponse(updated))
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.students.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// loadOwned fetches the addressed student and enforces the ownership
// rule for the STUDENT role.
func (h *StudentHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*domain.Student, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}

	student, err := h.students.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}

	if principal.Role == domain.RoleStudent && !principal.CanAccessOwn(student.UserID) {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return nil, false
	}
	return student, true
}
