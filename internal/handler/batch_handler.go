package handler

import (
	"net/http"
	"time"

	"classhub/internal/service"

	"github.com/go-chi/chi/v5"
)

// BatchHandler handles batch CRUD and membership endpoints
type BatchHandler struct {
	batches *service.BatchService
}

func NewBatchHandler(batches *service.BatchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

type CreateBatchRequest struct {
	Name      string    `json:"name"`
	CourseID  string    `json:"courseId"`
	CoachID   string    `json:"coachId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type UpdateBatchRequest struct {
	Name      *string    `json:"name"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	batches, err := h.batches.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	batch, err := h.batches.Create(r.Context(), service.CreateBatchInput{
		Name:      req.Name,
		CourseID:  req.CourseID,
		CoachID:   req.CoachID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, batch)
}

func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	batch, err := h.batches.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (h *BatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	batch, err := h.batches.Update(r.Context(), chi.URLParam(r, "id"), service.UpdateBatchInput{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, batch)
}

func (h *BatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.batches.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type BatchStudentRequest struct {
	StudentID string `json:"studentId"`
}

func (h *BatchHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	var req BatchStudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.StudentID == "" {
		writeError(w, http.StatusBadRequest, "studentId is required")
		return
	}

	if err := h.batches.AddStudent(r.Context(), chi.URLParam(r, "id"), req.StudentID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *BatchHandler) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")
	studentID := chi.URLParam(r, "studentId")

	if err := h.batches.RemoveStudent(r.Context(), batchID, studentID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
