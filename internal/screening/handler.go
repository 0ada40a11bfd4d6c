package screening

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"child-health-tracker/internal/age"
	"child-health-tracker/internal/growth"
	"child-health-tracker/internal/insight"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type SubmitRequest struct {
	// Date defaults to today when empty.
	Date    string   `json:"date"`
	Answers []Answer `json:"answers"`
}

func (h *Handler) ListStages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Stages())
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	ov, err := h.svc.Overview(r.Context(), id, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	results, err := h.svc.Results(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	takenAt := time.Now()
	if req.Date != "" {
		d, err := age.ParseDate(req.Date)
		if err != nil {
			http.Error(w, "Invalid date", http.StatusBadRequest)
			return
		}
		takenAt = d
	}

	res, err := h.svc.Submit(r.Context(), id, chi.URLParam(r, "stageID"), req.Answers, takenAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Assessment(r.Context(), id, chi.URLParam(r, "stageID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/stages", h.ListStages)
	r.Get("/profiles/{profileID}/stages", h.GetOverview)
	r.Get("/profiles/{profileID}/assessments", h.ListResults)
	r.Post("/profiles/{profileID}/assessments/{stageID}", h.Submit)
	r.Get("/profiles/{profileID}/assessments/{stageID}", h.GetAssessment)
}

func profileID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		http.Error(w, "Invalid profile ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, growth.ErrProfileNotFound), errors.Is(err, ErrStageNotFound), errors.Is(err, ErrResultNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidAnswer):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, insight.ErrSuperseded):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
