package growth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"child-health-tracker/internal/age"
	"child-health-tracker/internal/insight"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type MeasurementsRequest struct {
	Height            *float64 `json:"height"`
	Weight            *float64 `json:"weight"`
	HeadCircumference *float64 `json:"head_circumference"`
}

type CreateProfileRequest struct {
	Name      string               `json:"name"`
	BirthDate string               `json:"birth_date"`
	Gender    string               `json:"gender"`
	Birth     *MeasurementsRequest `json:"birth,omitempty"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Gender    string `json:"gender"`
}

type AddRecordRequest struct {
	Date string `json:"date"`
	MeasurementsRequest
}

func (m MeasurementsRequest) record() (GrowthRecord, bool) {
	for _, v := range []*float64{m.Height, m.Weight, m.HeadCircumference} {
		if v != nil && *v <= 0 {
			return GrowthRecord{}, false
		}
	}
	return GrowthRecord{Height: m.Height, Weight: m.Weight, HeadCircumference: m.HeadCircumference}, true
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	in, ok := parseDetails(w, req.Name, req.BirthDate, req.Gender)
	if !ok {
		return
	}
	if req.Birth != nil {
		rec, ok := req.Birth.record()
		if !ok {
			http.Error(w, "Measurements must be positive", http.StatusBadRequest)
			return
		}
		in.Birth = &rec
	}

	p, err := h.svc.CreateProfile(r.Context(), in)
	if err != nil {
		http.Error(w, "Failed to create profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.svc.ListProfiles(r.Context())
	if err != nil {
		http.Error(w, "Failed to list profiles", http.StatusInternalServerError)
		return
	}
	if profiles == nil {
		profiles = []ChildProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.Summary(r.Context(), id, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	in, ok := parseDetails(w, req.Name, req.BirthDate, req.Gender)
	if !ok {
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), id, in.Name, in.BirthDate, in.Gender)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProfile(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	var req AddRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	date, err := age.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}
	rec, ok := req.record()
	if !ok {
		http.Error(w, "Measurements must be positive", http.StatusBadRequest)
		return
	}
	rec.Date = date

	p, err := h.svc.AddRecord(r.Context(), id, rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) GetInsight(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Insight(r.Context(), id, Metric(chi.URLParam(r, "metric")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	chart, err := h.svc.Chart(r.Context(), id, Metric(chi.URLParam(r, "metric")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/profiles", h.CreateProfile)
	r.Get("/profiles", h.ListProfiles)
	r.Get("/profiles/{profileID}", h.GetProfile)
	r.Put("/profiles/{profileID}", h.UpdateProfile)
	r.Delete("/profiles/{profileID}", h.DeleteProfile)
	r.Post("/profiles/{profileID}/records", h.AddRecord)
	r.Get("/profiles/{profileID}/growth/{metric}/insight", h.GetInsight)
	r.Get("/profiles/{profileID}/growth/{metric}/chart", h.GetChart)
}

func parseDetails(w http.ResponseWriter, name, birthDate, gender string) (CreateProfileInput, bool) {
	if name == "" {
		http.Error(w, "Missing name", http.StatusBadRequest)
		return CreateProfileInput{}, false
	}
	birth, err := age.ParseDate(birthDate)
	if err != nil {
		http.Error(w, "Invalid birth_date", http.StatusBadRequest)
		return CreateProfileInput{}, false
	}
	g := Gender(gender)
	if !g.Valid() {
		http.Error(w, "Invalid gender", http.StatusBadRequest)
		return CreateProfileInput{}, false
	}
	return CreateProfileInput{Name: name, BirthDate: birth, Gender: g}, true
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
	case errors.Is(err, ErrProfileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrEmptyRecord), errors.Is(err, ErrInvalidMetric):
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
