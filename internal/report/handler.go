package report

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"child-health-tracker/internal/growth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		http.Error(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}
	pdf, err := h.svc.Render(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="growth_report.pdf"`)
	w.Write(pdf)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		http.Error(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}
	if err := h.svc.Send(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/profiles/{profileID}/report.pdf", h.Download)
	r.Post("/profiles/{profileID}/report", h.Send)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, growth.ErrProfileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDeliveryDisabled):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
	}
}
