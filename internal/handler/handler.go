// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairwaylabs/outings/internal/model"
	"github.com/fairwaylabs/outings/internal/repository"
	"github.com/fairwaylabs/outings/internal/rules"
	"github.com/fairwaylabs/outings/internal/service"
)

// OutingHandler holds all HTTP handlers for the outing signup API.
type OutingHandler struct {
	svc *service.OutingService
}

// NewOutingHandler constructs an OutingHandler.
func NewOutingHandler(svc *service.OutingService) *OutingHandler {
	return &OutingHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps engine errors onto the three client-visible
// kinds: validation (400), conflict (409, retryable with a corrected
// roster), and unavailable (503). Capacity exhaustion keeps its own code
// so clients can offer the waitlist path.
func writeServiceError(w http.ResponseWriter, err error) {
	var violation *rules.Violation
	var capacity *service.CapacityError
	switch {
	case errors.As(err, &violation):
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error: violation.Message,
			Rule:  violation.Rule,
		})
	case errors.As(err, &capacity):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:             capacity.Message,
			Code:              "capacity_exceeded",
			WaitlistAvailable: capacity.WaitlistAvailable,
		})
	case errors.Is(err, repository.ErrDuplicateMember):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error: err.Error(),
			Code:  "already_registered",
		})
	case errors.Is(err, repository.ErrDuplicateWaitlist):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error: err.Error(),
			Code:  "already_waitlisted",
		})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeJSON(w, http.StatusServiceUnavailable, model.ErrorResponse{
			Error: "service temporarily unavailable",
			Code:  "unavailable",
		})
	}
}

// ─── Public handlers ──────────────────────────────────────────────────────────

// ListOutings handles GET /outings
func (h *OutingHandler) ListOutings(w http.ResponseWriter, r *http.Request) {
	outings, err := h.svc.ListOutings(r.Context(), false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if outings == nil {
		outings = []model.EnrichedOuting{}
	}
	writeJSON(w, http.StatusOK, outings)
}

// GetOuting handles GET /outings/{id}
func (h *OutingHandler) GetOuting(w http.ResponseWriter, r *http.Request) {
	outing, err := h.svc.GetOuting(r.Context(), chi.URLParam(r, "id"), false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outing)
}

// Register handles POST /outings/{id}/register
func (h *OutingHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.svc.Register(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// EditRegistration handles PUT /outings/{id}/registrations/{regID}
func (h *OutingHandler) EditRegistration(w http.ResponseWriter, r *http.Request) {
	var req model.EditRegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	outing, err := h.svc.EditRegistration(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "regID"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outing)
}

// CancelRegistration handles DELETE /outings/{id}/registrations/{regID}?email=
func (h *OutingHandler) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	outing, err := h.svc.CancelRegistration(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "regID"), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outing)
}

// JoinWaitlist handles POST /outings/{id}/waitlist
func (h *OutingHandler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req model.WaitlistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	entry, err := h.svc.JoinWaitlist(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// Status handles GET /outings/{id}/status?email=
func (h *OutingHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Status(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("email"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ─── Administrative handlers ──────────────────────────────────────────────────

// ListOutingsAdmin handles GET /admin/outings
func (h *OutingHandler) ListOutingsAdmin(w http.ResponseWriter, r *http.Request) {
	outings, err := h.svc.ListOutings(r.Context(), true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if outings == nil {
		outings = []model.EnrichedOuting{}
	}
	writeJSON(w, http.StatusOK, outings)
}

// CreateOuting handles POST /admin/outings
func (h *OutingHandler) CreateOuting(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOutingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	outing, err := h.svc.CreateOuting(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, outing)
}

// UpdateOuting handles PUT /admin/outings/{id}
func (h *OutingHandler) UpdateOuting(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateOutingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	outing, err := h.svc.UpdateOuting(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outing)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
