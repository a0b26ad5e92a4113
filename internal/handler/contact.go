package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contactbook/contactbook-go/internal/apperr"
	"github.com/contactbook/contactbook-go/internal/middleware"
	"github.com/contactbook/contactbook-go/internal/model"
	"github.com/contactbook/contactbook-go/internal/observability"
	"github.com/contactbook/contactbook-go/internal/service"
)

// ContactHandler handles HTTP requests for contact operations.
// The owner is always the authenticated caller; any owner field in the body is ignored.
type ContactHandler struct {
	service *service.ContactService
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewContactHandler creates a new ContactHandler. metrics may be nil.
func NewContactHandler(svc *service.ContactService, logger *slog.Logger, metrics *observability.Metrics) *ContactHandler {
	return &ContactHandler{service: svc, logger: logger, metrics: metrics}
}

// HandleList handles GET /contacts requests.
func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	contacts, err := h.service.List(r.Context(), ownerID)
	h.metrics.ObserveContact("list", outcome(err))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// HandleCreate handles POST /contacts requests.
func (h *ContactHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var in model.ContactInput
	if !decodeJSON(w, r, &in) {
		return
	}

	contact, err := h.service.Create(r.Context(), ownerID, in)
	h.metrics.ObserveContact("create", outcome(err))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

// HandleUpdate handles PUT /contacts/{id} requests.
func (h *ContactHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var in model.ContactInput
	if !decodeJSON(w, r, &in) {
		return
	}

	contact, err := h.service.Update(r.Context(), ownerID, chi.URLParam(r, "id"), in)
	h.metrics.ObserveContact("update", outcome(err))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// HandleDelete handles DELETE /contacts/{id} requests.
func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	err := h.service.Delete(r.Context(), ownerID, chi.URLParam(r, "id"))
	h.metrics.ObserveContact("delete", outcome(err))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperr.New(apperr.KindAuthentication, "unauthorized"))
	}
	return ownerID, ok
}
