package handler

import (
	"log/slog"
	"net/http"

	"github.com/contactbook/contactbook-go/internal/apperr"
	"github.com/contactbook/contactbook-go/internal/middleware"
	"github.com/contactbook/contactbook-go/internal/model"
	"github.com/contactbook/contactbook-go/internal/observability"
	"github.com/contactbook/contactbook-go/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAuthHandler creates a new AuthHandler. metrics may be nil.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, metrics *observability.Metrics) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger, metrics: metrics}
}

// HandleRegister handles POST /auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	h.metrics.ObserveAuth("register", outcome(err))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	h.metrics.ObserveAuth("login", outcome(err))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleMe handles GET /auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperr.New(apperr.KindAuthentication, "unauthorized"))
		return
	}

	resp, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
