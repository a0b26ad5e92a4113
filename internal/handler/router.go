package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/contactbook/contactbook-go/internal/middleware"
	"github.com/contactbook/contactbook-go/internal/observability"
	"github.com/contactbook/contactbook-go/internal/service"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Auth      *service.AuthService
	Contacts  *service.ContactService
	JWTSecret string
	Logger    *slog.Logger
	// Metrics is optional; /metrics is only mounted when set.
	Metrics *observability.Metrics
}

// NewRouter builds the chi router serving the REST API.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := NewAuthHandler(cfg.Auth, logger, cfg.Metrics)
	contactHandler := NewContactHandler(cfg.Contacts, logger, cfg.Metrics)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(observability.HTTPMetricsMiddleware(cfg.Metrics))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Post("/auth/register", authHandler.HandleRegister)
	r.Post("/auth/login", authHandler.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Get("/auth/me", authHandler.HandleMe)

		r.Get("/contacts", contactHandler.HandleList)
		r.Post("/contacts", contactHandler.HandleCreate)
		r.Put("/contacts/{id}", contactHandler.HandleUpdate)
		r.Delete("/contacts/{id}", contactHandler.HandleDelete)
	})

	return r
}
