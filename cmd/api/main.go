package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/contactbook/contactbook-go/internal/config"
	"github.com/contactbook/contactbook-go/internal/crypto"
	"github.com/contactbook/contactbook-go/internal/handler"
	"github.com/contactbook/contactbook-go/internal/logging"
	"github.com/contactbook/contactbook-go/internal/observability"
	"github.com/contactbook/contactbook-go/internal/repository"
	"github.com/contactbook/contactbook-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Warn("falling back to info level", "error", err)
	}
	logger := logging.New(os.Stdout, level, cfg.IsProduction())
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	users, contacts, db, err := openStores(cfg)
	if err != nil {
		slog.Error("database setup failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		metrics.RegisterDB(db, "contactbook")
	}

	authService := service.NewAuthService(users, crypto.NewHasher(crypto.DefaultHashParams()), cfg.JWTSecret, cfg.JWTExpiry)
	contactService := service.NewContactService(contacts)

	r := handler.NewRouter(handler.RouterConfig{
		Auth:      authService,
		Contacts:  contactService,
		JWTSecret: cfg.JWTSecret,
		Logger:    logger,
		Metrics:   metrics,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// openStores returns the repositories for the configured driver. db is nil for the memory driver.
func openStores(cfg config.Config) (service.UserRepository, service.ContactRepository, *sql.DB, error) {
	if cfg.DBDriver == config.DriverMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryUserRepository(), repository.NewMemoryContactRepository(), nil, nil
	}

	dialect, err := repository.ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.NewDB(ctx, dialect, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.Migrate {
		if err := repository.Migrate(ctx, db, dialect); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		slog.Info("migrations applied", "dialect", dialect)
	}

	return repository.NewUserRepository(db, dialect), repository.NewContactRepository(db, dialect), db, nil
}
