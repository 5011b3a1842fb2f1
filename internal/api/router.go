package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/morpion/internal/api/apierr"
	"github.com/mcoot/morpion/internal/api/handler"
	"github.com/mcoot/morpion/internal/api/middleware"
	"github.com/mcoot/morpion/internal/services/auth"
	"github.com/mcoot/morpion/internal/services/stats"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	AuthService  *auth.Service
	StatsService *stats.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	// Create handlers
	userHandler := handler.NewUserHandler(cfg.AuthService)
	profileHandler := handler.NewProfileHandler(cfg.StatsService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Account routes (no auth required to register, log in or confirm)
	api.HandleFunc("/users/register", userHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/login", userHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}/confirm/{token}", userHandler.Confirm).Methods(http.MethodGet)

	// Protected routes
	protected := api.PathPrefix("/users").Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/logout", userHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/me", userHandler.GetMe).Methods(http.MethodGet)
	protected.HandleFunc("/me/profile", profileHandler.GetMine).Methods(http.MethodGet)
	protected.HandleFunc("/{id:[0-9]+}/profile", profileHandler.Get).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}
