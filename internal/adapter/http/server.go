package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fixora/assetdash/internal/logger"
	"github.com/fixora/assetdash/internal/observability"
)

// Server represents the HTTP server
type Server struct {
	addr   string
	logger logger.Logger
	server *http.Server
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// Dependencies are the collaborators the router is built from
type Dependencies struct {
	Analytics *AnalyticsHandler
	RateLimit *RateLimitMiddleware
	Metrics   *observability.Metrics
	Gatherer  prometheus.Gatherer
	Logger    logger.Logger
}

// NewRouter builds the API router with its middleware chain
func NewRouter(deps Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	if deps.Gatherer != nil {
		router.Handle("/metrics", observability.Handler(deps.Gatherer)).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	if deps.RateLimit != nil {
		api.Use(deps.RateLimit.RateLimit)
	}
	deps.Analytics.RegisterRoutes(api)

	router.Use(CorrelationIDMiddleware)
	router.Use(RequestLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		router.Use(observability.HTTPMetricsMiddleware(deps.Metrics))
	}

	return router
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, deps Dependencies) *Server {
	router := NewRouter(deps)

	origins := config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	handler := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", CorrelationIDHeader}),
		handlers.ExposedHeaders([]string{CorrelationIDHeader, "Retry-After"}),
	)(router)
	handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: deps.Logger}),
		handlers.PrintRecoveryStack(false),
	)(handler)

	addr := config.Host + ":" + config.Port
	return &Server{
		addr:   addr,
		logger: deps.Logger,
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting HTTP server", map[string]interface{}{
		"addr": s.addr,
	})
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
