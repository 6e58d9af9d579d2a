// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/squareconnect/internal/config"
	identityHTTP "github.com/allisson/squareconnect/internal/identity/http"
	identityService "github.com/allisson/squareconnect/internal/identity/service"
	"github.com/allisson/squareconnect/internal/metrics"
	onboardingHTTP "github.com/allisson/squareconnect/internal/onboarding/http"
	squareHTTP "github.com/allisson/squareconnect/internal/square/http"
)

const readinessTimeout = 2 * time.Second

// Server represents the HTTP API server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// Handlers groups the endpoint handlers mounted by SetupRouter.
type Handlers struct {
	Token      *squareHTTP.TokenHandler
	Relay      *squareHTTP.RelayHandler
	Connection *squareHTTP.ConnectionHandler
	Onboarding *onboardingHTTP.OnboardingHandler
}

// NewServer creates a new HTTP server. db is pinged by the readiness endpoint.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with middleware and all routes.
// ctx bounds background work started by middleware, such as rate limiter cleanup.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	verifier identityService.Verifier,
	handlers Handlers,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, corsOrigins(cfg), s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	api := router.Group("/api")

	onboarding := api.Group("/onboarding")
	{
		onboarding.GET("/catalog", handlers.Onboarding.CatalogHandler)
		onboarding.POST("/requirements", handlers.Onboarding.RequirementsHandler)
	}

	square := api.Group("/square")
	square.Use(identityHTTP.AuthenticationMiddleware(verifier, s.logger))
	if cfg.RateLimitEnabled {
		square.Use(identityHTTP.RateLimitMiddleware(
			ctx,
			cfg.RateLimitRequestsPerSec,
			cfg.RateLimitBurst,
			s.logger,
		))
	}
	{
		square.POST("/exchange-token", handlers.Token.ExchangeHandler)
		square.POST("/refresh-token", handlers.Token.RefreshHandler)

		square.POST("/api", handlers.Relay.PostHandler)
		square.GET("/api", handlers.Relay.GetHandler)

		square.GET("/connections", handlers.Connection.ListHandler)
		square.GET("/connections/:merchantId", handlers.Connection.GetHandler)
		square.DELETE("/connections/:merchantId", handlers.Connection.DeleteHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. SetupRouter must have been called.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness, pinging the database.
func (s *Server) readinessHandler(c *gin.Context) {
	database := "ok"
	if s.db == nil {
		database = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("database not ready", slog.Any("error", err))
			database = "error"
		}
	}

	components := gin.H{"database": database}
	if database != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
