package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/allisson/squareconnect/internal/config"
)

// corsOrigins returns the configured origins, or the dashboard origin when none are set.
func corsOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowOrigins) > 0 {
		return cfg.CORSAllowOrigins
	}
	if cfg.AppURL != "" {
		return []string{cfg.AppURL}
	}
	return nil
}

// createCORSMiddleware lets the dashboard call the API with a bearer ID token.
// Returns nil when disabled or when there is no origin to allow.
func createCORSMiddleware(enabled bool, origins []string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured - CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
