// Package http serves the onboarding catalogue.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/squareconnect/internal/httputil"
	onboardingDomain "github.com/allisson/squareconnect/internal/onboarding/domain"
	"github.com/allisson/squareconnect/internal/onboarding/http/dto"
	customValidation "github.com/allisson/squareconnect/internal/validation"
)

// OnboardingHandler handles the onboarding catalogue endpoints.
type OnboardingHandler struct {
	logger *slog.Logger
}

// NewOnboardingHandler creates an onboarding handler.
func NewOnboardingHandler(logger *slog.Logger) *OnboardingHandler {
	return &OnboardingHandler{logger: logger}
}

// CatalogHandler lists business types and services.
// GET /api/onboarding/catalog
func (h *OnboardingHandler) CatalogHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MapCatalogResponse())
}

// RequirementsHandler reports whether a selection needs a Square connection.
// POST /api/onboarding/requirements
func (h *OnboardingHandler) RequirementsHandler(c *gin.Context) {
	var req dto.RequirementsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	business, selected := req.ToDomain()
	required, err := onboardingDomain.RequiresSquare(business, selected)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RequirementsResponse{RequiresSquare: required})
}
