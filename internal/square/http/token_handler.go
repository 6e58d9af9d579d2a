package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/squareconnect/internal/errors"
	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
	"github.com/allisson/squareconnect/internal/square/http/dto"
	squareUseCase "github.com/allisson/squareconnect/internal/square/usecase"
)

const (
	msgCodeRequired       = "Authorization code is required"
	msgConfigMissing      = "Square configuration is missing"
	msgExchangeFailed     = "Failed to exchange authorization code for tokens"
	msgMerchantIDRequired = "Merchant ID is required"
	msgRefreshFailed      = "Failed to refresh token"
	msgNotConnected       = "Square account not connected"
	msgInternalError      = "Internal server error"
)

// TokenHandler handles the authorization code exchange and token refresh endpoints.
type TokenHandler struct {
	exchangeUseCase squareUseCase.ExchangeUseCase
	tokenUseCase    squareUseCase.TokenUseCase
	logger          *slog.Logger
}

// NewTokenHandler creates a token handler.
func NewTokenHandler(
	exchangeUseCase squareUseCase.ExchangeUseCase,
	tokenUseCase squareUseCase.TokenUseCase,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		exchangeUseCase: exchangeUseCase,
		tokenUseCase:    tokenUseCase,
		logger:          logger,
	}
}

// ExchangeHandler redeems an authorization code for the authenticated caller.
// POST /api/square/exchange-token
// Returns 200 with {success, supported, merchant_id} or {supported: false, mcc}.
// Tokens stay on the server.
func (h *TokenHandler) ExchangeHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.ExchangeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Validate() != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgCodeRequired})
		return
	}

	result, err := h.exchangeUseCase.Exchange(c.Request.Context(), caller, req.Code)
	if err != nil {
		h.handleExchangeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapExchangeResponse(result))
}

func (h *TokenHandler) handleExchangeError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, squareDomain.ErrCodeRequired):
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgCodeRequired})
	case apperrors.Is(err, squareDomain.ErrConfigurationMissing):
		h.logger.Error("square client credentials are not configured")
		c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: msgConfigMissing})
	case apperrors.Is(err, squareDomain.ErrMalformedUpstreamResponse):
		h.logger.Error("square token response has an unexpected shape", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: msgInternalError})
	case apperrors.Is(err, squareDomain.ErrTokenExchangeFailed):
		h.logger.Warn("square token exchange failed", slog.Any("error", err))
		resp := dto.MessageResponse{Message: msgExchangeFailed}
		var upstream *squareDomain.UpstreamError
		if apperrors.As(err, &upstream) {
			resp.Details = upstream.Details()
		}
		c.JSON(http.StatusBadRequest, resp)
	default:
		h.logger.Error("square token exchange error", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: msgInternalError})
	}
}

// RefreshHandler forces a refresh of the caller's stored token for a merchant.
// POST /api/square/refresh-token
// Returns 200 with {success, merchant_id, expires_at}; tokens are never returned.
func (h *TokenHandler) RefreshHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Validate() != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgMerchantIDRequired})
		return
	}

	expiresAt, err := h.tokenUseCase.Refresh(c.Request.Context(), caller, req.MerchantID)
	if err != nil {
		switch {
		case apperrors.Is(err, squareDomain.ErrNotConnected):
			c.JSON(http.StatusNotFound, dto.MessageResponse{Message: msgNotConnected})
		case apperrors.Is(err, squareDomain.ErrMerchantIDRequired):
			c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgMerchantIDRequired})
		case apperrors.Is(err, squareDomain.ErrMalformedUpstreamResponse):
			h.logger.Error("square refresh response has an unexpected shape", slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: msgInternalError})
		case apperrors.Is(err, squareDomain.ErrTokenExchangeFailed):
			h.logger.Warn("square token refresh failed", slog.Any("error", err))
			c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgRefreshFailed})
		case apperrors.Is(err, squareDomain.ErrConfigurationMissing):
			h.logger.Error("square client credentials are not configured")
			c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: msgConfigMissing})
		default:
			h.logger.Error("square token refresh error", slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: msgInternalError})
		}
		return
	}

	c.JSON(http.StatusOK, dto.MapRefreshResponse(req.MerchantID, expiresAt))
}
