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
	msgEndpointRequired = "API endpoint is required"
	msgInvalidEndpoint  = "API endpoint must be a path"
	msgInvalidBody      = "Invalid request body"
	msgSquareAPIError   = "Square API error"
)

// RelayHandler forwards Square API calls with the caller's stored credential.
type RelayHandler struct {
	relayUseCase squareUseCase.RelayUseCase
	logger       *slog.Logger
}

// NewRelayHandler creates a relay handler.
func NewRelayHandler(relayUseCase squareUseCase.RelayUseCase, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{relayUseCase: relayUseCase, logger: logger}
}

// PostHandler relays {merchantId, endpoint, method?, body?}.
// POST /api/square/api
func (h *RelayHandler) PostHandler(c *gin.Context) {
	var req dto.RelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.RelayErrorResponse{Error: msgInvalidBody})
		return
	}
	h.relay(c, req.ToDomain())
}

// GetHandler relays a GET call named by the merchantId and endpoint query parameters.
// GET /api/square/api
func (h *RelayHandler) GetHandler(c *gin.Context) {
	req := &squareDomain.RelayRequest{
		MerchantID: c.Query("merchantId"),
		Endpoint:   c.Query("endpoint"),
		Method:     http.MethodGet,
	}
	h.relay(c, req)
}

func (h *RelayHandler) relay(c *gin.Context, req *squareDomain.RelayRequest) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		h.handleError(c, err)
		return
	}

	resp, err := h.relayUseCase.Call(c.Request.Context(), caller, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if !resp.OK() {
		c.JSON(resp.Status, dto.RelayErrorResponse{
			Error:   msgSquareAPIError,
			Details: relayDetails(resp.Body),
		})
		return
	}

	if len(resp.Body) == 0 {
		c.Status(resp.Status)
		return
	}
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Data(resp.Status, contentType, resp.Body)
}

func (h *RelayHandler) handleError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, squareDomain.ErrMerchantIDRequired):
		c.JSON(http.StatusBadRequest, dto.RelayErrorResponse{Error: msgMerchantIDRequired})
	case apperrors.Is(err, squareDomain.ErrEndpointRequired):
		c.JSON(http.StatusBadRequest, dto.RelayErrorResponse{Error: msgEndpointRequired})
	case apperrors.Is(err, squareDomain.ErrInvalidEndpoint):
		c.JSON(http.StatusBadRequest, dto.RelayErrorResponse{Error: msgInvalidEndpoint})
	case apperrors.Is(err, squareDomain.ErrNotConnected):
		c.JSON(http.StatusUnauthorized, dto.RelayErrorResponse{Error: msgNotConnected})
	default:
		h.logger.Error("square api relay failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, dto.RelayErrorResponse{Error: msgInternalError})
	}
}

// relayDetails returns the upstream error body, or an empty object when it is not JSON.
func relayDetails(body []byte) any {
	details := squareDomain.DetailsOf(body)
	if _, isText := details.(string); isText || details == nil {
		return gin.H{}
	}
	return details
}
