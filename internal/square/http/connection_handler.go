package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/squareconnect/internal/httputil"
	"github.com/allisson/squareconnect/internal/square/http/dto"
	squareUseCase "github.com/allisson/squareconnect/internal/square/usecase"
)

// ConnectionHandler exposes the caller's stored Square connections.
type ConnectionHandler struct {
	connectionUseCase squareUseCase.ConnectionUseCase
	logger            *slog.Logger
}

// NewConnectionHandler creates a connection handler.
func NewConnectionHandler(connectionUseCase squareUseCase.ConnectionUseCase, logger *slog.Logger) *ConnectionHandler {
	return &ConnectionHandler{connectionUseCase: connectionUseCase, logger: logger}
}

// ListHandler lists the caller's connected merchants.
// GET /api/square/connections
func (h *ConnectionHandler) ListHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	conns, err := h.connectionUseCase.List(c.Request.Context(), caller)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapListConnectionsResponse(conns))
}

// GetHandler reports whether the caller is connected to a merchant.
// GET /api/square/connections/:merchantId
func (h *ConnectionHandler) GetHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	conn, err := h.connectionUseCase.Status(c.Request.Context(), caller, c.Param("merchantId"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapConnectionResponse(conn))
}

// DeleteHandler removes the caller's stored connection to a merchant.
// DELETE /api/square/connections/:merchantId
// Returns 204 No Content.
func (h *ConnectionHandler) DeleteHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.connectionUseCase.Disconnect(c.Request.Context(), caller, c.Param("merchantId")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
