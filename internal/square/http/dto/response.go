package dto

import (
	"time"

	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

// MessageResponse is the {message} error payload of the token endpoints.
type MessageResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RelayErrorResponse is the {error} payload of the relay endpoint.
type RelayErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// ExchangeTokenResponse is returned for a connected merchant.
type ExchangeTokenResponse struct {
	Success    bool   `json:"success"`
	Supported  bool   `json:"supported"`
	MerchantID string `json:"merchant_id"`
}

// UnsupportedMerchantResponse is returned when the merchant category is not allowed.
type UnsupportedMerchantResponse struct {
	Success   bool   `json:"success"`
	Supported bool   `json:"supported"`
	MCC       string `json:"mcc"`
}

// RefreshTokenResponse reports a refresh. Tokens are never returned.
type RefreshTokenResponse struct {
	Success    bool   `json:"success"`
	MerchantID string `json:"merchant_id"`
	ExpiresAt  string `json:"expires_at"`
}

// ConnectionResponse is the non-secret view of a stored connection.
type ConnectionResponse struct {
	MerchantID  string     `json:"merchantId"`
	IsConnected bool       `json:"isConnected"`
	ConnectedAt *time.Time `json:"connectedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// ListConnectionsResponse lists a caller's connections.
type ListConnectionsResponse struct {
	Connections []ConnectionResponse `json:"connections"`
}

// MapExchangeResponse builds the payload for an exchange result.
func MapExchangeResponse(result *squareDomain.ExchangeResult) any {
	if result.Status == squareDomain.StatusUnsupported {
		return UnsupportedMerchantResponse{Success: false, Supported: false, MCC: result.CategoryCode}
	}
	return ExchangeTokenResponse{Success: true, Supported: true, MerchantID: result.MerchantID}
}

// MapRefreshResponse builds the payload for a refresh.
func MapRefreshResponse(merchantID string, expiresAt time.Time) RefreshTokenResponse {
	return RefreshTokenResponse{
		Success:    true,
		MerchantID: merchantID,
		ExpiresAt:  expiresAt.UTC().Format(time.RFC3339),
	}
}

// MapConnectionResponse converts a connection.
func MapConnectionResponse(conn *squareDomain.Connection) ConnectionResponse {
	resp := ConnectionResponse{MerchantID: conn.MerchantID, IsConnected: conn.IsConnected}
	if !conn.ConnectedAt.IsZero() {
		connectedAt := conn.ConnectedAt.UTC()
		resp.ConnectedAt = &connectedAt
	}
	if !conn.ExpiresAt.IsZero() {
		expiresAt := conn.ExpiresAt.UTC()
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

// MapListConnectionsResponse converts a caller's connections.
func MapListConnectionsResponse(conns []squareDomain.Connection) ListConnectionsResponse {
	resp := ListConnectionsResponse{Connections: make([]ConnectionResponse, 0, len(conns))}
	for i := range conns {
		resp.Connections = append(resp.Connections, MapConnectionResponse(&conns[i]))
	}
	return resp
}
