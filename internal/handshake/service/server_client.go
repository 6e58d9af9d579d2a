// Package service talks to the squareconnect API on behalf of the handshake.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/allisson/squareconnect/internal/errors"
	handshakeDomain "github.com/allisson/squareconnect/internal/handshake/domain"
)

const (
	exchangePath    = "/api/square/exchange-token"
	connectionsPath = "/api/square/connections/"

	maxResponseBytes = 1 << 20
)

// ServerClient implements ExchangeClient and StatusClient over HTTP.
type ServerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewServerClient creates a client for the API at baseURL. A nil httpClient
// uses a client with a 30 second timeout.
func NewServerClient(baseURL string, httpClient *http.Client) *ServerClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ServerClient{baseURL: baseURL, httpClient: httpClient}
}

type exchangeRequest struct {
	Code string `json:"code"`
}

type exchangeResponse struct {
	Success    bool   `json:"success"`
	Supported  *bool  `json:"supported"`
	MerchantID string `json:"merchant_id"`
	MCC        string `json:"mcc"`
	Message    string `json:"message"`
}

type statusResponse struct {
	MerchantID  string `json:"merchantId"`
	IsConnected bool   `json:"isConnected"`
}

// Exchange posts the authorization code with the caller's ID token.
func (c *ServerClient) Exchange(
	ctx context.Context,
	idToken, code string,
) (*handshakeDomain.ExchangeOutcome, error) {
	payload, err := json.Marshal(exchangeRequest{Code: code})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode exchange request")
	}

	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+exchangePath, idToken, payload)
	if err != nil {
		return nil, err
	}

	var resp exchangeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if status < 200 || status > 299 {
			return nil, &handshakeDomain.ExchangeRejectedError{
				Status:  status,
				Message: handshakeDomain.MessageExchangeFailed,
			}
		}
		return nil, apperrors.Wrap(err, "failed to decode exchange response")
	}

	if status < 200 || status > 299 {
		message := resp.Message
		if message == "" {
			message = handshakeDomain.MessageExchangeFailed
		}
		return nil, &handshakeDomain.ExchangeRejectedError{Status: status, Message: message}
	}

	if resp.Supported != nil && !*resp.Supported {
		return &handshakeDomain.ExchangeOutcome{Supported: false, CategoryCode: resp.MCC}, nil
	}
	if resp.MerchantID == "" {
		return nil, fmt.Errorf("exchange response without merchant id")
	}
	return &handshakeDomain.ExchangeOutcome{Supported: true, MerchantID: resp.MerchantID}, nil
}

// IsConnected asks the server whether merchantID still has a stored connection.
func (c *ServerClient) IsConnected(ctx context.Context, idToken, merchantID string) (bool, error) {
	endpoint := c.baseURL + connectionsPath + url.PathEscape(merchantID)

	status, body, err := c.do(ctx, http.MethodGet, endpoint, idToken, nil)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("connection status returned status %d", status)
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, apperrors.Wrap(err, "failed to decode connection status")
	}
	return resp.IsConnected, nil
}

func (c *ServerClient) do(
	ctx context.Context,
	method, endpoint, idToken string,
	payload []byte,
) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, apperrors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+idToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, apperrors.Wrap(err, "request to squareconnect failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, apperrors.Wrap(err, "failed to read response")
	}
	return resp.StatusCode, body, nil
}
