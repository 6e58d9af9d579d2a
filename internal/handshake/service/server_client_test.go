package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handshakeDomain "github.com/allisson/squareconnect/internal/handshake/domain"
)

func TestServerClient_Exchange(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		want       *handshakeDomain.ExchangeOutcome
		wantReject string
	}{
		{
			name:   "connected",
			status: http.StatusOK,
			body:   `{"success":true,"supported":true,"merchant_id":"M123"}`,
			want:   &handshakeDomain.ExchangeOutcome{Supported: true, MerchantID: "M123"},
		},
		{
			name:   "unsupported",
			status: http.StatusOK,
			body:   `{"success":false,"supported":false,"mcc":"1234"}`,
			want:   &handshakeDomain.ExchangeOutcome{Supported: false, CategoryCode: "1234"},
		},
		{
			name:       "rejected with message",
			status:     http.StatusBadRequest,
			body:       `{"message":"Failed to exchange authorization code for tokens","details":{"errors":[]}}`,
			wantReject: "Failed to exchange authorization code for tokens",
		},
		{
			name:       "rejected without json",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantReject: handshakeDomain.MessageExchangeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, exchangePath, r.URL.Path)
				assert.Equal(t, "Bearer id-token", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				raw, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				var req exchangeRequest
				assert.NoError(t, json.Unmarshal(raw, &req))
				assert.Equal(t, "auth-code", req.Code)

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewServerClient(server.URL, server.Client())
			got, err := client.Exchange(context.Background(), "id-token", "auth-code")

			if tt.wantReject != "" {
				var rejected *handshakeDomain.ExchangeRejectedError
				require.True(t, errors.As(err, &rejected))
				assert.Equal(t, tt.status, rejected.Status)
				assert.Equal(t, tt.wantReject, rejected.Message)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServerClient_Exchange_MissingMerchantID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"supported":true}`))
	}))
	defer server.Close()

	_, err := NewServerClient(server.URL, server.Client()).Exchange(context.Background(), "id-token", "code")
	assert.ErrorContains(t, err, "without merchant id")
}

func TestServerClient_Exchange_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewServerClient(url, nil).Exchange(context.Background(), "id-token", "code")
	assert.ErrorContains(t, err, "request to squareconnect failed")
}

func TestServerClient_IsConnected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr bool
	}{
		{name: "connected", status: http.StatusOK, body: `{"merchantId":"M/1","isConnected":true}`, want: true},
		{name: "not connected", status: http.StatusOK, body: `{"merchantId":"M/1","isConnected":false}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, wantErr: true},
		{name: "bad payload", status: http.StatusOK, body: `nope`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/square/connections/M%2F1", r.URL.EscapedPath())
				assert.Equal(t, "Bearer id-token", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			got, err := NewServerClient(server.URL, server.Client()).
				IsConnected(context.Background(), "id-token", "M/1")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
