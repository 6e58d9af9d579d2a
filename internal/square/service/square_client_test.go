package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	apperrors "github.com/allisson/squareconnect/internal/errors"
	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *SquareClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewSquareClient(Config{
		BaseURL:      server.URL,
		Version:      "2024-01-17",
		ClientID:     "sq0idp-test",
		ClientSecret: "sq0csp-test",
		RedirectURI:  "https://app.example.com/oauth/square/callback",
		Timeout:      2 * time.Second,
	}, server.Client())
}

func decodeBody(t *testing.T, r *http.Request) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestSquareClient_ExchangeCode(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ExchangeWithExpiresAt", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/oauth2/token", r.URL.Path)
			assert.Equal(t, "2024-01-17", r.Header.Get("Square-Version"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body := decodeBody(t, r)
			assert.Equal(t, map[string]string{
				"client_id":     "sq0idp-test",
				"client_secret": "sq0csp-test",
				"code":          "abc123",
				"grant_type":    "authorization_code",
				"redirect_uri":  "https://app.example.com/oauth/square/callback",
			}, body)

			_, _ = w.Write([]byte(`{
				"access_token":"EAAA-access",
				"refresh_token":"EQAA-refresh",
				"merchant_id":"M1",
				"expires_at":"2024-04-01T00:00:00Z",
				"token_type":"bearer"
			}`))
		})

		pair, err := client.ExchangeCode(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, "EAAA-access", pair.AccessToken)
		assert.Equal(t, "EQAA-refresh", pair.RefreshToken)
		assert.Equal(t, "M1", pair.MerchantID)
		assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), pair.ExpiresAt)
	})

	t.Run("Success_ExpiryOmitted", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"a","refresh_token":"r","merchant_id":"M1"}`))
		})

		pair, err := client.ExchangeCode(ctx, "abc123")
		require.NoError(t, err)
		assert.True(t, pair.ExpiresAt.IsZero())
	})

	t.Run("Error_CodeRejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Authorization code is already redeemed","type":"bad_request"}`))
		})

		pair, err := client.ExchangeCode(ctx, "abc123")
		assert.Nil(t, pair)
		assert.ErrorIs(t, err, squareDomain.ErrTokenExchangeFailed)

		var upstream *squareDomain.UpstreamError
		require.True(t, apperrors.As(err, &upstream))
		assert.Equal(t, http.StatusUnauthorized, upstream.Status)
		assert.Equal(t, "Authorization code is already redeemed", upstream.Details().(map[string]any)["message"])
	})

	t.Run("Error_MissingMerchantID", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"a"}`))
		})

		_, err := client.ExchangeCode(ctx, "abc123")
		assert.ErrorIs(t, err, squareDomain.ErrMalformedUpstreamResponse)
	})

	t.Run("Error_MissingConfiguration", func(t *testing.T) {
		client := NewSquareClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)

		_, err := client.ExchangeCode(ctx, "abc123")
		assert.ErrorIs(t, err, squareDomain.ErrConfigurationMissing)
	})

	t.Run("Error_TransportFailure", func(t *testing.T) {
		client := NewSquareClient(Config{
			BaseURL:      "http://127.0.0.1:1",
			ClientID:     "id",
			ClientSecret: "secret",
			Timeout:      time.Second,
		}, nil)

		_, err := client.ExchangeCode(ctx, "abc123")
		assert.ErrorIs(t, err, squareDomain.ErrTokenExchangeFailed)
	})

	t.Run("Error_Timeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		})
		client.cfg.Timeout = 50 * time.Millisecond

		_, err := client.ExchangeCode(ctx, "abc123")
		assert.ErrorIs(t, err, squareDomain.ErrTokenExchangeFailed)
	})
}

func TestSquareClient_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ExpiresIn", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			body := decodeBody(t, r)
			assert.Equal(t, "refresh_token", body["grant_type"])
			assert.Equal(t, "EQAA-refresh", body["refresh_token"])
			assert.NotContains(t, body, "code")
			assert.NotContains(t, body, "redirect_uri")

			_, _ = w.Write([]byte(`{"access_token":"EAAA-new","expires_in":3600}`))
		})

		before := time.Now()
		pair, err := client.RefreshToken(ctx, "EQAA-refresh")
		require.NoError(t, err)
		assert.Equal(t, "EAAA-new", pair.AccessToken)
		assert.Empty(t, pair.RefreshToken)
		assert.WithinDuration(t, before.Add(time.Hour), pair.ExpiresAt, 5*time.Second)
	})

	t.Run("Error_Rejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"invalid refresh token"}`))
		})

		_, err := client.RefreshToken(ctx, "revoked")
		assert.ErrorIs(t, err, squareDomain.ErrTokenExchangeFailed)
	})

	t.Run("Error_InvalidExpiresAt", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"a","expires_at":"tomorrow"}`))
		})

		_, err := client.RefreshToken(ctx, "r")
		assert.ErrorIs(t, err, squareDomain.ErrMalformedUpstreamResponse)
	})
}

func TestSquareClient_FetchLocations(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_LocationList", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/v2/locations", r.URL.Path)
			assert.Equal(t, "Bearer EAAA-access", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"locations":[{"id":"L1","mcc":"5812"}]}`))
		})

		payload, err := client.FetchLocations(ctx, "EAAA-access")
		require.NoError(t, err)
		assert.Equal(t, "5812", squareDomain.CategoryCodeOf(payload))
	})

	t.Run("Error_Upstream", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := client.FetchLocations(ctx, "EAAA-access")
		assert.ErrorIs(t, err, squareDomain.ErrEligibilityUndetermined)
	})

	t.Run("Error_UnexpectedShape", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.FetchLocations(ctx, "EAAA-access")
		assert.ErrorIs(t, err, squareDomain.ErrEligibilityUndetermined)
	})
}

func TestSquareClient_Do(t *testing.T) {
	ctx := context.Background()
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "EAAA-access", TokenType: "Bearer"})

	t.Run("Success_PostWithBody", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v2/orders/search", r.URL.Path)
			assert.Equal(t, "Bearer EAAA-access", r.Header.Get("Authorization"))
			assert.Equal(t, "2024-01-17", r.Header.Get("Square-Version"))
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"limit":1}`, string(body))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"orders":[]}`))
		})

		resp, err := client.Do(ctx, source, &squareDomain.RelayRequest{
			MerchantID: "M1",
			Endpoint:   "/v2/orders/search",
			Method:     http.MethodPost,
			Body:       json.RawMessage(`{"limit":1}`),
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "application/json", resp.ContentType)
		assert.JSONEq(t, `{"orders":[]}`, string(resp.Body))
	})

	t.Run("Success_GetDropsBodyAndKeepsQuery", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "limit=5", r.URL.RawQuery)
			body, _ := io.ReadAll(r.Body)
			assert.Empty(t, body)
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.Do(ctx, source, &squareDomain.RelayRequest{
			Endpoint: "/v2/payments?limit=5",
			Method:   http.MethodGet,
			Body:     json.RawMessage(`{"ignored":true}`),
		})
		require.NoError(t, err)
	})

	t.Run("Success_UpstreamErrorIsReturnedVerbatim", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[{"code":"NOT_FOUND"}]}`))
		})

		resp, err := client.Do(ctx, source, &squareDomain.RelayRequest{Endpoint: "/v2/missing", Method: http.MethodGet})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.False(t, resp.OK())
	})

	t.Run("Success_RedirectNotFollowed", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "https://elsewhere.example/", http.StatusFound)
		})

		resp, err := client.Do(ctx, source, &squareDomain.RelayRequest{Endpoint: "/v2/locations", Method: http.MethodGet})
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.Status)
	})

	t.Run("Error_TransportFailure", func(t *testing.T) {
		client := NewSquareClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil)

		_, err := client.Do(ctx, source, &squareDomain.RelayRequest{Endpoint: "/v2/locations", Method: http.MethodGet})
		assert.ErrorIs(t, err, squareDomain.ErrRelayFailed)
	})
}

func TestOAuthEndpoint(t *testing.T) {
	endpoint := OAuthEndpoint("https://connect.squareupsandbox.com")
	assert.Equal(t, "https://connect.squareupsandbox.com/oauth2/authorize", endpoint.AuthURL)
	assert.Equal(t, "https://connect.squareupsandbox.com/oauth2/token", endpoint.TokenURL)
}
