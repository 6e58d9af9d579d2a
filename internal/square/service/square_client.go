package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/allisson/squareconnect/internal/errors"
	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

const (
	tokenPath     = "/oauth2/token"
	authorizePath = "/oauth2/authorize"
	locationsPath = "/v2/locations"

	grantAuthorizationCode = "authorization_code"
	grantRefreshToken      = "refresh_token"

	// maxResponseBytes caps how much of an upstream body is read.
	maxResponseBytes = 10 << 20
)

// Config is the explicit Square client configuration.
type Config struct {
	BaseURL      string
	Version      string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Timeout      time.Duration
}

// OAuthEndpoint returns the Square authorize and token URLs under baseURL.
func OAuthEndpoint(baseURL string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   baseURL + authorizePath,
		TokenURL:  baseURL + tokenPath,
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// SquareClient implements OAuthClient, LocationsClient and APIClient over HTTP.
type SquareClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewSquareClient creates a client. A nil httpClient uses a client with default transport.
func NewSquareClient(cfg Config, httpClient *http.Client) *SquareClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SquareClient{cfg: cfg, httpClient: httpClient}
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	GrantType    string `json:"grant_type"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	MerchantID   string `json:"merchant_id"`
	ExpiresAt    string `json:"expires_at"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ExchangeCode redeems an authorization code.
func (c *SquareClient) ExchangeCode(ctx context.Context, code string) (*squareDomain.TokenPair, error) {
	pair, err := c.requestToken(ctx, tokenRequest{
		Code:        code,
		GrantType:   grantAuthorizationCode,
		RedirectURI: c.cfg.RedirectURI,
	})
	if err != nil {
		return nil, err
	}
	if pair.MerchantID == "" {
		return nil, apperrors.Wrap(squareDomain.ErrMalformedUpstreamResponse, "token response without merchant_id")
	}
	return pair, nil
}

// RefreshToken redeems a refresh token. The returned pair may carry no refresh token.
func (c *SquareClient) RefreshToken(ctx context.Context, refreshToken string) (*squareDomain.TokenPair, error) {
	return c.requestToken(ctx, tokenRequest{
		RefreshToken: refreshToken,
		GrantType:    grantRefreshToken,
	})
}

func (c *SquareClient) requestToken(ctx context.Context, body tokenRequest) (*squareDomain.TokenPair, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return nil, squareDomain.ErrConfigurationMissing
	}
	body.ClientID = c.cfg.ClientID
	body.ClientSecret = c.cfg.ClientSecret

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+tokenPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	c.setCommonHeaders(req)

	status, respBody, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", squareDomain.ErrTokenExchangeFailed, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %w", squareDomain.ErrTokenExchangeFailed,
			&squareDomain.UpstreamError{Operation: body.GrantType, Status: status, Body: respBody})
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil || tr.AccessToken == "" {
		return nil, apperrors.Wrap(squareDomain.ErrMalformedUpstreamResponse, "token response without access_token")
	}

	pair := &squareDomain.TokenPair{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		MerchantID:   tr.MerchantID,
	}
	switch {
	case tr.ExpiresAt != "":
		expiresAt, err := time.Parse(time.RFC3339, tr.ExpiresAt)
		if err != nil {
			return nil, apperrors.Wrap(squareDomain.ErrMalformedUpstreamResponse, "invalid expires_at")
		}
		pair.ExpiresAt = expiresAt.UTC()
	case tr.ExpiresIn > 0:
		pair.ExpiresAt = time.Now().UTC().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return pair, nil
}

// FetchLocations reads /v2/locations with the merchant's access token.
// Every failure is reported as ErrEligibilityUndetermined.
func (c *SquareClient) FetchLocations(ctx context.Context, accessToken string) (squareDomain.LocationsPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+locationsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", squareDomain.ErrEligibilityUndetermined, err)
	}
	c.setCommonHeaders(req)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	status, body, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", squareDomain.ErrEligibilityUndetermined, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %w", squareDomain.ErrEligibilityUndetermined,
			&squareDomain.UpstreamError{Operation: "locations", Status: status, Body: body})
	}

	payload, err := squareDomain.ParseLocations(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", squareDomain.ErrEligibilityUndetermined, err)
	}
	return payload, nil
}

// Do sends the relay request to BaseURL+Endpoint with a bearer token from source.
// Non-2xx responses are returned, not treated as errors; transport failures are ErrRelayFailed.
func (c *SquareClient) Do(
	ctx context.Context,
	source oauth2.TokenSource,
	relay *squareDomain.RelayRequest,
) (*squareDomain.RelayResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body io.Reader
	if relay.HasBody() {
		body = bytes.NewReader(relay.Body)
	}

	req, err := http.NewRequestWithContext(ctx, relay.Method, c.cfg.BaseURL+relay.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", squareDomain.ErrRelayFailed, err)
	}
	c.setCommonHeaders(req)

	client := &http.Client{
		Transport: &oauth2.Transport{Source: source, Base: c.httpClient.Transport},
		// Redirects are not followed: the bearer token must stay on the Square host.
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", squareDomain.ErrRelayFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", squareDomain.ErrRelayFailed, err)
	}

	return &squareDomain.RelayResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

func (c *SquareClient) setCommonHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Square-Version", c.cfg.Version)
}

func (c *SquareClient) send(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
