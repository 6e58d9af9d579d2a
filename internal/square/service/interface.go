// Package service implements the outbound Square calls: the OAuth token endpoint,
// the locations lookup used for eligibility and the authenticated API relay.
package service

import (
	"context"

	"golang.org/x/oauth2"

	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

// OAuthClient talks to the Square token endpoint.
type OAuthClient interface {
	// ExchangeCode redeems an authorization code with the authorization_code grant.
	ExchangeCode(ctx context.Context, code string) (*squareDomain.TokenPair, error)
	// RefreshToken redeems a refresh token with the refresh_token grant.
	RefreshToken(ctx context.Context, refreshToken string) (*squareDomain.TokenPair, error)
}

// LocationsClient reads the merchant's locations.
type LocationsClient interface {
	FetchLocations(ctx context.Context, accessToken string) (squareDomain.LocationsPayload, error)
}

// APIClient forwards relay requests to the Square API.
type APIClient interface {
	Do(ctx context.Context, source oauth2.TokenSource, req *squareDomain.RelayRequest) (*squareDomain.RelayResponse, error)
}
