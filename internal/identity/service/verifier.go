// Package service verifies caller ID tokens against the identity provider's signing keys.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	identityDomain "github.com/allisson/squareconnect/internal/identity/domain"
)

// Verifier turns a bearer credential into a Caller.
type Verifier interface {
	// Verify fails with ErrInvalidCredential for any token that is not a valid,
	// unexpired ID token for the configured issuer and audience.
	Verify(ctx context.Context, rawToken string) (*identityDomain.Caller, error)
}

// Config describes the accepted ID tokens.
type Config struct {
	IssuerURL string
	// Audience is the Firebase project id.
	Audience string
	JWKSURL  string
}

type idTokenClaims struct {
	Subject       string `json:"sub"`
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier fetches signing keys from cfg.JWKSURL; ctx bounds the background key refreshes.
func NewVerifier(ctx context.Context, cfg Config) Verifier {
	return NewVerifierWithKeySet(oidc.NewRemoteKeySet(ctx, cfg.JWKSURL), cfg, nil)
}

// NewVerifierWithKeySet builds a Verifier over an explicit key set. now defaults to time.Now.
func NewVerifierWithKeySet(keySet oidc.KeySet, cfg Config, now func() time.Time) Verifier {
	return &oidcVerifier{
		verifier: oidc.NewVerifier(cfg.IssuerURL, keySet, &oidc.Config{
			ClientID:             cfg.Audience,
			SupportedSigningAlgs: []string{oidc.RS256},
			Now:                  now,
		}),
	}
}

func (v *oidcVerifier) Verify(ctx context.Context, rawToken string) (*identityDomain.Caller, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, identityDomain.ErrMissingCredential
	}

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", identityDomain.ErrInvalidCredential, err)
	}

	var claims idTokenClaims
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %w", identityDomain.ErrInvalidCredential, err)
	}

	id := claims.Subject
	if id == "" {
		id = claims.UserID
	}
	if id == "" || strings.Contains(id, "/") {
		return nil, identityDomain.ErrInvalidCredential
	}

	return &identityDomain.Caller{
		ID:            id,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}
