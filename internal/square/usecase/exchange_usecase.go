package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
	squareService "github.com/allisson/squareconnect/internal/square/service"
)

type exchangeUseCase struct {
	oauthClient     squareService.OAuthClient
	locationsClient squareService.LocationsClient
	tokenRepo       TokenRepository
	policy          *squareDomain.EligibilityPolicy
	defaultTTL      time.Duration
	now             func() time.Time
	logger          *slog.Logger
}

// NewExchangeUseCase creates an ExchangeUseCase. defaultTTL is the token lifetime assumed
// when Square omits an expiry.
func NewExchangeUseCase(
	oauthClient squareService.OAuthClient,
	locationsClient squareService.LocationsClient,
	tokenRepo TokenRepository,
	policy *squareDomain.EligibilityPolicy,
	defaultTTL time.Duration,
	logger *slog.Logger,
) ExchangeUseCase {
	return &exchangeUseCase{
		oauthClient:     oauthClient,
		locationsClient: locationsClient,
		tokenRepo:       tokenRepo,
		policy:          policy,
		defaultTTL:      defaultTTL,
		now:             time.Now,
		logger:          logger,
	}
}

// Exchange performs these steps:
//  1. Redeems the code at the token endpoint (authorization_code grant)
//  2. Reads the merchant category with the new access token
//  3. Returns Unsupported without persisting when the category is not allowed
//  4. Upserts the TokenRecord keyed by (callerID, merchantID)
func (e *exchangeUseCase) Exchange(
	ctx context.Context,
	callerID, code string,
) (*squareDomain.ExchangeResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, squareDomain.ErrCodeRequired
	}
	if strings.TrimSpace(callerID) == "" {
		return nil, squareDomain.ErrCallerIDRequired
	}

	pair, err := e.oauthClient.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	key := squareDomain.RecordKey{CallerID: callerID, MerchantID: pair.MerchantID}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", squareDomain.ErrMalformedUpstreamResponse, err)
	}

	decision := e.decide(ctx, pair)
	if !decision.Eligible {
		e.logger.Info("square merchant not supported",
			slog.String("merchant_id", pair.MerchantID),
			slog.String("mcc", decision.CategoryCode),
		)
		return squareDomain.Unsupported(decision.CategoryCode), nil
	}

	now := e.now()
	record := &squareDomain.TokenRecord{
		CallerID:     callerID,
		MerchantID:   pair.MerchantID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiryOr(now, e.defaultTTL),
	}
	if pair.ExpiresAt.IsZero() {
		e.logger.Warn("square token response has no expiry, using default",
			slog.String("merchant_id", pair.MerchantID),
			slog.Duration("ttl", e.defaultTTL),
		)
	}

	if err := e.tokenRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	return squareDomain.Connected(pair.MerchantID, decision.CategoryCode), nil
}

// decide denies the merchant when its category cannot be read.
func (e *exchangeUseCase) decide(ctx context.Context, pair *squareDomain.TokenPair) squareDomain.EligibilityDecision {
	payload, err := e.locationsClient.FetchLocations(ctx, pair.AccessToken)
	if err != nil {
		e.logger.Warn("square merchant eligibility undetermined",
			slog.String("merchant_id", pair.MerchantID),
			slog.Any("error", err),
		)
		return squareDomain.EligibilityDecision{}
	}
	return e.policy.Decide(squareDomain.CategoryCodeOf(payload))
}
