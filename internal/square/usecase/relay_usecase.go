package usecase

import (
	"context"

	"golang.org/x/oauth2"

	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
	squareService "github.com/allisson/squareconnect/internal/square/service"
)

type relayUseCase struct {
	tokenUseCase TokenUseCase
	apiClient    squareService.APIClient
}

// NewRelayUseCase creates a RelayUseCase.
func NewRelayUseCase(tokenUseCase TokenUseCase, apiClient squareService.APIClient) RelayUseCase {
	return &relayUseCase{tokenUseCase: tokenUseCase, apiClient: apiClient}
}

// Call resolves the credential from the caller's own record, so a caller can only
// reach merchants they connected themselves.
func (r *relayUseCase) Call(
	ctx context.Context,
	callerID string,
	req *squareDomain.RelayRequest,
) (*squareDomain.RelayResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := squareDomain.RecordKey{CallerID: callerID, MerchantID: req.MerchantID}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	source := oauth2.ReuseTokenSource(nil, r.tokenUseCase.TokenSource(ctx, callerID, req.MerchantID))
	if _, err := source.Token(); err != nil {
		return nil, err
	}

	return r.apiClient.Do(ctx, source, req)
}
