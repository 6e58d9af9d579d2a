package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

type exchangeFixture struct {
	oauth     *mockOAuthClient
	locations *mockLocationsClient
	repo      *mockTokenRepository
	useCase   *exchangeUseCase
}

func newExchangeFixture(now time.Time) *exchangeFixture {
	f := &exchangeFixture{
		oauth:     &mockOAuthClient{},
		locations: &mockLocationsClient{},
		repo:      &mockTokenRepository{},
	}
	uc := NewExchangeUseCase(
		f.oauth,
		f.locations,
		f.repo,
		squareDomain.NewEligibilityPolicy(nil),
		30*24*time.Hour,
		discardLogger(),
	).(*exchangeUseCase)
	uc.now = func() time.Time { return now }
	f.useCase = uc
	return f
}

func (f *exchangeFixture) assertExpectations(t *testing.T) {
	f.oauth.AssertExpectations(t)
	f.locations.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestExchangeUseCase_Exchange(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pair := &squareDomain.TokenPair{
		AccessToken:  "EAAA-access",
		RefreshToken: "EQAA-refresh",
		MerchantID:   "M1",
		ExpiresAt:    now.Add(30 * 24 * time.Hour),
	}

	t.Run("Success_AllowListedMerchantIsStored", func(t *testing.T) {
		f := newExchangeFixture(now)

		f.oauth.On("ExchangeCode", ctx, "abc123").Return(pair, nil).Once()
		f.locations.On("FetchLocations", ctx, "EAAA-access").
			Return(squareDomain.SingleLocation{Location: squareDomain.Location{ID: "L1", MCC: "5812"}}, nil).
			Once()
		f.repo.On("Upsert", ctx, mock.MatchedBy(func(r *squareDomain.TokenRecord) bool {
			return r.CallerID == "U1" &&
				r.MerchantID == "M1" &&
				r.AccessToken == "EAAA-access" &&
				r.RefreshToken == "EQAA-refresh" &&
				r.ExpiresAt.Equal(pair.ExpiresAt)
		})).Return(nil).Once()

		result, err := f.useCase.Exchange(ctx, "U1", "abc123")
		require.NoError(t, err)
		assert.Equal(t, squareDomain.StatusConnected, result.Status)
		assert.Equal(t, "M1", result.MerchantID)
		assert.Equal(t, "5812", result.CategoryCode)
		f.assertExpectations(t)
	})

	t.Run("Success_MissingExpiryFallsBackToDefault", func(t *testing.T) {
		f := newExchangeFixture(now)
		noExpiry := *pair
		noExpiry.ExpiresAt = time.Time{}

		f.oauth.On("ExchangeCode", ctx, "abc123").Return(&noExpiry, nil).Once()
		f.locations.On("FetchLocations", ctx, "EAAA-access").
			Return(squareDomain.LocationList{Locations: []squareDomain.Location{{MCC: "7297"}, {MCC: "9999"}}}, nil).
			Once()
		f.repo.On("Upsert", ctx, mock.MatchedBy(func(r *squareDomain.TokenRecord) bool {
			return r.ExpiresAt.Equal(now.Add(30 * 24 * time.Hour))
		})).Return(nil).Once()

		result, err := f.useCase.Exchange(ctx, "U1", "abc123")
		require.NoError(t, err)
		assert.True(t, result.Status == squareDomain.StatusConnected)
		f.assertExpectations(t)
	})

	t.Run("Unsupported_CategoryOutsideAllowList", func(t *testing.T) {
		f := newExchangeFixture(now)

		f.oauth.On("ExchangeCode", ctx, "abc123").Return(pair, nil).Once()
		f.locations.On("FetchLocations", ctx, "EAAA-access").
			Return(squareDomain.SingleLocation{Location: squareDomain.Location{MCC: "9999"}}, nil).
			Once()

		result, err := f.useCase.Exchange(ctx, "U1", "abc123")
		require.NoError(t, err)
		assert.Equal(t, squareDomain.StatusUnsupported, result.Status)
		assert.Equal(t, "9999", result.CategoryCode)
		assert.Empty(t, result.MerchantID)
		f.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("Unsupported_EligibilityLookupFails", func(t *testing.T) {
		f := newExchangeFixture(now)

		f.oauth.On("ExchangeCode", ctx, "abc123").Return(pair, nil).Once()
		f.locations.On("FetchLocations", ctx, "EAAA-access").
			Return(nil, squareDomain.ErrEligibilityUndetermined).
			Once()

		result, err := f.useCase.Exchange(ctx, "U1", "abc123")
		require.NoError(t, err)
		assert.Equal(t, squareDomain.StatusUnsupported, result.Status)
		assert.Empty(t, result.CategoryCode)
		f.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Unsupported_NoLocations", func(t *testing.T) {
		f := newExchangeFixture(now)

		f.oauth.On("ExchangeCode", ctx, "abc123").Return(pair, nil).Once()
		f.locations.On("FetchLocations", ctx, "EAAA-access").
			Return(squareDomain.LocationList{}, nil).
			Once()

		result, err := f.useCase.Exchange(ctx, "U1", "abc123")
		require.NoError(t, err)
		assert.Equal(t, squareDomain.StatusUnsupported, result.Status)
		f.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Error_ReusedCode", func(t *testing.T) {
		f := newExchangeFixture(now)
		upstream := &squareDomain.UpstreamError{Operation: "token exchange", Status: 400}

		f.oauth.On("ExchangeCode", ctx, "abc123").
			Return(nil, errors.Join(squareDomain.ErrTokenExchangeFailed, upstream)).
			Once()

		result, err := f.useCase.Exchange(ctx, "U1", "abc123")
		assert.Nil(t, result)
		assert.ErrorIs(t, err, squareDomain.ErrTokenExchangeFailed)
		f.locations.AssertNotCalled(t, "FetchLocations", mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Error_EmptyCode", func(t *testing.T) {
		f := newExchangeFixture(now)

		_, err := f.useCase.Exchange(ctx, "U1", "  ")
		assert.ErrorIs(t, err, squareDomain.ErrCodeRequired)
		f.oauth.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
	})

	t.Run("Error_MerchantIDUnusableAsKey", func(t *testing.T) {
		f := newExchangeFixture(now)
		bad := *pair
		bad.MerchantID = "M1/../U2"

		f.oauth.On("ExchangeCode", ctx, "abc123").Return(&bad, nil).Once()

		_, err := f.useCase.Exchange(ctx, "U1", "abc123")
		assert.ErrorIs(t, err, squareDomain.ErrMalformedUpstreamResponse)
		f.locations.AssertNotCalled(t, "FetchLocations", mock.Anything, mock.Anything)
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		f := newExchangeFixture(now)
		storeErr := errors.New("connection refused")

		f.oauth.On("ExchangeCode", ctx, "abc123").Return(pair, nil).Once()
		f.locations.On("FetchLocations", ctx, "EAAA-access").
			Return(squareDomain.SingleLocation{Location: squareDomain.Location{MCC: "5814"}}, nil).
			Once()
		f.repo.On("Upsert", ctx, mock.Anything).Return(storeErr).Once()

		_, err := f.useCase.Exchange(ctx, "U1", "abc123")
		assert.ErrorIs(t, err, storeErr)
	})
}
