// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"

	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

// MockExchangeUseCase is a mock implementation of ExchangeUseCase for testing.
type MockExchangeUseCase struct {
	mock.Mock
}

// Exchange mocks the Exchange method of ExchangeUseCase.
func (m *MockExchangeUseCase) Exchange(
	ctx context.Context,
	callerID, code string,
) (*squareDomain.ExchangeResult, error) {
	args := m.Called(ctx, callerID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*squareDomain.ExchangeResult), args.Error(1)
}

// MockTokenUseCase is a mock implementation of TokenUseCase for testing.
type MockTokenUseCase struct {
	mock.Mock
}

// GetValidAccessToken mocks the GetValidAccessToken method of TokenUseCase.
func (m *MockTokenUseCase) GetValidAccessToken(
	ctx context.Context,
	callerID, merchantID string,
) (string, bool, error) {
	args := m.Called(ctx, callerID, merchantID)
	return args.String(0), args.Bool(1), args.Error(2)
}

// Refresh mocks the Refresh method of TokenUseCase.
func (m *MockTokenUseCase) Refresh(ctx context.Context, callerID, merchantID string) (time.Time, error) {
	args := m.Called(ctx, callerID, merchantID)
	return args.Get(0).(time.Time), args.Error(1)
}

// TokenSource mocks the TokenSource method of TokenUseCase.
func (m *MockTokenUseCase) TokenSource(ctx context.Context, callerID, merchantID string) oauth2.TokenSource {
	args := m.Called(ctx, callerID, merchantID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(oauth2.TokenSource)
}

// MockRelayUseCase is a mock implementation of RelayUseCase for testing.
type MockRelayUseCase struct {
	mock.Mock
}

// Call mocks the Call method of RelayUseCase.
func (m *MockRelayUseCase) Call(
	ctx context.Context,
	callerID string,
	req *squareDomain.RelayRequest,
) (*squareDomain.RelayResponse, error) {
	args := m.Called(ctx, callerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*squareDomain.RelayResponse), args.Error(1)
}

// MockConnectionUseCase is a mock implementation of ConnectionUseCase for testing.
type MockConnectionUseCase struct {
	mock.Mock
}

// Status mocks the Status method of ConnectionUseCase.
func (m *MockConnectionUseCase) Status(
	ctx context.Context,
	callerID, merchantID string,
) (*squareDomain.Connection, error) {
	args := m.Called(ctx, callerID, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*squareDomain.Connection), args.Error(1)
}

// List mocks the List method of ConnectionUseCase.
func (m *MockConnectionUseCase) List(ctx context.Context, callerID string) ([]squareDomain.Connection, error) {
	args := m.Called(ctx, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]squareDomain.Connection), args.Error(1)
}

// Disconnect mocks the Disconnect method of ConnectionUseCase.
func (m *MockConnectionUseCase) Disconnect(ctx context.Context, callerID, merchantID string) error {
	args := m.Called(ctx, callerID, merchantID)
	return args.Error(0)
}
