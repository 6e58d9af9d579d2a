package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"

	"github.com/allisson/squareconnect/internal/metrics"
	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockTokenRepository is a mock implementation of TokenRepository for testing.
type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Get(
	ctx context.Context,
	key squareDomain.RecordKey,
) (*squareDomain.TokenRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*squareDomain.TokenRecord), args.Error(1)
}

func (m *mockTokenRepository) GetForUpdate(
	ctx context.Context,
	key squareDomain.RecordKey,
) (*squareDomain.TokenRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*squareDomain.TokenRecord), args.Error(1)
}

func (m *mockTokenRepository) Upsert(ctx context.Context, record *squareDomain.TokenRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockTokenRepository) Update(ctx context.Context, record *squareDomain.TokenRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockTokenRepository) Delete(ctx context.Context, key squareDomain.RecordKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockTokenRepository) ListByCaller(
	ctx context.Context,
	callerID string,
) ([]*squareDomain.TokenRecord, error) {
	args := m.Called(ctx, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*squareDomain.TokenRecord), args.Error(1)
}

// mockOAuthClient is a mock implementation of OAuthClient for testing.
type mockOAuthClient struct {
	mock.Mock
}

func (m *mockOAuthClient) ExchangeCode(ctx context.Context, code string) (*squareDomain.TokenPair, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*squareDomain.TokenPair), args.Error(1)
}

func (m *mockOAuthClient) RefreshToken(ctx context.Context, refreshToken string) (*squareDomain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*squareDomain.TokenPair), args.Error(1)
}

// mockLocationsClient is a mock implementation of LocationsClient for testing.
type mockLocationsClient struct {
	mock.Mock
}

func (m *mockLocationsClient) FetchLocations(
	ctx context.Context,
	accessToken string,
) (squareDomain.LocationsPayload, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(squareDomain.LocationsPayload), args.Error(1)
}

// mockAPIClient is a mock implementation of APIClient for testing.
type mockAPIClient struct {
	mock.Mock
}

func (m *mockAPIClient) Do(
	ctx context.Context,
	source oauth2.TokenSource,
	req *squareDomain.RelayRequest,
) (*squareDomain.RelayResponse, error) {
	args := m.Called(ctx, source, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*squareDomain.RelayResponse), args.Error(1)
}

// mockTxManager runs fn inline and counts transactions.
type mockTxManager struct {
	calls atomic.Int32
}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls.Add(1)
	return fn(ctx)
}

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)
