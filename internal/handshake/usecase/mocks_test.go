package usecase

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	handshakeDomain "github.com/allisson/squareconnect/internal/handshake/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockExchangeClient struct {
	mock.Mock
}

func (m *mockExchangeClient) Exchange(
	ctx context.Context,
	idToken, code string,
) (*handshakeDomain.ExchangeOutcome, error) {
	args := m.Called(ctx, idToken, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*handshakeDomain.ExchangeOutcome), args.Error(1)
}

type mockStatusClient struct {
	mock.Mock
}

func (m *mockStatusClient) IsConnected(ctx context.Context, idToken, merchantID string) (bool, error) {
	args := m.Called(ctx, idToken, merchantID)
	return args.Bool(0), args.Error(1)
}

type mockMarkerStore struct {
	mock.Mock
}

func (m *mockMarkerStore) Load() (*handshakeDomain.Marker, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*handshakeDomain.Marker), args.Error(1)
}

func (m *mockMarkerStore) Save(marker handshakeDomain.Marker) error {
	return m.Called(marker).Error(0)
}

func (m *mockMarkerStore) Clear() error {
	return m.Called().Error(0)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
