package usecase

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/allisson/squareconnect/internal/metrics"
	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

const metricsDomain = "square"

// exchangeUseCaseWithMetrics decorates ExchangeUseCase with metrics instrumentation.
type exchangeUseCaseWithMetrics struct {
	next    ExchangeUseCase
	metrics metrics.BusinessMetrics
}

// NewExchangeUseCaseWithMetrics wraps an ExchangeUseCase with metrics recording.
// An unsupported merchant counts as a success; the status label only tracks errors.
func NewExchangeUseCaseWithMetrics(useCase ExchangeUseCase, m metrics.BusinessMetrics) ExchangeUseCase {
	return &exchangeUseCaseWithMetrics{next: useCase, metrics: m}
}

func (e *exchangeUseCaseWithMetrics) Exchange(
	ctx context.Context,
	callerID, code string,
) (*squareDomain.ExchangeResult, error) {
	start := time.Now()
	result, err := e.next.Exchange(ctx, callerID, code)
	record(ctx, e.metrics, "exchange", start, err)
	return result, err
}

// tokenUseCaseWithMetrics decorates TokenUseCase; only forced refreshes are recorded.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{next: useCase, metrics: m}
}

func (t *tokenUseCaseWithMetrics) GetValidAccessToken(
	ctx context.Context,
	callerID, merchantID string,
) (string, bool, error) {
	return t.next.GetValidAccessToken(ctx, callerID, merchantID)
}

func (t *tokenUseCaseWithMetrics) Refresh(ctx context.Context, callerID, merchantID string) (time.Time, error) {
	start := time.Now()
	expiresAt, err := t.next.Refresh(ctx, callerID, merchantID)
	record(ctx, t.metrics, "refresh", start, err)
	return expiresAt, err
}

func (t *tokenUseCaseWithMetrics) TokenSource(ctx context.Context, callerID, merchantID string) oauth2.TokenSource {
	return t.next.TokenSource(ctx, callerID, merchantID)
}

type relayUseCaseWithMetrics struct {
	next    RelayUseCase
	metrics metrics.BusinessMetrics
}

// NewRelayUseCaseWithMetrics wraps a RelayUseCase with metrics recording.
func NewRelayUseCaseWithMetrics(useCase RelayUseCase, m metrics.BusinessMetrics) RelayUseCase {
	return &relayUseCaseWithMetrics{next: useCase, metrics: m}
}

func (r *relayUseCaseWithMetrics) Call(
	ctx context.Context,
	callerID string,
	req *squareDomain.RelayRequest,
) (*squareDomain.RelayResponse, error) {
	start := time.Now()
	resp, err := r.next.Call(ctx, callerID, req)
	record(ctx, r.metrics, "relay", start, err)
	return resp, err
}

type connectionUseCaseWithMetrics struct {
	next    ConnectionUseCase
	metrics metrics.BusinessMetrics
}

// NewConnectionUseCaseWithMetrics wraps a ConnectionUseCase; Disconnect is recorded.
func NewConnectionUseCaseWithMetrics(useCase ConnectionUseCase, m metrics.BusinessMetrics) ConnectionUseCase {
	return &connectionUseCaseWithMetrics{next: useCase, metrics: m}
}

func (c *connectionUseCaseWithMetrics) Status(
	ctx context.Context,
	callerID, merchantID string,
) (*squareDomain.Connection, error) {
	return c.next.Status(ctx, callerID, merchantID)
}

func (c *connectionUseCaseWithMetrics) List(ctx context.Context, callerID string) ([]squareDomain.Connection, error) {
	return c.next.List(ctx, callerID)
}

func (c *connectionUseCaseWithMetrics) Disconnect(ctx context.Context, callerID, merchantID string) error {
	start := time.Now()
	err := c.next.Disconnect(ctx, callerID, merchantID)
	record(ctx, c.metrics, "disconnect", start, err)
	return err
}

func record(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	m.RecordOperation(ctx, metricsDomain, operation, status)
	m.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}
