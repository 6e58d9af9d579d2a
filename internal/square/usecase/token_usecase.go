package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/allisson/squareconnect/internal/database"
	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
	squareService "github.com/allisson/squareconnect/internal/square/service"
)

// defaultRefreshTimeout bounds one refresh flight: row lock, token call and update.
const defaultRefreshTimeout = 30 * time.Second

// tokenUseCase serializes refreshes per record: singleflight collapses concurrent
// refreshes in this process and GetForUpdate holds the row lock across processes.
type tokenUseCase struct {
	txManager   database.TxManager
	tokenRepo   TokenRepository
	oauthClient squareService.OAuthClient
	margin      time.Duration
	defaultTTL  time.Duration
	now         func() time.Time
	logger      *slog.Logger

	refreshGroup   singleflight.Group
	refreshTimeout time.Duration
}

// NewTokenUseCase creates a TokenUseCase. margin is how long before expiry a token is
// refreshed; defaultTTL applies when Square omits an expiry.
func NewTokenUseCase(
	txManager database.TxManager,
	tokenRepo TokenRepository,
	oauthClient squareService.OAuthClient,
	margin, defaultTTL time.Duration,
	logger *slog.Logger,
) TokenUseCase {
	return &tokenUseCase{
		txManager:   txManager,
		tokenRepo:   tokenRepo,
		oauthClient: oauthClient,
		margin:      margin,
		defaultTTL:  defaultTTL,
		now:         time.Now,
		logger:      logger,

		refreshTimeout: defaultRefreshTimeout,
	}
}

func (t *tokenUseCase) GetValidAccessToken(
	ctx context.Context,
	callerID, merchantID string,
) (string, bool, error) {
	record, err := t.validRecord(ctx, squareDomain.RecordKey{CallerID: callerID, MerchantID: merchantID})
	if err != nil {
		if errors.Is(err, squareDomain.ErrNotConnected) {
			return "", false, nil
		}
		return "", false, err
	}
	return record.AccessToken, true, nil
}

func (t *tokenUseCase) Refresh(ctx context.Context, callerID, merchantID string) (time.Time, error) {
	key := squareDomain.RecordKey{CallerID: callerID, MerchantID: merchantID}
	if err := key.Validate(); err != nil {
		return time.Time{}, err
	}

	record, err := t.refresh(ctx, key, true)
	if err != nil {
		if errors.Is(err, squareDomain.ErrRecordNotFound) {
			return time.Time{}, squareDomain.ErrNotConnected
		}
		return time.Time{}, err
	}
	return record.ExpiresAt, nil
}

func (t *tokenUseCase) TokenSource(ctx context.Context, callerID, merchantID string) oauth2.TokenSource {
	return &recordTokenSource{
		ctx:     ctx,
		useCase: t,
		key:     squareDomain.RecordKey{CallerID: callerID, MerchantID: merchantID},
	}
}

// validRecord returns a record whose access token is outside the refresh margin.
// ErrNotConnected covers both a missing record and a rejected refresh.
func (t *tokenUseCase) validRecord(
	ctx context.Context,
	key squareDomain.RecordKey,
) (*squareDomain.TokenRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	record, err := t.tokenRepo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, squareDomain.ErrRecordNotFound) {
			return nil, squareDomain.ErrNotConnected
		}
		return nil, err
	}
	if !record.IsExpired(t.now(), t.margin) {
		return record, nil
	}

	record, err = t.refresh(ctx, key, false)
	switch {
	case err == nil:
		return record, nil
	case errors.Is(err, squareDomain.ErrRecordNotFound):
		return nil, squareDomain.ErrNotConnected
	case errors.Is(err, squareDomain.ErrTokenExchangeFailed):
		t.logger.Warn("square token refresh rejected",
			slog.String("merchant_id", key.MerchantID),
			slog.Any("error", err),
		)
		return nil, squareDomain.ErrNotConnected
	default:
		return nil, err
	}
}

// refresh redeems the stored refresh token under the record lock. Unless force is set,
// a record found fresh after acquiring the lock is returned as is.
func (t *tokenUseCase) refresh(
	ctx context.Context,
	key squareDomain.RecordKey,
	force bool,
) (*squareDomain.TokenRecord, error) {
	flightKey := key.Path()
	if force {
		flightKey += "#force"
	}

	// The flight outlives the caller that started it; each caller stops waiting
	// when its own ctx ends.
	ch := t.refreshGroup.DoChan(flightKey, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.refreshTimeout)
		defer cancel()

		var refreshed *squareDomain.TokenRecord
		err := t.txManager.WithTx(flightCtx, func(ctx context.Context) error {
			record, err := t.tokenRepo.GetForUpdate(ctx, key)
			if err != nil {
				return err
			}
			if !force && !record.IsExpired(t.now(), t.margin) {
				refreshed = record
				return nil
			}

			pair, err := t.oauthClient.RefreshToken(ctx, record.RefreshToken)
			if err != nil {
				return refreshFailure(err)
			}

			record.ApplyRefresh(pair, pair.ExpiryOr(t.now(), t.defaultTTL))
			if err := t.tokenRepo.Update(ctx, record); err != nil {
				return err
			}
			refreshed = record
			return nil
		})
		return refreshed, err
	})

	var v any
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		v = res.Val
	}

	record := *v.(*squareDomain.TokenRecord)
	return &record, nil
}

// refreshFailure classifies refresh errors as ErrTokenExchangeFailed, except for
// missing configuration.
func refreshFailure(err error) error {
	if errors.Is(err, squareDomain.ErrTokenExchangeFailed) || errors.Is(err, squareDomain.ErrConfigurationMissing) {
		return err
	}
	return fmt.Errorf("%w: %w", squareDomain.ErrTokenExchangeFailed, err)
}

type recordTokenSource struct {
	ctx     context.Context
	useCase *tokenUseCase
	key     squareDomain.RecordKey
}

func (s *recordTokenSource) Token() (*oauth2.Token, error) {
	record, err := s.useCase.validRecord(s.ctx, s.key)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: record.AccessToken,
		TokenType:   "Bearer",
		Expiry:      record.ExpiresAt.Add(-s.useCase.margin),
	}, nil
}
