// Package usecase implements the Square connection lifecycle: exchanging authorization
// codes behind the merchant category gate, keeping access tokens fresh, relaying API
// calls and managing stored connections.
package usecase

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

// TokenRepository defines persistence operations for Square token records.
// Implementations must support transaction-aware operations via context propagation.
type TokenRepository interface {
	// Get returns ErrRecordNotFound when no record exists for key.
	Get(ctx context.Context, key squareDomain.RecordKey) (*squareDomain.TokenRecord, error)

	// GetForUpdate is Get plus a row lock held until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, key squareDomain.RecordKey) (*squareDomain.TokenRecord, error)

	// Upsert creates the record or replaces its tokens, keeping created_at.
	Upsert(ctx context.Context, record *squareDomain.TokenRecord) error

	// Update rewrites tokens and expiry of an existing record.
	Update(ctx context.Context, record *squareDomain.TokenRecord) error

	Delete(ctx context.Context, key squareDomain.RecordKey) error

	ListByCaller(ctx context.Context, callerID string) ([]*squareDomain.TokenRecord, error)
}

// ExchangeUseCase redeems authorization codes.
type ExchangeUseCase interface {
	// Exchange redeems code for tokens, checks the merchant category against the
	// allow-list and stores the tokens only for eligible merchants.
	//
	// A merchant whose category cannot be read is reported as unsupported.
	// Upstream rejections return ErrTokenExchangeFailed; nothing is stored on any
	// failure path.
	Exchange(ctx context.Context, callerID, code string) (*squareDomain.ExchangeResult, error)
}

// TokenUseCase hands out valid access tokens, refreshing them when needed.
type TokenUseCase interface {
	// GetValidAccessToken returns the stored access token, refreshing it first when it
	// expires within the refresh margin. ok is false when the caller has no record for
	// the merchant or the refresh was rejected; err is only set for store failures.
	GetValidAccessToken(ctx context.Context, callerID, merchantID string) (token string, ok bool, err error)

	// Refresh forces a refresh and returns the new expiry.
	// Returns ErrNotConnected without a record and ErrTokenExchangeFailed when Square
	// rejects the refresh token.
	Refresh(ctx context.Context, callerID, merchantID string) (time.Time, error)

	// TokenSource adapts GetValidAccessToken for oauth2 transports. Token() fails with
	// ErrNotConnected when no valid token is available.
	TokenSource(ctx context.Context, callerID, merchantID string) oauth2.TokenSource
}

// RelayUseCase forwards API calls to Square with the caller's stored credential.
type RelayUseCase interface {
	// Call returns the upstream response whatever its status. It fails with
	// ErrNotConnected before any upstream call when the caller has no valid token
	// for the merchant, and with ErrRelayFailed when the call cannot be completed.
	Call(ctx context.Context, callerID string, req *squareDomain.RelayRequest) (*squareDomain.RelayResponse, error)
}

// ConnectionUseCase exposes the non-secret view of stored connections.
type ConnectionUseCase interface {
	// Status reports whether the caller currently holds a record for merchantID.
	Status(ctx context.Context, callerID, merchantID string) (*squareDomain.Connection, error)

	List(ctx context.Context, callerID string) ([]squareDomain.Connection, error)

	// Disconnect deletes the record. Returns ErrRecordNotFound when there is none.
	Disconnect(ctx context.Context, callerID, merchantID string) error
}
