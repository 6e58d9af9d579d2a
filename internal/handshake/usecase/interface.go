// Package usecase drives the client-side Square connection handshake.
package usecase

import (
	"context"
	"time"

	handshakeDomain "github.com/allisson/squareconnect/internal/handshake/domain"
)

// StateStore holds the pending CSRF state of a handshake, scoped to one session.
type StateStore interface {
	Put(ctx context.Context, session, state string, ttl time.Duration) error
	// Take reads and deletes the state atomically. ok is false when absent or expired.
	Take(ctx context.Context, session string) (state string, ok bool, err error)
}

// MarkerStore persists the local connection marker.
type MarkerStore interface {
	Load() (*handshakeDomain.Marker, error)
	Save(marker handshakeDomain.Marker) error
	Clear() error
}

// ExchangeClient sends the authorization code to the server.
type ExchangeClient interface {
	Exchange(ctx context.Context, idToken, code string) (*handshakeDomain.ExchangeOutcome, error)
}

// StatusClient asks the server whether a merchant is still connected.
type StatusClient interface {
	IsConnected(ctx context.Context, idToken, merchantID string) (bool, error)
}

// IdentitySource yields the caller's ID token once the caller is signed in.
type IdentitySource interface {
	Await(ctx context.Context) (string, error)
}

// IdentityFunc adapts a function to IdentitySource.
type IdentityFunc func(ctx context.Context) (string, error)

// Await calls f.
func (f IdentityFunc) Await(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticIdentity is an IdentitySource for an ID token already at hand.
func StaticIdentity(idToken string) IdentitySource {
	return IdentityFunc(func(context.Context) (string, error) {
		return idToken, nil
	})
}
