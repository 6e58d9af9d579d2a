// Package http provides the gin middleware that authenticates callers by ID token
// and rate limits them.
package http

import (
	"context"

	identityDomain "github.com/allisson/squareconnect/internal/identity/domain"
)

// callerKey is a context key type for storing the verified caller.
type callerKey struct{}

// WithCaller stores a verified caller in the context.
func WithCaller(ctx context.Context, caller *identityDomain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// GetCaller retrieves the verified caller from the context.
// Returns (caller, true) if present, or (nil, false) if AuthenticationMiddleware did not run.
func GetCaller(ctx context.Context) (*identityDomain.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(*identityDomain.Caller)
	return caller, ok && caller != nil
}
