// Package domain defines the verified caller identity and its errors.
package domain

import (
	"github.com/allisson/squareconnect/internal/errors"
)

// Caller is the verified identity behind a bearer credential. ID partitions the
// credential store.
type Caller struct {
	ID            string
	Email         string
	EmailVerified bool
}

var (
	// ErrMissingCredential indicates no bearer credential was presented.
	ErrMissingCredential = errors.Wrap(errors.ErrUnauthorized, "No authorization token provided")

	// ErrInvalidCredential indicates the credential failed verification.
	ErrInvalidCredential = errors.Wrap(errors.ErrUnauthorized, "Invalid or expired token")
)
