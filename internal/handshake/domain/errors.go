package domain

import (
	"github.com/allisson/squareconnect/internal/errors"
)

var (
	// ErrHandshakeInProgress indicates a callback is already being verified.
	ErrHandshakeInProgress = errors.Wrap(errors.ErrConflict, "handshake already in progress")

	// ErrInvalidTransition indicates Begin was called while a handshake is pending.
	ErrInvalidTransition = errors.Wrap(errors.ErrConflict, "invalid handshake transition")

	// ErrStateMismatch indicates the callback state is absent, expired, or does not match.
	ErrStateMismatch = errors.Wrap(errors.ErrForbidden, "oauth state mismatch")

	// ErrSessionRequired indicates an empty handshake session key.
	ErrSessionRequired = errors.Wrap(errors.ErrInvalidInput, "handshake session is required")
)

// ExchangeRejectedError is returned when the server refuses the code exchange.
// Message is the server's human-readable message.
type ExchangeRejectedError struct {
	Status  int
	Message string
}

func (e *ExchangeRejectedError) Error() string {
	return "exchange rejected: " + e.Message
}
