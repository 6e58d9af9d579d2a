// Package domain defines the client-side Square connection handshake: its states,
// callback parameters, results and the locally kept connection marker.
package domain

import (
	"net/url"
	"time"
)

// State is a step of the connection handshake.
type State string

const (
	StateIdle             State = "idle"
	StateRedirecting      State = "redirecting"
	StateAwaitingCallback State = "awaiting_callback"
	StateVerifying        State = "verifying"
	StateConnected        State = "connected"
	StateUnsupported      State = "unsupported"
	StateFailed           State = "failed"
)

// Terminal reports whether no further transition happens from s without a restart.
func (s State) Terminal() bool {
	switch s {
	case StateConnected, StateUnsupported, StateFailed:
		return true
	}
	return false
}

// Human-readable messages attached to terminal results.
const (
	MessageVerifying          = "Validating your business..."
	MessageConnected          = "Your Square account is now connected."
	MessageUnsupported        = "We do not currently support this type of business."
	MessageMissingParams      = "Missing required OAuth parameters"
	MessageStateMismatch      = "Invalid state parameter - possible CSRF attack"
	MessageIdentityMissing    = "Failed to get authentication token"
	MessageExchangeFailed     = "Failed to exchange token"
	MessageStateUnverifiable  = "Could not verify the OAuth state"
	MessageMarkerNotPersisted = "Failed to save the Square connection"
)

// CallbackParams are the query parameters Square appends to the redirect URI.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackParamsFromQuery reads the callback parameters from a redirect query.
func CallbackParamsFromQuery(q url.Values) CallbackParams {
	return CallbackParams{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// ExchangeOutcome is the server's answer to an authorization code exchange.
type ExchangeOutcome struct {
	Supported    bool
	MerchantID   string
	CategoryCode string
}

// Result is the terminal outcome of a handshake.
type Result struct {
	State        State
	MerchantID   string
	CategoryCode string
	Message      string
	// Err is the underlying cause of a failed handshake. It is never shown to the user.
	Err error
}

// Marker records locally that a merchant was connected. It never holds tokens.
type Marker struct {
	MerchantID  string    `json:"merchantId"`
	IsConnected bool      `json:"isConnected"`
	ConnectedAt time.Time `json:"connectedAt"`
}
