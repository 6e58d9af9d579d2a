package domain

import (
	"encoding/json"
	"fmt"

	"github.com/allisson/squareconnect/internal/errors"
)

var (
	// ErrRecordNotFound indicates no token record exists for the key.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "square token record not found")

	// ErrNotConnected indicates no usable access token exists for the caller and merchant.
	ErrNotConnected = errors.Wrap(errors.ErrUnauthorized, "square account not connected")

	// ErrTokenExchangeFailed indicates Square rejected an authorization code or refresh token.
	ErrTokenExchangeFailed = errors.Wrap(errors.ErrInvalidInput, "square token exchange failed")

	// ErrEligibilityUndetermined indicates the merchant category could not be read.
	ErrEligibilityUndetermined = errors.Wrap(errors.ErrUnavailable, "merchant eligibility undetermined")

	// ErrRelayFailed indicates the relayed call could not be completed.
	ErrRelayFailed = errors.Wrap(errors.ErrUnavailable, "square api relay failed")

	// ErrConfigurationMissing indicates the Square client credentials are not configured.
	ErrConfigurationMissing = errors.Wrap(errors.ErrUnavailable, "square configuration is missing")

	// ErrCodeRequired indicates an empty authorization code.
	ErrCodeRequired = errors.Wrap(errors.ErrInvalidInput, "authorization code is required")

	// ErrCallerIDRequired indicates a missing or malformed caller id.
	ErrCallerIDRequired = errors.Wrap(errors.ErrInvalidInput, "caller id is required")

	// ErrMerchantIDRequired indicates a missing or malformed merchant id.
	ErrMerchantIDRequired = errors.Wrap(errors.ErrInvalidInput, "merchant id is required")

	// ErrEndpointRequired indicates a missing relay endpoint.
	ErrEndpointRequired = errors.Wrap(errors.ErrInvalidInput, "api endpoint is required")

	// ErrInvalidEndpoint indicates a relay endpoint that is not a path on the Square API.
	ErrInvalidEndpoint = errors.Wrap(errors.ErrInvalidInput, "api endpoint must be a path")

	// ErrMalformedUpstreamResponse indicates Square answered with an unexpected shape.
	ErrMalformedUpstreamResponse = errors.New("malformed square response")
)

// UpstreamError carries a non-2xx Square response for diagnostics.
// Body holds Square's error payload; it never contains tokens.
type UpstreamError struct {
	Operation string
	Status    int
	Body      []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("square %s returned status %d", e.Operation, e.Status)
}

// Details returns the upstream body as JSON when it parses, otherwise as text.
func (e *UpstreamError) Details() any {
	return DetailsOf(e.Body)
}

// DetailsOf decodes a response body for the {error, details} payloads.
func DetailsOf(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}
