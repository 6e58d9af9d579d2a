// Package dto provides data transfer objects for the Square endpoints.
package dto

import (
	"encoding/json"

	validation "github.com/jellydator/validation"

	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
	customValidation "github.com/allisson/squareconnect/internal/validation"
)

// ExchangeTokenRequest carries the authorization code from the OAuth callback.
type ExchangeTokenRequest struct {
	Code string `json:"code"`
}

// Validate checks the code is present.
func (r *ExchangeTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code, validation.Required, customValidation.NotBlank),
	)
}

// RefreshTokenRequest names the merchant whose token is refreshed.
type RefreshTokenRequest struct {
	MerchantID string `json:"merchantId"`
}

// Validate checks the merchant id.
func (r *RefreshTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.MerchantID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.PathSegment,
		),
	)
}

// RelayRequest is a Square API call to forward.
type RelayRequest struct {
	MerchantID string          `json:"merchantId" form:"merchantId"`
	Endpoint   string          `json:"endpoint"   form:"endpoint"`
	Method     string          `json:"method"     form:"-"`
	Body       json.RawMessage `json:"body"       form:"-"`
}

// ToDomain converts the request.
func (r *RelayRequest) ToDomain() *squareDomain.RelayRequest {
	return &squareDomain.RelayRequest{
		MerchantID: r.MerchantID,
		Endpoint:   r.Endpoint,
		Method:     r.Method,
		Body:       r.Body,
	}
}
