package domain

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// RelayRequest is a Square API call made on behalf of a caller.
type RelayRequest struct {
	MerchantID string
	Endpoint   string
	Method     string
	Body       json.RawMessage
}

// Normalize upper-cases the method, defaulting to GET.
func (r *RelayRequest) Normalize() {
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	r.Endpoint = strings.TrimSpace(r.Endpoint)
}

// Validate checks the request addresses a path on the Square API.
func (r *RelayRequest) Validate() error {
	if strings.TrimSpace(r.MerchantID) == "" {
		return ErrMerchantIDRequired
	}
	if r.Endpoint == "" {
		return ErrEndpointRequired
	}
	if !strings.HasPrefix(r.Endpoint, "/") || strings.HasPrefix(r.Endpoint, "//") {
		return ErrInvalidEndpoint
	}
	u, err := url.Parse(r.Endpoint)
	if err != nil || u.Scheme != "" || u.Host != "" || strings.Contains(u.Path, "..") {
		return ErrInvalidEndpoint
	}
	return nil
}

// HasBody reports whether the body is forwarded; GET never carries one.
func (r *RelayRequest) HasBody() bool {
	return r.Method != http.MethodGet && len(r.Body) > 0 && string(r.Body) != "null"
}

// RelayResponse is the upstream response, returned verbatim.
type RelayResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *RelayResponse) OK() bool {
	return r.Status >= 200 && r.Status < 300
}
