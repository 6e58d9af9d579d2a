// Package domain defines the Square connection model: stored token records,
// upstream token pairs, merchant eligibility and relay requests.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordKey addresses one TokenRecord: a caller's connection to one merchant.
type RecordKey struct {
	CallerID   string
	MerchantID string
}

// Path returns the document path of the record, users/{callerId}/stores/merchant_{merchantId}.
// It is also the associated data binding sealed tokens to their row.
func (k RecordKey) Path() string {
	return "users/" + k.CallerID + "/stores/merchant_" + k.MerchantID
}

// Validate checks both components are present and cannot escape the path layout.
func (k RecordKey) Validate() error {
	if strings.TrimSpace(k.CallerID) == "" || strings.ContainsAny(k.CallerID, "/") {
		return ErrCallerIDRequired
	}
	if strings.TrimSpace(k.MerchantID) == "" || strings.ContainsAny(k.MerchantID, "/") {
		return ErrMerchantIDRequired
	}
	return nil
}

// TokenRecord is the server-side credential of a connected merchant.
// It never leaves the server; only MerchantID and connectedness are exposed.
type TokenRecord struct {
	ID           uuid.UUID
	CallerID     string
	MerchantID   string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Key returns the record address.
func (r *TokenRecord) Key() RecordKey {
	return RecordKey{CallerID: r.CallerID, MerchantID: r.MerchantID}
}

// IsExpired reports whether the access token must be refreshed before use:
// true when ExpiresAt <= now + margin.
func (r *TokenRecord) IsExpired(now time.Time, margin time.Duration) bool {
	return !r.ExpiresAt.After(now.Add(margin))
}

// ApplyRefresh copies a refreshed pair onto the record. An empty refresh token
// in the pair keeps the current one.
func (r *TokenRecord) ApplyRefresh(pair *TokenPair, expiresAt time.Time) {
	r.AccessToken = pair.AccessToken
	if pair.RefreshToken != "" {
		r.RefreshToken = pair.RefreshToken
	}
	r.ExpiresAt = expiresAt
}

// TokenPair is what the Square token endpoint returned.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	MerchantID   string
	// ExpiresAt is zero when the endpoint gave neither expires_at nor expires_in.
	ExpiresAt time.Time
}

// ExpiryOr returns ExpiresAt, or now+fallback when the endpoint omitted it.
func (p *TokenPair) ExpiryOr(now time.Time, fallback time.Duration) time.Time {
	if p.ExpiresAt.IsZero() {
		return now.Add(fallback)
	}
	return p.ExpiresAt
}

// Connection is the non-secret view of a TokenRecord.
type Connection struct {
	MerchantID  string
	IsConnected bool
	ConnectedAt time.Time
	ExpiresAt   time.Time
}

// ConnectionOf derives the connection view of a record.
func ConnectionOf(r *TokenRecord) Connection {
	return Connection{
		MerchantID:  r.MerchantID,
		IsConnected: true,
		ConnectedAt: r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}
