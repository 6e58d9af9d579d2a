// Package repository implements the Square credential store on PostgreSQL and MySQL.
// Access and refresh tokens are sealed before they reach the database, bound to the
// record path so a ciphertext cannot be replayed into another caller's row.
package repository

import (
	cryptoService "github.com/allisson/squareconnect/internal/crypto/service"
	apperrors "github.com/allisson/squareconnect/internal/errors"
	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
)

// sealedTokens is the at-rest form of a record's token pair.
type sealedTokens struct {
	access  string
	refresh string
}

func sealTokens(sealer cryptoService.Sealer, record *squareDomain.TokenRecord) (sealedTokens, error) {
	path := record.Key().Path()

	access, err := sealer.Seal(record.AccessToken, path)
	if err != nil {
		return sealedTokens{}, apperrors.Wrap(err, "failed to seal access token")
	}
	refresh, err := sealer.Seal(record.RefreshToken, path)
	if err != nil {
		return sealedTokens{}, apperrors.Wrap(err, "failed to seal refresh token")
	}
	return sealedTokens{access: access, refresh: refresh}, nil
}

func openTokens(sealer cryptoService.Sealer, record *squareDomain.TokenRecord, sealed sealedTokens) error {
	path := record.Key().Path()

	access, err := sealer.Open(sealed.access, path)
	if err != nil {
		return apperrors.Wrap(err, "failed to open access token")
	}
	refresh, err := sealer.Open(sealed.refresh, path)
	if err != nil {
		return apperrors.Wrap(err, "failed to open refresh token")
	}
	record.AccessToken = access
	record.RefreshToken = refresh
	return nil
}
