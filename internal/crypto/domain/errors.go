package domain

import (
	"github.com/allisson/squareconnect/internal/errors"
)

var (
	// ErrUnsupportedAlgorithm indicates an unknown AEAD name.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key that is not KeySize bytes long.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates tampered ciphertext, a wrong key or mismatched associated data.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrMissingKey indicates that no token encryption key is configured.
	ErrMissingKey = errors.Wrap(errors.ErrUnavailable, "token encryption key is not configured")

	// ErrMalformedSealedValue indicates a stored value not produced by SealedValue.Encode.
	ErrMalformedSealedValue = errors.Wrap(errors.ErrInvalidInput, "malformed sealed value")
)
