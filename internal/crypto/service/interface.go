// Package service implements the ciphers, KMS access and token sealing used to keep
// Square tokens encrypted in the credential store.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/squareconnect/internal/crypto/domain"
)

// AEAD is authenticated encryption with associated data.
type AEAD interface {
	// Encrypt returns the ciphertext (tag appended) and the freshly generated nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)
	// Decrypt fails with ErrDecryptionFailed on any authentication failure.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager creates ciphers by algorithm.
type AEADManager interface {
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KMSService opens gocloud.dev secrets keepers.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

// Sealer encrypts string secrets bound to a context string.
type Sealer interface {
	// Seal encrypts plaintext; boundTo is authenticated but not stored.
	Seal(plaintext, boundTo string) (string, error)
	// Open reverses Seal. The same boundTo value must be supplied.
	Open(sealed, boundTo string) (string, error)
}
