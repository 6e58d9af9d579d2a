// Package domain defines the algorithms, keeper contract and sealed value format
// used to encrypt Square tokens at rest.
package domain

import "strings"

// Algorithm names an AEAD cipher.
type Algorithm string

const (
	// AESGCM is AES-256-GCM.
	AESGCM Algorithm = "aes-gcm"
	// ChaCha20 is ChaCha20-Poly1305.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the only supported key length in bytes.
const KeySize = 32

// ParseAlgorithm resolves a configured algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case AESGCM, "":
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
