package domain

import (
	"context"
	"encoding/base64"
	"strings"
)

// sealedPrefix versions the at-rest format.
const sealedPrefix = "v1."

// SealedValue is an AEAD ciphertext with the nonce it was produced with.
type SealedValue struct {
	Nonce      []byte
	Ciphertext []byte
}

// Encode renders the value as "v1.<nonce>.<ciphertext>" using unpadded base64url.
func (s SealedValue) Encode() string {
	return sealedPrefix +
		base64.RawURLEncoding.EncodeToString(s.Nonce) + "." +
		base64.RawURLEncoding.EncodeToString(s.Ciphertext)
}

// DecodeSealedValue parses the output of Encode.
func DecodeSealedValue(encoded string) (SealedValue, error) {
	rest, ok := strings.CutPrefix(encoded, sealedPrefix)
	if !ok {
		return SealedValue{}, ErrMalformedSealedValue
	}
	nonceB64, ctB64, ok := strings.Cut(rest, ".")
	if !ok {
		return SealedValue{}, ErrMalformedSealedValue
	}
	nonce, err := base64.RawURLEncoding.DecodeString(nonceB64)
	if err != nil || len(nonce) == 0 {
		return SealedValue{}, ErrMalformedSealedValue
	}
	ciphertext, err := base64.RawURLEncoding.DecodeString(ctB64)
	if err != nil {
		return SealedValue{}, ErrMalformedSealedValue
	}
	return SealedValue{Nonce: nonce, Ciphertext: ciphertext}, nil
}

// KMSKeeper wraps and unwraps key material; *secrets.Keeper satisfies it.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
