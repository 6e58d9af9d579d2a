package service

import (
	cryptoDomain "github.com/allisson/squareconnect/internal/crypto/domain"
)

type tokenSealer struct {
	cipher AEAD
}

// NewTokenSealer returns a Sealer that encrypts with cipher and encodes as SealedValue.
func NewTokenSealer(cipher AEAD) Sealer {
	return &tokenSealer{cipher: cipher}
}

func (s *tokenSealer) Seal(plaintext, boundTo string) (string, error) {
	ciphertext, nonce, err := s.cipher.Encrypt([]byte(plaintext), []byte(boundTo))
	if err != nil {
		return "", err
	}
	return cryptoDomain.SealedValue{Nonce: nonce, Ciphertext: ciphertext}.Encode(), nil
}

func (s *tokenSealer) Open(sealed, boundTo string) (string, error) {
	value, err := cryptoDomain.DecodeSealedValue(sealed)
	if err != nil {
		return "", err
	}
	plaintext, err := s.cipher.Decrypt(value.Ciphertext, value.Nonce, []byte(boundTo))
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
