package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	cryptoDomain "github.com/allisson/squareconnect/internal/crypto/domain"
)

// LoadTokenKey decodes the configured token encryption key.
//
// Without a KMS URI encodedKey is the raw key in standard base64. With one it is the
// base64 KMS ciphertext produced by WrapTokenKey and is unwrapped through the keeper.
func LoadTokenKey(ctx context.Context, kms KMSService, keyURI, encodedKey string) ([]byte, error) {
	encodedKey = strings.TrimSpace(encodedKey)
	if encodedKey == "" {
		return nil, cryptoDomain.ErrMissingKey
	}

	material, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token encryption key: %w", err)
	}

	if keyURI != "" {
		keeper, err := kms.OpenKeeper(ctx, keyURI)
		if err != nil {
			return nil, err
		}
		defer func() { _ = keeper.Close() }()

		material, err = keeper.Decrypt(ctx, material)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap token encryption key: %w", err)
		}
	}

	if len(material) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return material, nil
}

// WrapTokenKey encrypts key with the keeper at keyURI and returns it base64 encoded,
// ready to be used as TOKEN_ENCRYPTION_KEY alongside KMS_KEY_URI.
func WrapTokenKey(ctx context.Context, kms KMSService, keyURI string, key []byte) (string, error) {
	if len(key) != cryptoDomain.KeySize {
		return "", cryptoDomain.ErrInvalidKeySize
	}
	keeper, err := kms.OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() { _ = keeper.Close() }()

	wrapped, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to wrap token encryption key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(wrapped), nil
}
