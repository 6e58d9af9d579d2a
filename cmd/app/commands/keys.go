package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/squareconnect/internal/crypto/domain"
	cryptoService "github.com/allisson/squareconnect/internal/crypto/service"
	customValidation "github.com/allisson/squareconnect/internal/validation"
)

// RunGenerateKey generates a random 32-byte token encryption key and prints the
// environment variables that configure it. With kmsKeyURI set the key is wrapped by
// the KMS keeper before output and the raw key is never printed.
//
// Output format:
//   - TOKEN_ENCRYPTION_KEY="<base64 key or base64 KMS ciphertext>"
//   - TOKEN_ENCRYPTION_ALGORITHM="<algorithm>"
//   - KMS_KEY_URI="<uri>" (KMS mode only)
func RunGenerateKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	algorithm, kmsKeyURI string,
) error {
	alg, err := cryptoDomain.ParseAlgorithm(algorithm)
	if err != nil {
		return fmt.Errorf("invalid algorithm %q: %w", algorithm, err)
	}

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	defer clear(key)

	encoded := base64.StdEncoding.EncodeToString(key)
	if kmsKeyURI != "" {
		encoded, err = cryptoService.WrapTokenKey(ctx, kmsService, kmsKeyURI, key)
		if err != nil {
			return err
		}
	}

	logger.Info("token encryption key generated",
		slog.String("algorithm", string(alg)),
		slog.Bool("kms", kmsKeyURI != ""),
	)

	_, _ = fmt.Fprintln(writer, "# Token encryption configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "TOKEN_ENCRYPTION_KEY=\"%s\"\n", encoded)
	_, _ = fmt.Fprintf(writer, "TOKEN_ENCRYPTION_ALGORITHM=\"%s\"\n", alg)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}
	return nil
}

// RunWrapKey wraps an existing base64 token encryption key with the KMS keeper at
// kmsKeyURI, for moving a plaintext deployment to KMS mode.
func RunWrapKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI, encodedKey string,
) error {
	if kmsKeyURI == "" {
		return fmt.Errorf(
			"--kms-key-uri is required\n\nFor local development, use:\n  --kms-key-uri=\"base64key://<32-byte-base64-key>\"",
		)
	}

	encodedKey = strings.TrimSpace(encodedKey)
	if err := validation.Validate(encodedKey,
		validation.Required,
		customValidation.Base64Key,
	); err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}

	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	defer clear(key)

	wrapped, err := cryptoService.WrapTokenKey(ctx, kmsService, kmsKeyURI, key)
	if err != nil {
		return err
	}

	logger.Info("token encryption key wrapped")

	_, _ = fmt.Fprintf(writer, "TOKEN_ENCRYPTION_KEY=\"%s\"\n", wrapped)
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	return nil
}
