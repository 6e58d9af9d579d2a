package app

import (
	"fmt"

	cryptoDomain "github.com/allisson/squareconnect/internal/crypto/domain"
	cryptoService "github.com/allisson/squareconnect/internal/crypto/service"
)

// KMSService returns the KMS service used to unwrap the token encryption key.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// TokenSealer returns the sealer that encrypts Square tokens at rest.
func (c *Container) TokenSealer() (cryptoService.Sealer, error) {
	var err error
	c.tokenSealerInit.Do(func() {
		c.tokenSealer, err = c.initTokenSealer()
		if err != nil {
			c.setInitError("tokenSealer", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("tokenSealer"); storedErr != nil {
		return nil, storedErr
	}
	return c.tokenSealer, nil
}

// initTokenSealer loads the token key, unwrapping it through KMS when KMS_KEY_URI is set,
// and builds the configured cipher.
func (c *Container) initTokenSealer() (cryptoService.Sealer, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.config.TokenEncryptionAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token encryption algorithm: %w", err)
	}

	key, err := cryptoService.LoadTokenKey(
		c.ctx,
		c.KMSService(),
		c.config.KMSKeyURI,
		c.config.TokenEncryptionKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load token encryption key: %w", err)
	}

	cipher, err := c.AEADManager().CreateCipher(key, alg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token cipher: %w", err)
	}

	return cryptoService.NewTokenSealer(cipher), nil
}
