package app

import (
	"errors"

	identityService "github.com/allisson/squareconnect/internal/identity/service"
	onboardingHTTP "github.com/allisson/squareconnect/internal/onboarding/http"
)

// Verifier returns the caller ID token verifier.
// Signing keys are fetched lazily and refreshed until the container shuts down.
func (c *Container) Verifier() (identityService.Verifier, error) {
	var err error
	c.verifierInit.Do(func() {
		c.verifier, err = c.initVerifier()
		if err != nil {
			c.setInitError("verifier", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("verifier"); storedErr != nil {
		return nil, storedErr
	}
	return c.verifier, nil
}

// OnboardingHandler returns the HTTP handler for the onboarding catalogue.
func (c *Container) OnboardingHandler() *onboardingHTTP.OnboardingHandler {
	c.onboardingHandlerInit.Do(func() {
		c.onboardingHandler = onboardingHTTP.NewOnboardingHandler(c.Logger())
	})
	return c.onboardingHandler
}

func (c *Container) initVerifier() (identityService.Verifier, error) {
	if c.config.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required to verify caller ID tokens")
	}
	return identityService.NewVerifier(c.ctx, identityService.Config{
		IssuerURL: c.config.IdentityIssuerURL,
		Audience:  c.config.FirebaseProjectID,
		JWKSURL:   c.config.IdentityJWKSURL,
	}), nil
}
