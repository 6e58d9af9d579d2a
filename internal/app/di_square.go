package app

import (
	"fmt"
	"net/http"

	"github.com/allisson/squareconnect/internal/metrics"
	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
	squareHTTP "github.com/allisson/squareconnect/internal/square/http"
	squareRepository "github.com/allisson/squareconnect/internal/square/repository"
	squareService "github.com/allisson/squareconnect/internal/square/service"
	squareUseCase "github.com/allisson/squareconnect/internal/square/usecase"
)

// SquareClient returns the Square OAuth, locations and API client.
func (c *Container) SquareClient() (*squareService.SquareClient, error) {
	var err error
	c.squareClientInit.Do(func() {
		c.squareClient, err = c.initSquareClient()
		if err != nil {
			c.setInitError("squareClient", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("squareClient"); storedErr != nil {
		return nil, storedErr
	}
	return c.squareClient, nil
}

// EligibilityPolicy returns the merchant category allow-list.
func (c *Container) EligibilityPolicy() *squareDomain.EligibilityPolicy {
	c.eligibilityPolicyInit.Do(func() {
		c.eligibilityPolicy = squareDomain.NewEligibilityPolicy(c.config.SquareAllowedMCCs)
	})
	return c.eligibilityPolicy
}

// TokenRepository returns the credential store based on database driver.
func (c *Container) TokenRepository() (squareUseCase.TokenRepository, error) {
	var err error
	c.tokenRepositoryInit.Do(func() {
		c.tokenRepository, err = c.initTokenRepository()
		if err != nil {
			c.setInitError("tokenRepository", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("tokenRepository"); storedErr != nil {
		return nil, storedErr
	}
	return c.tokenRepository, nil
}

// ExchangeUseCase returns the authorization code exchange use case.
func (c *Container) ExchangeUseCase() (squareUseCase.ExchangeUseCase, error) {
	var err error
	c.exchangeUseCaseInit.Do(func() {
		c.exchangeUseCase, err = c.initExchangeUseCase()
		if err != nil {
			c.setInitError("exchangeUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("exchangeUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.exchangeUseCase, nil
}

// TokenUseCase returns the token refresh use case.
func (c *Container) TokenUseCase() (squareUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.setInitError("tokenUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("tokenUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// RelayUseCase returns the authenticated API relay use case.
func (c *Container) RelayUseCase() (squareUseCase.RelayUseCase, error) {
	var err error
	c.relayUseCaseInit.Do(func() {
		c.relayUseCase, err = c.initRelayUseCase()
		if err != nil {
			c.setInitError("relayUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("relayUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.relayUseCase, nil
}

// ConnectionUseCase returns the connection management use case.
func (c *Container) ConnectionUseCase() (squareUseCase.ConnectionUseCase, error) {
	var err error
	c.connectionUseCaseInit.Do(func() {
		c.connectionUseCase, err = c.initConnectionUseCase()
		if err != nil {
			c.setInitError("connectionUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("connectionUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.connectionUseCase, nil
}

// TokenHandler returns the HTTP handler for the exchange and refresh endpoints.
func (c *Container) TokenHandler() (*squareHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.setInitError("tokenHandler", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("tokenHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// RelayHandler returns the HTTP handler for the API relay.
func (c *Container) RelayHandler() (*squareHTTP.RelayHandler, error) {
	var err error
	c.relayHandlerInit.Do(func() {
		var useCase squareUseCase.RelayUseCase
		useCase, err = c.RelayUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get relay use case for relay handler: %w", err)
			c.setInitError("relayHandler", err)
			return
		}
		c.relayHandler = squareHTTP.NewRelayHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("relayHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.relayHandler, nil
}

// ConnectionHandler returns the HTTP handler for connection management.
func (c *Container) ConnectionHandler() (*squareHTTP.ConnectionHandler, error) {
	var err error
	c.connectionHandlerInit.Do(func() {
		var useCase squareUseCase.ConnectionUseCase
		useCase, err = c.ConnectionUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get connection use case for connection handler: %w", err)
			c.setInitError("connectionHandler", err)
			return
		}
		c.connectionHandler = squareHTTP.NewConnectionHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("connectionHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.connectionHandler, nil
}

// initSquareClient builds the Square client; outbound calls are metered when metrics are enabled.
func (c *Container) initSquareClient() (*squareService.SquareClient, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for square client: %w", err)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if provider != nil {
		transport = metrics.InstrumentTransport(
			transport,
			provider.MeterProvider(),
			c.config.MetricsNamespace,
			"square",
		)
	}

	return squareService.NewSquareClient(squareService.Config{
		BaseURL:      c.config.SquareBaseURL,
		Version:      c.config.SquareVersion,
		ClientID:     c.config.SquareClientID,
		ClientSecret: c.config.SquareClientSecret,
		RedirectURI:  c.config.SquareRedirectURI(),
		Timeout:      c.config.SquareHTTPTimeout,
	}, &http.Client{Transport: transport}), nil
}

// initTokenRepository creates the token repository based on the database driver.
func (c *Container) initTokenRepository() (squareUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	sealer, err := c.TokenSealer()
	if err != nil {
		return nil, fmt.Errorf("failed to get token sealer for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return squareRepository.NewPostgreSQLTokenRepository(db, sealer), nil
	case "mysql":
		return squareRepository.NewMySQLTokenRepository(db, sealer), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initExchangeUseCase creates the exchange use case with all its dependencies.
func (c *Container) initExchangeUseCase() (squareUseCase.ExchangeUseCase, error) {
	client, err := c.SquareClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get square client for exchange use case: %w", err)
	}

	tokenRepository, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for exchange use case: %w", err)
	}

	baseUseCase := squareUseCase.NewExchangeUseCase(
		client,
		client,
		tokenRepository,
		c.EligibilityPolicy(),
		c.config.SquareDefaultTokenTTL,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for exchange use case: %w", err)
		}
		return squareUseCase.NewExchangeUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTokenUseCase creates the token use case with all its dependencies.
func (c *Container) initTokenUseCase() (squareUseCase.TokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	tokenRepository, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
	}

	client, err := c.SquareClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get square client for token use case: %w", err)
	}

	baseUseCase := squareUseCase.NewTokenUseCase(
		txManager,
		tokenRepository,
		client,
		c.config.SquareRefreshMargin,
		c.config.SquareDefaultTokenTTL,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return squareUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRelayUseCase creates the relay use case on top of the token use case.
func (c *Container) initRelayUseCase() (squareUseCase.RelayUseCase, error) {
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for relay use case: %w", err)
	}

	client, err := c.SquareClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get square client for relay use case: %w", err)
	}

	baseUseCase := squareUseCase.NewRelayUseCase(tokenUseCase, client)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for relay use case: %w", err)
		}
		return squareUseCase.NewRelayUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initConnectionUseCase creates the connection use case.
func (c *Container) initConnectionUseCase() (squareUseCase.ConnectionUseCase, error) {
	tokenRepository, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for connection use case: %w", err)
	}

	baseUseCase := squareUseCase.NewConnectionUseCase(tokenRepository)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for connection use case: %w", err)
		}
		return squareUseCase.NewConnectionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTokenHandler creates the token handler with the exchange and token use cases.
func (c *Container) initTokenHandler() (*squareHTTP.TokenHandler, error) {
	exchangeUseCase, err := c.ExchangeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange use case for token handler: %w", err)
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
	}

	return squareHTTP.NewTokenHandler(exchangeUseCase, tokenUseCase, c.Logger()), nil
}
