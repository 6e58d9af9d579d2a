package app

import (
	"fmt"
	"log/slog"

	handshakeRepository "github.com/allisson/squareconnect/internal/handshake/repository"
	handshakeService "github.com/allisson/squareconnect/internal/handshake/service"
	handshakeUseCase "github.com/allisson/squareconnect/internal/handshake/usecase"
)

// StateStore returns the handshake state store selected by HANDSHAKE_STATE_STORE.
func (c *Container) StateStore() (handshakeUseCase.StateStore, error) {
	var err error
	c.stateStoreInit.Do(func() {
		c.stateStore, err = c.initStateStore()
		if err != nil {
			c.setInitError("stateStore", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("stateStore"); storedErr != nil {
		return nil, storedErr
	}
	return c.stateStore, nil
}

// MarkerStore returns the local connection marker store.
func (c *Container) MarkerStore() handshakeUseCase.MarkerStore {
	c.markerStoreInit.Do(func() {
		c.markerStore = handshakeRepository.NewFileMarkerStore(c.config.HandshakeMarkerFile)
	})
	return c.markerStore
}

// ServerClient returns the client the handshake uses to reach the squareconnect API.
func (c *Container) ServerClient() *handshakeService.ServerClient {
	c.serverClientInit.Do(func() {
		c.serverClient = handshakeService.NewServerClient(c.config.HandshakeServerURL, nil)
	})
	return c.serverClient
}

// MarkerReconciler returns the reconciler that re-verifies the local marker.
func (c *Container) MarkerReconciler() *handshakeUseCase.MarkerReconciler {
	c.markerReconcilerInit.Do(func() {
		c.markerReconciler = handshakeUseCase.NewMarkerReconciler(
			c.MarkerStore(),
			c.ServerClient(),
			c.Logger(),
		)
	})
	return c.markerReconciler
}

// NewHandshake starts a handshake for session. Each browser session gets its own Handshake.
func (c *Container) NewHandshake(session string) (*handshakeUseCase.Handshake, error) {
	states, err := c.StateStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get state store for handshake: %w", err)
	}

	return handshakeUseCase.NewHandshake(
		handshakeUseCase.Config{
			SquareBaseURL: c.config.SquareBaseURL,
			ClientID:      c.config.SquareClientID,
			Scopes:        c.config.SquareScopes,
			RedirectURI:   c.config.SquareRedirectURI(),
			StateTTL:      c.config.HandshakeStateTTL,
		},
		session,
		states,
		c.MarkerStore(),
		c.ServerClient(),
		c.Logger().With(slog.String("component", "handshake")),
	), nil
}

func (c *Container) initStateStore() (handshakeUseCase.StateStore, error) {
	switch c.config.HandshakeStateStore {
	case "memory", "":
		return handshakeRepository.NewMemoryStateStore(), nil
	case "redis":
		client, err := c.RedisClient()
		if err != nil {
			return nil, fmt.Errorf("failed to get redis client for state store: %w", err)
		}
		return handshakeRepository.NewRedisStateStore(client), nil
	default:
		return nil, fmt.Errorf("unsupported handshake state store: %s", c.config.HandshakeStateStore)
	}
}
