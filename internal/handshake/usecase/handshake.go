package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/allisson/squareconnect/internal/errors"
	handshakeDomain "github.com/allisson/squareconnect/internal/handshake/domain"
	squareService "github.com/allisson/squareconnect/internal/square/service"
)

const stateBytes = 32

// Config describes the authorize redirect of a handshake.
type Config struct {
	SquareBaseURL string
	ClientID      string
	Scopes        []string
	RedirectURI   string
	StateTTL      time.Duration
}

// Handshake is one browser tab's connection flow. Its CSRF state lives in the
// StateStore under the session key so a fresh Handshake for the same session
// can complete the callback.
type Handshake struct {
	mu    sync.Mutex
	state handshakeDomain.State

	session  string
	oauth    *oauth2.Config
	stateTTL time.Duration

	states   StateStore
	markers  MarkerStore
	exchange ExchangeClient
	logger   *slog.Logger

	random io.Reader
	now    func() time.Time
}

// NewHandshake creates an idle handshake for session.
func NewHandshake(
	cfg Config,
	session string,
	states StateStore,
	markers MarkerStore,
	exchange ExchangeClient,
	logger *slog.Logger,
) *Handshake {
	return &Handshake{
		state:   handshakeDomain.StateIdle,
		session: session,
		oauth: &oauth2.Config{
			ClientID:    cfg.ClientID,
			Scopes:      cfg.Scopes,
			RedirectURL: cfg.RedirectURI,
			Endpoint:    squareService.OAuthEndpoint(cfg.SquareBaseURL),
		},
		stateTTL: cfg.StateTTL,
		states:   states,
		markers:  markers,
		exchange: exchange,
		logger:   logger,
		random:   rand.Reader,
		now:      time.Now,
	}
}

// State returns the current step.
func (h *Handshake) State() handshakeDomain.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handshake) set(state handshakeDomain.State) {
	h.mu.Lock()
	h.state = state
	h.mu.Unlock()
}

// Begin stores a fresh state value and returns the Square authorize URL.
// It is allowed from idle and from any terminal state.
func (h *Handshake) Begin(ctx context.Context) (string, error) {
	if h.session == "" {
		return "", handshakeDomain.ErrSessionRequired
	}

	h.mu.Lock()
	if h.state != handshakeDomain.StateIdle && !h.state.Terminal() {
		h.mu.Unlock()
		return "", handshakeDomain.ErrInvalidTransition
	}
	h.state = handshakeDomain.StateRedirecting
	h.mu.Unlock()

	state, err := h.newState()
	if err != nil {
		h.set(handshakeDomain.StateIdle)
		return "", err
	}
	if err := h.states.Put(ctx, h.session, state, h.stateTTL); err != nil {
		h.set(handshakeDomain.StateIdle)
		return "", err
	}

	return h.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("session", "false")), nil
}

// Complete verifies a callback and exchanges its code. The handshake is verifying
// from entry until a terminal state, covering the identity wait and the state
// comparison; a concurrent call gets ErrHandshakeInProgress. Terminal outcomes,
// including failures, are returned as a Result; an error means the call itself
// was not allowed.
func (h *Handshake) Complete(
	ctx context.Context,
	params handshakeDomain.CallbackParams,
	identity IdentitySource,
) (*handshakeDomain.Result, error) {
	h.mu.Lock()
	if h.state == handshakeDomain.StateVerifying {
		h.mu.Unlock()
		return nil, handshakeDomain.ErrHandshakeInProgress
	}
	h.state = handshakeDomain.StateVerifying
	h.mu.Unlock()

	if params.Error != "" {
		message := "OAuth error: " + params.Error
		if params.ErrorDescription != "" {
			message += " (" + params.ErrorDescription + ")"
		}
		return h.fail(message, errors.New(params.Error)), nil
	}
	if params.Code == "" || params.State == "" {
		return h.fail(handshakeDomain.MessageMissingParams, nil), nil
	}

	idToken, err := identity.Await(ctx)
	if err != nil || idToken == "" {
		return h.fail(handshakeDomain.MessageIdentityMissing, err), nil
	}

	stored, ok, err := h.states.Take(ctx, h.session)
	if err != nil {
		return h.fail(handshakeDomain.MessageStateUnverifiable, err), nil
	}
	if !ok || subtle.ConstantTimeCompare([]byte(stored), []byte(params.State)) != 1 {
		return h.fail(handshakeDomain.MessageStateMismatch, handshakeDomain.ErrStateMismatch), nil
	}

	outcome, err := h.exchange.Exchange(ctx, idToken, params.Code)
	if err != nil {
		message := handshakeDomain.MessageExchangeFailed
		var rejected *handshakeDomain.ExchangeRejectedError
		if apperrors.As(err, &rejected) && rejected.Message != "" {
			message = rejected.Message
		}
		return h.fail(message, err), nil
	}

	if !outcome.Supported {
		h.set(handshakeDomain.StateUnsupported)
		h.logger.Info("square merchant not supported", slog.String("mcc", outcome.CategoryCode))
		return &handshakeDomain.Result{
			State:        handshakeDomain.StateUnsupported,
			CategoryCode: outcome.CategoryCode,
			Message:      handshakeDomain.MessageUnsupported,
		}, nil
	}

	marker := handshakeDomain.Marker{
		MerchantID:  outcome.MerchantID,
		IsConnected: true,
		ConnectedAt: h.now().UTC(),
	}
	if err := h.markers.Save(marker); err != nil {
		return h.fail(handshakeDomain.MessageMarkerNotPersisted, err), nil
	}

	h.set(handshakeDomain.StateConnected)
	h.logger.Info("square account connected", slog.String("merchant_id", outcome.MerchantID))
	return &handshakeDomain.Result{
		State:      handshakeDomain.StateConnected,
		MerchantID: outcome.MerchantID,
		Message:    handshakeDomain.MessageConnected,
	}, nil
}

func (h *Handshake) fail(message string, cause error) *handshakeDomain.Result {
	h.set(handshakeDomain.StateFailed)
	attrs := []any{slog.String("reason", message)}
	if cause != nil {
		attrs = append(attrs, slog.Any("error", cause))
	}
	h.logger.Warn("square connection failed", attrs...)
	return &handshakeDomain.Result{
		State:   handshakeDomain.StateFailed,
		Message: message,
		Err:     cause,
	}
}

func (h *Handshake) newState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := io.ReadFull(h.random, buf); err != nil {
		return "", apperrors.Wrap(err, "failed to generate handshake state")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
