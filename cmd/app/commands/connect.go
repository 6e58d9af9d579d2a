package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/squareconnect/internal/config"
	handshakeDomain "github.com/allisson/squareconnect/internal/handshake/domain"
	handshakeUseCase "github.com/allisson/squareconnect/internal/handshake/usecase"
	onboardingDomain "github.com/allisson/squareconnect/internal/onboarding/domain"
)

// Handshaker is one Square connection handshake.
type Handshaker interface {
	Begin(ctx context.Context) (string, error)
	Complete(
		ctx context.Context,
		params handshakeDomain.CallbackParams,
		identity handshakeUseCase.IdentitySource,
	) (*handshakeDomain.Result, error)
}

// MarkerReconciler re-verifies the local connection marker with the server.
type MarkerReconciler interface {
	Reconcile(ctx context.Context, idToken string) (*handshakeDomain.Marker, error)
}

// ConnectOptions configures RunConnect.
type ConnectOptions struct {
	IDToken      string
	BusinessType string
	Services     []string
	// Force starts a new handshake even when the local marker is confirmed.
	Force bool
	// Timeout bounds the wait for the browser callback.
	Timeout time.Duration
}

// RunConnect connects a Square account for the signed-in caller.
//
// It prints the authorize URL (and hands it to open), serves the OAuth redirect on
// listener and completes the handshake with the callback parameters. The command
// returns once a callback reaches a terminal state, the timeout expires or ctx is done.
func RunConnect(
	ctx context.Context,
	handshake Handshaker,
	reconciler MarkerReconciler,
	listener net.Listener,
	open func(url string) error,
	logger *slog.Logger,
	writer io.Writer,
	opts ConnectOptions,
) error {
	idToken := strings.TrimSpace(opts.IDToken)
	if idToken == "" {
		return errors.New("--id-token is required (or set SQUARECONNECT_ID_TOKEN)")
	}

	if err := warnIfSquareNotRequired(writer, opts.BusinessType, opts.Services); err != nil {
		return err
	}

	if !opts.Force {
		marker, err := reconciler.Reconcile(ctx, idToken)
		if err != nil {
			logger.Warn("could not verify existing square connection", slog.Any("error", err))
		} else if marker != nil {
			_, _ = fmt.Fprintf(writer,
				"Already connected to Square merchant %s since %s. Use --force to reconnect.\n",
				marker.MerchantID, marker.ConnectedAt.UTC().Format(time.RFC3339))
			return nil
		}
	}

	authorizeURL, err := handshake.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start square connection: %w", err)
	}

	results := make(chan *handshakeDomain.Result, 1)
	server := &http.Server{
		Handler:           callbackRouter(handshake, handshakeUseCase.StaticIdentity(idToken), results, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to stop callback listener", slog.Any("error", err))
		}
	}()

	_, _ = fmt.Fprintln(writer, "Open the following URL in your browser to connect your Square account:")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "  "+authorizeURL)
	_, _ = fmt.Fprintln(writer)
	if open != nil {
		if err := open(authorizeURL); err != nil {
			logger.Debug("could not open browser", slog.Any("error", err))
		}
	}
	_, _ = fmt.Fprintf(writer, "Waiting for the Square redirect on http://%s%s ...\n",
		listener.Addr().String(), config.SquareCallbackPath)

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	select {
	case result := <-results:
		return reportResult(writer, result)
	case err := <-serveErr:
		return fmt.Errorf("callback listener failed: %w", err)
	case <-waitCtx.Done():
		return fmt.Errorf("no callback received: %w", waitCtx.Err())
	}
}

// callbackRouter serves the OAuth redirect. The first callback that reaches a
// terminal state is delivered on results.
func callbackRouter(
	handshake Handshaker,
	identity handshakeUseCase.IdentitySource,
	results chan<- *handshakeDomain.Result,
	logger *slog.Logger,
) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET(config.SquareCallbackPath, func(c *gin.Context) {
		params := handshakeDomain.CallbackParamsFromQuery(c.Request.URL.Query())

		result, err := handshake.Complete(c.Request.Context(), params, identity)
		if err != nil {
			c.String(http.StatusConflict, err.Error())
			return
		}

		status := http.StatusOK
		if result.State == handshakeDomain.StateFailed {
			status = http.StatusBadRequest
			logger.Warn("square connection failed",
				slog.String("message", result.Message),
				slog.Any("error", result.Err))
		}
		c.String(status, result.Message+"\nYou can close this window.\n")

		select {
		case results <- result:
		default:
		}
	})

	return router
}

func reportResult(writer io.Writer, result *handshakeDomain.Result) error {
	switch result.State {
	case handshakeDomain.StateConnected:
		_, _ = fmt.Fprintf(writer, "%s Merchant: %s\n", result.Message, result.MerchantID)
		return nil
	case handshakeDomain.StateUnsupported:
		_, _ = fmt.Fprintf(writer, "%s (merchant category %s)\n", result.Message, result.CategoryCode)
		return fmt.Errorf("merchant category %s is not supported", result.CategoryCode)
	default:
		return fmt.Errorf("square connection failed: %s", result.Message)
	}
}

// warnIfSquareNotRequired prints a notice when the onboarding selection does not need Square.
func warnIfSquareNotRequired(writer io.Writer, businessType string, services []string) error {
	if businessType == "" && len(services) == 0 {
		return nil
	}

	selected := make([]onboardingDomain.ServiceType, 0, len(services))
	for _, s := range services {
		if s = strings.TrimSpace(s); s != "" {
			selected = append(selected, onboardingDomain.ServiceType(s))
		}
	}

	requires, err := onboardingDomain.RequiresSquare(onboardingDomain.BusinessType(businessType), selected)
	if err != nil {
		return err
	}
	if !requires {
		_, _ = fmt.Fprintln(writer,
			"Note: the selected business type and services do not require a Square connection.")
	}
	return nil
}

// RunStatus reports whether the local connection marker is still confirmed by the server.
// A marker the server no longer knows is cleared.
func RunStatus(
	ctx context.Context,
	reconciler MarkerReconciler,
	writer io.Writer,
	idToken, format string,
) error {
	if strings.TrimSpace(idToken) == "" {
		return errors.New("--id-token is required (or set SQUARECONNECT_ID_TOKEN)")
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	marker, err := reconciler.Reconcile(ctx, idToken)
	if err != nil {
		return fmt.Errorf("failed to verify square connection: %w", err)
	}

	if format == "json" {
		if marker == nil {
			marker = &handshakeDomain.Marker{}
		}
		return writeJSON(writer, marker)
	}

	if marker == nil {
		_, _ = fmt.Fprintln(writer, "Not connected to Square")
		return nil
	}
	_, _ = fmt.Fprintf(writer, "Connected to Square merchant %s since %s\n",
		marker.MerchantID, marker.ConnectedAt.UTC().Format(time.RFC3339))
	return nil
}
