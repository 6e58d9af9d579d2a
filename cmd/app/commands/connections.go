package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	handshakeUseCase "github.com/allisson/squareconnect/internal/handshake/usecase"
	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
	"github.com/allisson/squareconnect/internal/square/http/dto"
	squareUseCase "github.com/allisson/squareconnect/internal/square/usecase"
)

// RunListConnections prints the merchants a caller has connected, in text or JSON.
func RunListConnections(
	ctx context.Context,
	connectionUseCase squareUseCase.ConnectionUseCase,
	writer io.Writer,
	callerID, format string,
) error {
	if strings.TrimSpace(callerID) == "" {
		return errors.New("--caller-id is required")
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	conns, err := connectionUseCase.List(ctx, callerID)
	if err != nil {
		return fmt.Errorf("failed to list connections: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, dto.MapListConnectionsResponse(conns))
	}

	if len(conns) == 0 {
		_, _ = fmt.Fprintf(writer, "No Square connections for caller %s\n", callerID)
		return nil
	}

	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "MERCHANT ID\tCONNECTED AT\tTOKEN EXPIRES AT")
	for _, conn := range conns {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n",
			conn.MerchantID,
			conn.ConnectedAt.UTC().Format(time.RFC3339),
			conn.ExpiresAt.UTC().Format(time.RFC3339),
		)
	}
	return tw.Flush()
}

// RunDisconnect removes a caller's stored tokens for a merchant. A local connection
// marker for the same merchant is cleared as well.
func RunDisconnect(
	ctx context.Context,
	connectionUseCase squareUseCase.ConnectionUseCase,
	markers handshakeUseCase.MarkerStore,
	logger *slog.Logger,
	writer io.Writer,
	callerID, merchantID string,
) error {
	if strings.TrimSpace(callerID) == "" {
		return errors.New("--caller-id is required")
	}
	if strings.TrimSpace(merchantID) == "" {
		return errors.New("--merchant-id is required")
	}

	if err := connectionUseCase.Disconnect(ctx, callerID, merchantID); err != nil {
		if errors.Is(err, squareDomain.ErrRecordNotFound) {
			return fmt.Errorf("merchant %s is not connected for caller %s", merchantID, callerID)
		}
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	marker, err := markers.Load()
	if err != nil {
		logger.Warn("failed to read local connection marker", slog.Any("error", err))
	} else if marker != nil && marker.MerchantID == merchantID {
		if err := markers.Clear(); err != nil {
			return fmt.Errorf("failed to clear local connection marker: %w", err)
		}
	}

	logger.Info("square connection removed", slog.String("merchant_id", merchantID))
	_, _ = fmt.Fprintf(writer, "Disconnected merchant %s\n", merchantID)
	return nil
}
