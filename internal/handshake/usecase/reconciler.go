package usecase

import (
	"context"
	"log/slog"

	handshakeDomain "github.com/allisson/squareconnect/internal/handshake/domain"
)

// MarkerReconciler re-verifies the local marker against the server, since the
// marker alone does not prove a connection still exists.
type MarkerReconciler struct {
	markers MarkerStore
	status  StatusClient
	logger  *slog.Logger
}

// NewMarkerReconciler creates a reconciler.
func NewMarkerReconciler(markers MarkerStore, status StatusClient, logger *slog.Logger) *MarkerReconciler {
	return &MarkerReconciler{markers: markers, status: status, logger: logger}
}

// Reconcile returns the marker when the server confirms it. A marker the
// server no longer knows is cleared and nil is returned.
func (r *MarkerReconciler) Reconcile(ctx context.Context, idToken string) (*handshakeDomain.Marker, error) {
	marker, err := r.markers.Load()
	if err != nil || marker == nil {
		return nil, err
	}

	connected, err := r.status.IsConnected(ctx, idToken, marker.MerchantID)
	if err != nil {
		return nil, err
	}
	if connected && marker.IsConnected {
		return marker, nil
	}

	r.logger.Info("clearing stale square connection marker", slog.String("merchant_id", marker.MerchantID))
	if err := r.markers.Clear(); err != nil {
		return nil, err
	}
	return nil, nil
}
