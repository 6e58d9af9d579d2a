package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handshakeDomain "github.com/allisson/squareconnect/internal/handshake/domain"
)

func TestFileMarkerStore(t *testing.T) {
	t.Run("load without a marker returns nil", func(t *testing.T) {
		store := NewFileMarkerStore(filepath.Join(t.TempDir(), "connection.json"))

		marker, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, marker)
	})

	t.Run("save then load round trips the marker", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "connection.json")
		store := NewFileMarkerStore(path)
		want := handshakeDomain.Marker{
			MerchantID:  "M123",
			IsConnected: true,
			ConnectedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}

		require.NoError(t, store.Save(want))

		got, err := store.Load()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.MerchantID, got.MerchantID)
		assert.True(t, got.IsConnected)
		assert.True(t, want.ConnectedAt.Equal(got.ConnectedAt))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"merchantId": "M123"`)
		assert.NotContains(t, string(raw), "token")
	})

	t.Run("corrupt marker fails to load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "connection.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

		_, err := NewFileMarkerStore(path).Load()
		assert.ErrorContains(t, err, "failed to decode connection marker")
	})

	t.Run("clear removes the marker and tolerates absence", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "connection.json")
		store := NewFileMarkerStore(path)
		require.NoError(t, store.Save(handshakeDomain.Marker{MerchantID: "M123", IsConnected: true}))

		require.NoError(t, store.Clear())
		require.NoError(t, store.Clear())

		marker, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, marker)
	})
}
