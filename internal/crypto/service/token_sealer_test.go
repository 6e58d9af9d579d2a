package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/squareconnect/internal/crypto/domain"
)

func TestTokenSealer(t *testing.T) {
	cipher, err := NewAESGCM(randomKey(t))
	require.NoError(t, err)
	sealer := NewTokenSealer(cipher)

	path := "users/U1/stores/merchant_M1"

	t.Run("Success_RoundTrip", func(t *testing.T) {
		sealed, err := sealer.Seal("EAAAl-refresh", path)
		require.NoError(t, err)
		assert.NotContains(t, sealed, "EAAAl-refresh")

		opened, err := sealer.Open(sealed, path)
		require.NoError(t, err)
		assert.Equal(t, "EAAAl-refresh", opened)
	})

	t.Run("Error_BoundToOtherRecord", func(t *testing.T) {
		sealed, err := sealer.Seal("EAAAl-refresh", path)
		require.NoError(t, err)

		_, err = sealer.Open(sealed, "users/U2/stores/merchant_M1")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("Error_Malformed", func(t *testing.T) {
		_, err := sealer.Open("not-sealed", path)
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedSealedValue)
	})

	t.Run("Error_OtherKey", func(t *testing.T) {
		sealed, err := sealer.Seal("EAAAl-refresh", path)
		require.NoError(t, err)

		other, err := NewAESGCM(randomKey(t))
		require.NoError(t, err)
		_, err = NewTokenSealer(other).Open(sealed, path)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}
