package cryptox_test

import (
	"testing"

	"github.com/cartloop/shopapi/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 100 {
			token, err := cryptox.GenerateToken(cryptox.TokenSize256)
			require.NoError(t, err)
			require.NotEmpty(t, token)
			require.False(t, seen[token])
			seen[token] = true
		}
	})

	t.Run("url safe", func(t *testing.T) {
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		require.NoError(t, err)
		require.NotContains(t, token, "+")
		require.NotContains(t, token, "/")
		require.NotContains(t, token, "=")
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)

	t.Run("deterministic", func(t *testing.T) {
		require.Equal(t, cryptox.FingerprintToken(token), cryptox.FingerprintToken(token))
	})

	t.Run("differs from the raw token", func(t *testing.T) {
		require.NotEqual(t, token, cryptox.FingerprintToken(token))
	})

	t.Run("distinct tokens have distinct fingerprints", func(t *testing.T) {
		other, err := cryptox.GenerateToken(cryptox.TokenSize256)
		require.NoError(t, err)
		require.NotEqual(t, cryptox.FingerprintToken(token), cryptox.FingerprintToken(other))
	})
}
