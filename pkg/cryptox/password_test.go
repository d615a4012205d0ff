package cryptox_test

import (
	"testing"

	"github.com/cartloop/shopapi/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	h := cryptox.NewHasher("test-pepper")

	t.Run("round trip", func(t *testing.T) {
		encoded, err := h.Hash("secret1")
		require.NoError(t, err)
		require.NoError(t, h.Verify("secret1", encoded))
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		encoded, err := h.Hash("secret1")
		require.NoError(t, err)
		require.ErrorIs(t, h.Verify("secret2", encoded), cryptox.ErrPasswordMismatch)
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		a, err := h.Hash("secret1")
		require.NoError(t, err)
		b, err := h.Hash("secret1")
		require.NoError(t, err)
		require.NotEqual(t, a, b)

		// Both still verify despite distinct salts.
		require.NoError(t, h.Verify("secret1", a))
		require.NoError(t, h.Verify("secret1", b))
	})

	t.Run("different pepper rejects", func(t *testing.T) {
		encoded, err := h.Hash("secret1")
		require.NoError(t, err)

		other := cryptox.NewHasher("another-pepper")
		require.ErrorIs(t, other.Verify("secret1", encoded), cryptox.ErrPasswordMismatch)
	})

	t.Run("empty password still round trips", func(t *testing.T) {
		encoded, err := h.Hash("")
		require.NoError(t, err)
		require.NoError(t, h.Verify("", encoded))
	})
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	h := cryptox.NewHasher("test-pepper")

	for _, encoded := range []string{
		"",
		"not-a-phc-string",
		"$argon2id$v=19$m=19456,t=2,p=1$only-salt",
		"$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=bad,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
	} {
		err := h.Verify("secret1", encoded)
		require.Error(t, err)
		require.NotErrorIs(t, err, cryptox.ErrPasswordMismatch)
	}
}

func TestLoadOrGeneratePepper(t *testing.T) {
	t.Parallel()

	file := t.TempDir() + "/pepper"

	first, err := cryptox.LoadOrGeneratePepper(file)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Second load returns the persisted value, not a fresh one.
	second, err := cryptox.LoadOrGeneratePepper(file)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
