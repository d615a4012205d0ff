package images_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cartloop/shopapi/internal/auth/images"
	"github.com/stretchr/testify/require"
)

func TestLocalUploadAndDestroy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := images.NewLocal(dir, "http://img.test/avatars")
	require.NoError(t, err)

	ctx := context.Background()

	avatar, err := store.Upload(ctx, "photo.png", []byte{0x89, 0x50})
	require.NoError(t, err)
	require.NotEmpty(t, avatar.PublicID)
	require.Equal(t, "http://img.test/avatars/"+avatar.PublicID, avatar.URL)
	require.Equal(t, ".png", filepath.Ext(avatar.PublicID), "original extension is kept")

	// The bytes landed on disk.
	data, err := os.ReadFile(filepath.Join(dir, avatar.PublicID))
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 0x50}, data)

	require.NoError(t, store.Destroy(ctx, avatar.PublicID))
	_, err = os.Stat(filepath.Join(dir, avatar.PublicID))
	require.True(t, os.IsNotExist(err))

	t.Run("destroy is idempotent", func(t *testing.T) {
		require.NoError(t, store.Destroy(ctx, avatar.PublicID))
	})

	t.Run("nameless upload gets a fallback extension", func(t *testing.T) {
		avatar, err := store.Upload(ctx, "", []byte{1})
		require.NoError(t, err)
		require.Equal(t, ".img", filepath.Ext(avatar.PublicID))
	})
}
