package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/cartloop/shopapi/internal/auth/domain"
	"github.com/cartloop/shopapi/internal/auth/service"
	"github.com/cartloop/shopapi/internal/auth/store"
	"github.com/cartloop/shopapi/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.auth.Register(ctx, "Alice", "alice@example.com", "secret1", "", nil)
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		got, err := f.users.GetUserByID(ctx, registered.ID)
		require.NoError(t, err)
		require.Equal(t, registered.Email, got.Email)
	})

	t.Run("malformed id is rejected before storage", func(t *testing.T) {
		_, err := f.users.GetUserByID(ctx, "not-a-ulid")
		var bad *store.InvalidIDError
		require.ErrorAs(t, err, &bad)
		require.Equal(t, "id", bad.Path)
	})

	t.Run("well-formed miss is a typed outcome", func(t *testing.T) {
		id := idx.New().String()
		_, err := f.users.GetUserByID(ctx, id)
		var missing *service.UserNotFoundError
		require.ErrorAs(t, err, &missing)
		require.Equal(t, id, missing.ID)
	})
}

func TestUpdateProfileReplacesAvatar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.auth.Register(ctx, "Alice", "alice@example.com", "secret1", "a.png", []byte{1})
	require.NoError(t, err)
	oldAvatar := registered.Avatar.PublicID

	updated, err := f.users.UpdateProfile(ctx, registered.ID, "Alicia", "alicia@example.com", "b.png", []byte{2})
	require.NoError(t, err)
	require.Equal(t, "Alicia", updated.Name)
	require.Equal(t, "alicia@example.com", updated.Email)
	require.NotNil(t, updated.Avatar)
	require.NotEqual(t, oldAvatar, updated.Avatar.PublicID)
	require.Contains(t, f.images.destroyed, oldAvatar, "the replaced image is destroyed")

	t.Run("no avatar keeps the current one", func(t *testing.T) {
		again, err := f.users.UpdateProfile(ctx, registered.ID, "Alicia", "alicia@example.com", "", nil)
		require.NoError(t, err)
		require.NotNil(t, again.Avatar)
		require.Equal(t, updated.Avatar.PublicID, again.Avatar.PublicID)
	})

	t.Run("omitted name and email keep the stored values", func(t *testing.T) {
		kept, err := f.users.UpdateProfile(ctx, registered.ID, "", "", "", nil)
		require.NoError(t, err)
		require.Equal(t, "Alicia", kept.Name)
		require.Equal(t, "alicia@example.com", kept.Email)
	})
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.auth.Register(ctx, "Alice", "alice@example.com", "secret1", "", nil)
	require.NoError(t, err)

	t.Run("unknown role rejected", func(t *testing.T) {
		err := f.users.UpdateRole(ctx, registered.ID, "superuser")
		require.ErrorIs(t, err, service.ErrInvalidRole)
	})

	t.Run("promote to admin", func(t *testing.T) {
		require.NoError(t, f.users.UpdateRole(ctx, registered.ID, domain.RoleAdmin))

		got, err := f.users.GetUserByID(ctx, registered.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, got.Role)
	})

	t.Run("missing user", func(t *testing.T) {
		err := f.users.UpdateRole(ctx, idx.New().String(), domain.RoleAdmin)
		var missing *service.UserNotFoundError
		require.ErrorAs(t, err, &missing)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.auth.Register(ctx, "Alice", "alice@example.com", "secret1", "a.png", []byte{1})
	require.NoError(t, err)

	require.NoError(t, f.users.DeleteUser(ctx, registered.ID))
	require.Contains(t, f.images.destroyed, registered.Avatar.PublicID)

	_, err = f.users.GetUserByID(ctx, registered.ID)
	var missing *service.UserNotFoundError
	require.ErrorAs(t, err, &missing)
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.auth.Register(ctx, "Alice", "alice@example.com", "secret1", "", nil)
	require.NoError(t, err)
	_, err = f.auth.Register(ctx, "Bob", "bob@example.com", "secret1", "", nil)
	require.NoError(t, err)

	users, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestHousekeepingClearsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.auth.Register(ctx, "Alice", "alice@example.com", "secret1", "", nil)
	require.NoError(t, err)
	require.NoError(t, f.store.Users().SetResetToken(ctx, registered.ID,
		"dead-fingerprint", time.Now().UTC().Add(-time.Minute)))

	cleared, err := f.store.Users().ClearExpiredResetTokens(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.EqualValues(t, 1, cleared)

	got, err := f.users.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)
	require.Nil(t, got.ResetTokenHash)
}
