package profile_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentora/dentkit/pkg/profile"
)

func TestRole_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, profile.RoleOwner.Valid())
	assert.True(t, profile.RoleAdmin.Valid())
	assert.True(t, profile.RoleStaff.Valid())
	assert.False(t, profile.Role("superuser").Valid())
	assert.False(t, profile.Role("").Valid())
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		t.Parallel()

		store := profile.NewMemoryStore()
		p := profile.Profile{
			ID:          uuid.New(),
			TenantID:    uuid.New(),
			Role:        profile.RoleStaff,
			DisplayName: "Dr. Naledi",
			Active:      true,
		}
		require.NoError(t, store.Save(ctx, p))

		got, err := store.ByIdentity(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.TenantID, got.TenantID)
		assert.Equal(t, profile.RoleStaff, got.Role)
		assert.True(t, got.Active)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("missing record", func(t *testing.T) {
		t.Parallel()

		store := profile.NewMemoryStore()
		_, err := store.ByIdentity(ctx, uuid.New())
		assert.ErrorIs(t, err, profile.ErrNotFound)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		t.Parallel()

		store := profile.NewMemoryStore()
		err := store.Save(ctx, profile.Profile{ID: uuid.New(), Role: "root"})
		assert.ErrorIs(t, err, profile.ErrInvalidRole)
	})

	t.Run("save preserves creation time", func(t *testing.T) {
		t.Parallel()

		store := profile.NewMemoryStore()
		p := profile.Profile{ID: uuid.New(), Role: profile.RoleOwner, Active: true}
		require.NoError(t, store.Save(ctx, p))

		first, err := store.ByIdentity(ctx, p.ID)
		require.NoError(t, err)

		p.DisplayName = "renamed"
		require.NoError(t, store.Save(ctx, p))

		second, err := store.ByIdentity(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
		assert.Equal(t, "renamed", second.DisplayName)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		t.Parallel()

		store := profile.NewMemoryStore()
		p := profile.Profile{ID: uuid.New(), Role: profile.RoleAdmin}
		require.NoError(t, store.Save(ctx, p))
		require.NoError(t, store.Delete(ctx, p.ID))
		require.NoError(t, store.Delete(ctx, p.ID))

		_, err := store.ByIdentity(ctx, p.ID)
		assert.ErrorIs(t, err, profile.ErrNotFound)
	})
}
