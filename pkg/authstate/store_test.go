package authstate_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentora/dentkit/pkg/authstate"
	"github.com/dentora/dentkit/pkg/profile"
)

func TestState_Phase(t *testing.T) {
	t.Parallel()

	ident := &authstate.Identity{ID: uuid.New(), Email: "a@b.com"}

	tests := []struct {
		name  string
		state authstate.State
		want  authstate.Phase
	}{
		{"uninitialized", authstate.State{Loading: true}, authstate.PhaseUninitialized},
		{"unauthenticated", authstate.State{}, authstate.PhaseUnauthenticated},
		{"authenticated", authstate.State{Identity: ident, TenantID: uuid.New()}, authstate.PhaseAuthenticated},
		{"authenticated invalid", authstate.State{Identity: ident, Error: "account inactive"}, authstate.PhaseAuthenticatedInvalid},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.state.Phase())
		})
	}
}

func TestState_DerivedFieldInvariant(t *testing.T) {
	t.Parallel()

	// Derived tenant fields are present iff the profile is present, active
	// and tenant-linked; every constructor in the package maintains this.
	active := profile.Profile{ID: uuid.New(), TenantID: uuid.New(), Role: profile.RoleOwner, Active: true}

	valid := authstate.State{
		Identity: &authstate.Identity{ID: active.ID},
		Profile:  &active,
		TenantID: active.TenantID,
		Role:     active.Role,
	}
	assert.True(t, valid.HasTenant())

	inactive := authstate.State{
		Identity: &authstate.Identity{ID: active.ID},
		Profile:  &active,
		Error:    "account inactive",
	}
	assert.False(t, inactive.HasTenant())
	assert.Empty(t, inactive.Role)
}

func TestStore_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("initial state is loading", func(t *testing.T) {
		t.Parallel()

		store := authstate.NewStore()
		defer store.Close()

		st := store.Current()
		assert.True(t, st.Loading)
		assert.Equal(t, authstate.PhaseUninitialized, st.Phase())
	})

	t.Run("context cancellation releases the subscription", func(t *testing.T) {
		t.Parallel()

		store := authstate.NewStore()
		defer store.Close()

		ctx, cancel := context.WithCancel(context.Background())
		sub := store.Subscribe(ctx)
		cancel()

		require.Eventually(t, func() bool {
			select {
			case _, ok := <-sub.Changes():
				return !ok
			default:
				return false
			}
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("closed store returns closed subscriptions", func(t *testing.T) {
		t.Parallel()

		store := authstate.NewStore()
		require.NoError(t, store.Close())

		sub := store.Subscribe(context.Background())
		_, ok := <-sub.Changes()
		assert.False(t, ok)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		store := authstate.NewStore()
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		sub := store.Subscribe(context.Background())
		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close())
	})
}

func TestMemoryCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cache := authstate.NewMemoryCache()

	cached, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached, "empty cache is a miss")

	cs := authstate.CachedSession{
		Identity: authstate.Identity{ID: uuid.New(), Email: "a@b.com"},
		Profile:  profile.Profile{ID: uuid.New(), TenantID: uuid.New(), Role: profile.RoleAdmin, Active: true},
	}
	require.NoError(t, cache.Save(ctx, cs))

	cached, err = cache.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, cs.Identity.ID, cached.Identity.ID)

	require.NoError(t, cache.Clear(ctx))
	cached, err = cache.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
