package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentora/dentkit/pkg/authstate"
	"github.com/dentora/dentkit/pkg/identity"
	"github.com/dentora/dentkit/pkg/profile"
)

// newProfileStoreWith seeds an in-memory profile store with an active,
// tenant-linked profile for the given identity.
func newProfileStoreWith(t *testing.T, identityID uuid.UUID) *profile.MemoryStore {
	t.Helper()

	store := profile.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), profile.Profile{
		ID:          identityID,
		TenantID:    uuid.New(),
		Role:        profile.RoleStaff,
		DisplayName: "Naledi",
		Active:      true,
	}))
	return store
}

func setupProvider(t *testing.T) (*identity.LocalProvider, *identity.MemoryUserStore) {
	t.Helper()

	users := identity.NewMemoryUserStore()
	provider := identity.NewLocalProvider(users, "test-signing-secret",
		identity.WithIssuer("dentkit-test"),
	)
	t.Cleanup(func() { _ = provider.Close() })
	return provider, users
}

func TestLocalProvider_SignIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		provider, users := setupProvider(t)
		u, err := users.Register(ctx, "Naledi@Example.com", "correct horse")
		require.NoError(t, err)

		sess, err := provider.SignInWithCredentials(ctx, "naledi@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, u.ID, sess.Identity.ID)
		assert.Equal(t, "naledi@example.com", sess.Identity.Email)
		assert.NotEmpty(t, sess.Token)
		assert.True(t, sess.ExpiresAt.After(time.Now()))
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		provider, users := setupProvider(t)
		_, err := users.Register(ctx, "naledi@example.com", "correct horse")
		require.NoError(t, err)

		_, err = provider.SignInWithCredentials(ctx, "naledi@example.com", "battery staple")
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		t.Parallel()

		provider, _ := setupProvider(t)
		_, err := provider.SignInWithCredentials(ctx, "nobody@example.com", "pw")
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})
}

func TestLocalProvider_CurrentSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		t.Parallel()

		provider, _ := setupProvider(t)
		sess, err := provider.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("returns the signed-in session", func(t *testing.T) {
		t.Parallel()

		provider, users := setupProvider(t)
		_, err := users.Register(ctx, "naledi@example.com", "pw-pw-pw")
		require.NoError(t, err)

		signedIn, err := provider.SignInWithCredentials(ctx, "naledi@example.com", "pw-pw-pw")
		require.NoError(t, err)

		sess, err := provider.CurrentSession(ctx)
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, signedIn.Token, sess.Token)
	})

	t.Run("expired token behaves like no session", func(t *testing.T) {
		t.Parallel()

		users := identity.NewMemoryUserStore()
		provider := identity.NewLocalProvider(users, "test-signing-secret",
			identity.WithTokenTTL(time.Millisecond),
		)
		defer provider.Close()

		_, err := users.Register(ctx, "naledi@example.com", "pw-pw-pw")
		require.NoError(t, err)
		_, err = provider.SignInWithCredentials(ctx, "naledi@example.com", "pw-pw-pw")
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)

		sess, err := provider.CurrentSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, sess)
	})
}

func TestLocalProvider_Events(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	provider, users := setupProvider(t)
	_, err := users.Register(ctx, "naledi@example.com", "pw-pw-pw")
	require.NoError(t, err)

	stream := provider.SessionEvents(ctx)
	defer stream.Close()

	_, err = provider.SignInWithCredentials(ctx, "naledi@example.com", "pw-pw-pw")
	require.NoError(t, err)

	ev := <-stream.Receive(ctx)
	assert.Equal(t, authstate.EventSignedIn, ev.Type)
	require.NotNil(t, ev.Session)

	_, err = provider.RefreshSession(ctx)
	require.NoError(t, err)

	ev = <-stream.Receive(ctx)
	assert.Equal(t, authstate.EventTokenRefreshed, ev.Type)
	require.NotNil(t, ev.Session)

	require.NoError(t, provider.SignOut(ctx, authstate.SignOutLocal))

	ev = <-stream.Receive(ctx)
	assert.Equal(t, authstate.EventSignedOut, ev.Type)
	assert.Nil(t, ev.Session)

	// Signing out with no session publishes nothing.
	require.NoError(t, provider.SignOut(ctx, authstate.SignOutLocal))
	select {
	case ev := <-stream.Receive(ctx):
		t.Fatalf("unexpected event %q", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLocalProvider_EndToEndWithController(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	users := identity.NewMemoryUserStore()
	provider := identity.NewLocalProvider(users, "test-signing-secret")
	defer provider.Close()

	u, err := users.Register(ctx, "naledi@example.com", "pw-pw-pw")
	require.NoError(t, err)

	profiles := newProfileStoreWith(t, u.ID)

	ctrl := authstate.New(provider, profiles)
	defer ctrl.Close()
	require.NoError(t, ctrl.Bootstrap(ctx))
	require.Equal(t, authstate.PhaseUnauthenticated, ctrl.Current().Phase())

	require.NoError(t, ctrl.SignIn(ctx, "naledi@example.com", "pw-pw-pw"))
	assert.Equal(t, authstate.PhaseAuthenticated, ctrl.Current().Phase())

	require.NoError(t, ctrl.SignOut(ctx))
	assert.Equal(t, authstate.PhaseUnauthenticated, ctrl.Current().Phase())
}
