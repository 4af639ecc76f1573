package authstate

import (
	"context"

	"github.com/google/uuid"

	"github.com/dentora/dentkit/pkg/profile"
)

// SignOutScope controls how far a provider sign-out reaches.
type SignOutScope string

const (
	// SignOutLocal revokes only this device's session. The controller always
	// signs out locally to avoid locking the user out of other devices.
	SignOutLocal SignOutScope = "local"

	// SignOutGlobal revokes every session the provider holds for the user.
	SignOutGlobal SignOutScope = "global"
)

// EventType classifies session-change events emitted by the provider.
type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventTokenRefreshed EventType = "token_refreshed"
)

// SessionEvent is one entry in the provider's session-change stream.
// Session is nil for sign-out events.
type SessionEvent struct {
	Type    EventType
	Session *Session
}

// EventStream is a cancellable subscription to the provider's session-change
// stream. Close releases the subscription; closing twice is safe.
type EventStream interface {
	Receive(ctx context.Context) <-chan SessionEvent
	Close() error
}

// IdentityProvider abstracts the external identity service.
// All calls are suspension points and may be raced against timeouts by the
// controller; implementations should honor context cancellation.
type IdentityProvider interface {
	// CurrentSession returns the active session, or (nil, nil) when the
	// provider holds no session for this client.
	CurrentSession(ctx context.Context) (*Session, error)

	// SignInWithCredentials exchanges credentials for a session.
	SignInWithCredentials(ctx context.Context, email, password string) (*Session, error)

	// SignOut revokes the session within the given scope.
	SignOut(ctx context.Context, scope SignOutScope) error

	// SessionEvents subscribes to session changes. The subscription lives
	// until ctx is cancelled or the stream is closed.
	SessionEvents(ctx context.Context) EventStream
}

// ProfileStore is the profile-enrichment lookup consumed by the controller.
// Implementations must return profile.ErrNotFound when no record exists.
type ProfileStore interface {
	ByIdentity(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
}
