package authstate

import (
	"time"

	"github.com/google/uuid"

	"github.com/dentora/dentkit/pkg/profile"
)

// Identity is the authenticated-user handle issued by the identity provider.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Session is the provider session bound to an identity.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Identity  Identity  `json:"identity"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired() bool {
	return s != nil && !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Phase is the consumer-visible summary of the session lifecycle.
type Phase string

const (
	PhaseUninitialized        Phase = "uninitialized"
	PhaseUnauthenticated      Phase = "unauthenticated"
	PhaseAuthenticated        Phase = "authenticated"
	PhaseAuthenticatedInvalid Phase = "authenticated_invalid"
)

// State is an immutable snapshot of the session lifecycle.
//
// Invariants:
//   - TenantID, Role and DisplayName are set iff Profile is present, active
//     and linked to a tenant; otherwise Error explains why.
//   - Identity absent implies Profile and all derived fields absent.
//   - A non-empty Error is always paired with Loading=false.
type State struct {
	Identity    *Identity        `json:"identity,omitempty"`
	Session     *Session         `json:"session,omitempty"`
	Profile     *profile.Profile `json:"profile,omitempty"`
	TenantID    uuid.UUID        `json:"tenant_id,omitempty"`
	Role        profile.Role     `json:"role,omitempty"`
	DisplayName string           `json:"display_name,omitempty"`
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
}

// Authenticated reports whether an identity has been resolved.
// While Loading is true the answer is not final.
func (s State) Authenticated() bool {
	return s.Identity != nil
}

// HasTenant reports whether the derived tenant projection is present.
func (s State) HasTenant() bool {
	return s.TenantID != uuid.Nil
}

// Phase classifies the snapshot for route guards and UI.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseUninitialized
	case s.Identity == nil:
		return PhaseUnauthenticated
	case s.HasTenant():
		return PhaseAuthenticated
	default:
		return PhaseAuthenticatedInvalid
	}
}

// stateFromCache rebuilds a terminal authenticated snapshot from the cached
// pair. Only fully validated pairs are ever cached, so the derived fields can
// be projected unconditionally.
func stateFromCache(cs *CachedSession) State {
	ident := cs.Identity
	p := cs.Profile
	return State{
		Identity:    &ident,
		Profile:     &p,
		TenantID:    p.TenantID,
		Role:        p.Role,
		DisplayName: p.DisplayName,
	}
}
