package profile

import (
	"context"

	"github.com/google/uuid"
)

// Store loads and persists profile records.
// Implementations must return ErrNotFound when no record matches.
type Store interface {
	// ByIdentity retrieves the profile keyed by the authenticated user id.
	ByIdentity(ctx context.Context, id uuid.UUID) (*Profile, error)

	// Save creates or replaces the profile record.
	Save(ctx context.Context, p Profile) error

	// Delete removes the profile record. Deleting a missing record is a no-op.
	Delete(ctx context.Context, id uuid.UUID) error
}
