package profile

import (
	"time"

	"github.com/google/uuid"
)

// Role defines what a practitioner is allowed to do within a practice.
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// Profile is the enrichment record keyed by the authenticated identity.
// It links a user to a practice (tenant) and carries the attributes the
// application needs beyond what the identity provider knows.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"` // uuid.Nil while no practice is linked
	Role        Role      `json:"role"`
	DisplayName string    `json:"display_name"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasTenant reports whether the profile is linked to a practice.
func (p Profile) HasTenant() bool {
	return p.TenantID != uuid.Nil
}
