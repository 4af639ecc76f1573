package profile

import "errors"

var (
	// ErrNotFound indicates no profile record exists for the identity.
	ErrNotFound = errors.New("profile not found")

	// ErrInvalidRole indicates the role is not part of the closed enumeration.
	ErrInvalidRole = errors.New("invalid profile role")
)
