package authstate

import "errors"

// Flow control errors
var (
	ErrSignInInProgress    = errors.New("sign-in already in progress")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrAlreadyBootstrapped = errors.New("controller already bootstrapped")
)

// Timeout errors; their messages surface directly in State.Error.
var (
	ErrSessionCheckTimeout = errors.New("authentication check timed out")
	ErrProfileFetchTimeout = errors.New("profile fetch timed out")
	ErrSignInTimeout       = errors.New("sign-in timed out")
	ErrSignOutTimeout      = errors.New("sign-out timed out")
)

// Profile validation errors. Each one leaves the identity populated but the
// derived tenant fields absent; during sign-in they additionally tear down
// the freshly created provider session.
var (
	ErrProfileNotFound = errors.New("user profile not found, contact administrator")
	ErrProfileInactive = errors.New("account inactive, contact administrator")
	ErrNoTenantLinked  = errors.New("no tenant linked to this account")
)
