package authstate

import "time"

// BootPolicy selects how Bootstrap resolves state when the session cache is cold.
type BootPolicy string

const (
	// BootBoundedCheck asks the identity provider for the current session,
	// racing the call against SessionCheckTimeout. Correct on reload at the
	// cost of one provider round trip at startup.
	BootBoundedCheck BootPolicy = "bounded"

	// BootFastPath resolves immediately with empty state and relies on the
	// provider event stream to restore a valid session asynchronously.
	// Fastest possible startup, but a signed-in user briefly appears
	// signed out until the first event arrives.
	BootFastPath BootPolicy = "fast"
)

// Config holds the controller's timeout and boot policy knobs.
type Config struct {
	BootPolicy BootPolicy `env:"AUTH_BOOT_POLICY" envDefault:"bounded"`

	// SessionCheckTimeout bounds the bootstrap session check.
	SessionCheckTimeout time.Duration `env:"AUTH_SESSION_CHECK_TIMEOUT" envDefault:"2s"`

	// ProfileFetchTimeout bounds every profile enrichment query.
	ProfileFetchTimeout time.Duration `env:"AUTH_PROFILE_FETCH_TIMEOUT" envDefault:"5s"`

	// SignInTimeout bounds the credential exchange with the provider.
	SignInTimeout time.Duration `env:"AUTH_SIGNIN_TIMEOUT" envDefault:"10s"`

	// SignOutTimeout bounds the best-effort provider sign-out call.
	SignOutTimeout time.Duration `env:"AUTH_SIGNOUT_TIMEOUT" envDefault:"5s"`
}

// DefaultConfig returns the controller defaults.
func DefaultConfig() Config {
	return Config{
		BootPolicy:          BootBoundedCheck,
		SessionCheckTimeout: 2 * time.Second,
		ProfileFetchTimeout: 5 * time.Second,
		SignInTimeout:       10 * time.Second,
		SignOutTimeout:      5 * time.Second,
	}
}
