package identity

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrTokenInvalid       = errors.New("invalid session token")
	ErrProviderClosed     = errors.New("identity provider closed")
)
