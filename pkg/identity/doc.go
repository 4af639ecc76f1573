// Package identity provides a self-hosted identity provider for deployments
// that do not use a hosted authentication service. LocalProvider verifies
// email/password credentials with bcrypt, issues HS256-signed JWT session
// tokens and publishes sign-in, sign-out and token-refresh events on a
// session-change stream, implementing the full authstate.IdentityProvider
// contract.
package identity
