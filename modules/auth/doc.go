// Package auth mounts the session lifecycle controller as a JSON API:
// login, logout, profile refresh and session inspection endpoints, plus the
// RequireAuth, RequireTenant and RequireRole route guards that read lifecycle
// snapshots.
package auth
