// Package profile defines the enrichment record attached to an authenticated
// identity: the practice (tenant) the user belongs to, their role within it,
// a display name and an active flag. Profiles live outside the identity
// provider and are loaded through the Store interface; a Postgres
// implementation and an in-memory implementation ship with the package.
package profile
