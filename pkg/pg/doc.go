// Package pg wires the PostgreSQL layer: a retrying pgxpool connector, goose
// migrations and a health probe, plus small helpers for classifying common
// pgx errors.
package pg
