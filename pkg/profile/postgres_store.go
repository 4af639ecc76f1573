package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists profiles in the user_profiles table.
// See migrations/00001_create_user_profiles.sql for the schema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a profile store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ByIdentity(ctx context.Context, id uuid.UUID) (*Profile, error) {
	const query = `
		SELECT id, tenant_id, role, display_name, active, created_at, updated_at
		FROM user_profiles
		WHERE id = $1`

	var (
		p        Profile
		tenantID *uuid.UUID
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &tenantID, &p.Role, &p.DisplayName, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if tenantID != nil {
		p.TenantID = *tenantID
	}
	return &p, nil
}

func (s *PostgresStore) Save(ctx context.Context, p Profile) error {
	if !p.Role.Valid() {
		return ErrInvalidRole
	}

	const query = `
		INSERT INTO user_profiles (id, tenant_id, role, display_name, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			tenant_id = EXCLUDED.tenant_id,
			role = EXCLUDED.role,
			display_name = EXCLUDED.display_name,
			active = EXCLUDED.active,
			updated_at = now()`

	// NULL tenant_id models the not-yet-linked state distinctly from a zero value.
	var tenantID *uuid.UUID
	if p.TenantID != uuid.Nil {
		tenantID = &p.TenantID
	}

	_, err := s.pool.Exec(ctx, query, p.ID, tenantID, p.Role, p.DisplayName, p.Active)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	return err
}
