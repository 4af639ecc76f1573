package billing

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists billing records across the patients, services,
// invoices, invoice_lines and invoice_payments tables.
// See migrations/00002_create_billing.sql for the schema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a billing store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) SavePatient(ctx context.Context, p Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	const query = `
		INSERT INTO patients (id, tenant_id, first_name, last_name, email, phone,
			id_number, home_address, notes, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			id_number = EXCLUDED.id_number,
			home_address = EXCLUDED.home_address,
			notes = EXCLUDED.notes,
			active = EXCLUDED.active,
			updated_at = now()
		WHERE patients.tenant_id = EXCLUDED.tenant_id`

	tag, err := s.pool.Exec(ctx, query, p.ID, p.TenantID, p.FirstName, p.LastName,
		p.Email, p.Phone, p.IDNumber, p.HomeAddress, p.Notes, p.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantMismatch
	}
	return nil
}

func (s *PostgresStore) PatientByID(ctx context.Context, tenantID, id uuid.UUID) (*Patient, error) {
	const query = `
		SELECT id, tenant_id, first_name, last_name, email, phone, id_number,
			home_address, notes, active, created_at, updated_at
		FROM patients
		WHERE tenant_id = $1 AND id = $2`

	var p Patient
	err := s.pool.QueryRow(ctx, query, tenantID, id).Scan(
		&p.ID, &p.TenantID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.IDNumber, &p.HomeAddress, &p.Notes, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) ListPatients(ctx context.Context, tenantID uuid.UUID) ([]Patient, error) {
	const query = `
		SELECT id, tenant_id, first_name, last_name, email, phone, id_number,
			home_address, notes, active, created_at, updated_at
		FROM patients
		WHERE tenant_id = $1 AND active
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
			&p.IDNumber, &p.HomeAddress, &p.Notes, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveService(ctx context.Context, svc Service) error {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}

	const query = `
		INSERT INTO services (id, tenant_id, code, name, description, unit_price, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			unit_price = EXCLUDED.unit_price,
			active = EXCLUDED.active,
			updated_at = now()
		WHERE services.tenant_id = EXCLUDED.tenant_id`

	tag, err := s.pool.Exec(ctx, query, svc.ID, svc.TenantID, svc.Code, svc.Name,
		svc.Description, svc.UnitPrice, svc.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantMismatch
	}
	return nil
}

func (s *PostgresStore) ServiceByID(ctx context.Context, tenantID, id uuid.UUID) (*Service, error) {
	const query = `
		SELECT id, tenant_id, code, name, description, unit_price, active,
			created_at, updated_at
		FROM services
		WHERE tenant_id = $1 AND id = $2`

	var svc Service
	err := s.pool.QueryRow(ctx, query, tenantID, id).Scan(
		&svc.ID, &svc.TenantID, &svc.Code, &svc.Name, &svc.Description,
		&svc.UnitPrice, &svc.Active, &svc.CreatedAt, &svc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (s *PostgresStore) ListServices(ctx context.Context, tenantID uuid.UUID) ([]Service, error) {
	const query = `
		SELECT id, tenant_id, code, name, description, unit_price, active,
			created_at, updated_at
		FROM services
		WHERE tenant_id = $1 AND active
		ORDER BY code`

	rows, err := s.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(
			&svc.ID, &svc.TenantID, &svc.Code, &svc.Name, &svc.Description,
			&svc.UnitPrice, &svc.Active, &svc.CreatedAt, &svc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

// SaveInvoice writes the invoice and replaces its lines and payments in one
// transaction.
func (s *PostgresStore) SaveInvoice(ctx context.Context, inv Invoice) error {
	if !inv.Status.Valid() {
		return ErrInvalidTransition
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const upsert = `
		INSERT INTO invoices (id, tenant_id, patient_id, status, quotation,
			issue_date, due_date, subtotal, total, paid_amount, notes, terms,
			created_by, finalized_at, finalized_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			patient_id = EXCLUDED.patient_id,
			status = EXCLUDED.status,
			quotation = EXCLUDED.quotation,
			issue_date = EXCLUDED.issue_date,
			due_date = EXCLUDED.due_date,
			subtotal = EXCLUDED.subtotal,
			total = EXCLUDED.total,
			paid_amount = EXCLUDED.paid_amount,
			notes = EXCLUDED.notes,
			terms = EXCLUDED.terms,
			finalized_at = EXCLUDED.finalized_at,
			finalized_by = EXCLUDED.finalized_by,
			updated_at = now()
		WHERE invoices.tenant_id = EXCLUDED.tenant_id`

	var createdBy, finalizedBy *uuid.UUID
	if inv.CreatedBy != uuid.Nil {
		createdBy = &inv.CreatedBy
	}
	if inv.FinalizedBy != uuid.Nil {
		finalizedBy = &inv.FinalizedBy
	}

	tag, err := tx.Exec(ctx, upsert, inv.ID, inv.TenantID, inv.PatientID, inv.Status,
		inv.Quotation, inv.IssueDate, inv.DueDate, inv.Subtotal, inv.Total,
		inv.PaidAmount, inv.Notes, inv.Terms, createdBy, inv.FinalizedAt, finalizedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantMismatch
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, inv.ID); err != nil {
		return err
	}
	for i, line := range inv.Lines {
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		var serviceID *uuid.UUID
		if line.ServiceID != uuid.Nil {
			serviceID = &line.ServiceID
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO invoice_lines (id, invoice_id, line_order, service_id,
				description, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			line.ID, inv.ID, i, serviceID, line.Description, line.Quantity,
			line.UnitPrice, line.LineTotal); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_payments WHERE invoice_id = $1`, inv.ID); err != nil {
		return err
	}
	for _, p := range inv.Payments {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO invoice_payments (id, invoice_id, method, amount,
				change_due, reference, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, inv.ID, p.Method, p.Amount, p.ChangeDue, p.Reference, p.ReceivedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) InvoiceByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error) {
	const query = `
		SELECT id, tenant_id, patient_id, status, quotation, issue_date, due_date,
			subtotal, total, paid_amount, notes, terms, created_by, finalized_at,
			finalized_by, created_at, updated_at
		FROM invoices
		WHERE tenant_id = $1 AND id = $2`

	inv, err := scanInvoice(s.pool.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if err := s.loadInvoiceChildren(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *PostgresStore) ListInvoices(ctx context.Context, tenantID uuid.UUID, f InvoiceFilter) ([]Invoice, error) {
	query := `
		SELECT id, tenant_id, patient_id, status, quotation, issue_date, due_date,
			subtotal, total, paid_amount, notes, terms, created_by, finalized_at,
			finalized_by, created_at, updated_at
		FROM invoices
		WHERE tenant_id = $1`
	args := []any{tenantID}

	if f.PatientID != uuid.Nil {
		args = append(args, f.PatientID)
		query += ` AND patient_id = $` + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if f.Quotation != nil {
		args = append(args, *f.Quotation)
		query += ` AND quotation = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := s.loadInvoiceChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) loadInvoiceChildren(ctx context.Context, inv *Invoice) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, service_id, description, quantity, unit_price, line_total
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY line_order`, inv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line      LineItem
			serviceID *uuid.UUID
		)
		if err := rows.Scan(&line.ID, &serviceID, &line.Description,
			&line.Quantity, &line.UnitPrice, &line.LineTotal); err != nil {
			return err
		}
		if serviceID != nil {
			line.ServiceID = *serviceID
		}
		inv.Lines = append(inv.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	prows, err := s.pool.Query(ctx, `
		SELECT id, method, amount, change_due, reference, received_at
		FROM invoice_payments
		WHERE invoice_id = $1
		ORDER BY received_at`, inv.ID)
	if err != nil {
		return err
	}
	defer prows.Close()

	for prows.Next() {
		var p Payment
		if err := prows.Scan(&p.ID, &p.Method, &p.Amount, &p.ChangeDue,
			&p.Reference, &p.ReceivedAt); err != nil {
			return err
		}
		inv.Payments = append(inv.Payments, p)
	}
	return prows.Err()
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var (
		inv                    Invoice
		createdBy, finalizedBy *uuid.UUID
	)
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.PatientID, &inv.Status, &inv.Quotation,
		&inv.IssueDate, &inv.DueDate, &inv.Subtotal, &inv.Total, &inv.PaidAmount,
		&inv.Notes, &inv.Terms, &createdBy, &inv.FinalizedAt, &finalizedBy,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		inv.CreatedBy = *createdBy
	}
	if finalizedBy != nil {
		inv.FinalizedBy = *finalizedBy
	}
	return &inv, nil
}
