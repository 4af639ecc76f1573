package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice listings. Zero values match everything.
type InvoiceFilter struct {
	PatientID uuid.UUID
	Status    Status
	Quotation *bool
}

// Store persists tenant-scoped billing records. Every lookup takes the tenant
// id so a record from another practice can never be returned.
type Store interface {
	// SavePatient inserts or updates a patient.
	SavePatient(ctx context.Context, p Patient) error

	// PatientByID retrieves a patient, or ErrPatientNotFound.
	PatientByID(ctx context.Context, tenantID, id uuid.UUID) (*Patient, error)

	// ListPatients returns the tenant's active patients.
	ListPatients(ctx context.Context, tenantID uuid.UUID) ([]Patient, error)

	// SaveService inserts or updates a catalog service.
	SaveService(ctx context.Context, s Service) error

	// ServiceByID retrieves a service, or ErrServiceNotFound.
	ServiceByID(ctx context.Context, tenantID, id uuid.UUID) (*Service, error)

	// ListServices returns the tenant's active catalog services.
	ListServices(ctx context.Context, tenantID uuid.UUID) ([]Service, error)

	// SaveInvoice inserts or updates an invoice with its lines and payments.
	SaveInvoice(ctx context.Context, inv Invoice) error

	// InvoiceByID retrieves an invoice, or ErrInvoiceNotFound.
	InvoiceByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// ListInvoices returns the tenant's invoices matching the filter, newest
	// first.
	ListInvoices(ctx context.Context, tenantID uuid.UUID, f InvoiceFilter) ([]Invoice, error)
}
