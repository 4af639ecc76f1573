package billing

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a concurrency-safe in-memory Store for tests and
// single-practice deployments without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]Patient
	services map[uuid.UUID]Service
	invoices map[uuid.UUID]Invoice
}

// NewMemoryStore creates an empty in-memory billing store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patients: make(map[uuid.UUID]Patient),
		services: make(map[uuid.UUID]Service),
		invoices: make(map[uuid.UUID]Invoice),
	}
}

func (s *MemoryStore) SavePatient(ctx context.Context, p Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.patients[p.ID]; ok {
		if existing.TenantID != p.TenantID {
			return ErrTenantMismatch
		}
		p.CreatedAt = existing.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.UpdatedAt = time.Now()
	s.patients[p.ID] = p
	return nil
}

func (s *MemoryStore) PatientByID(ctx context.Context, tenantID, id uuid.UUID) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok || p.TenantID != tenantID {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListPatients(ctx context.Context, tenantID uuid.UUID) ([]Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Patient
	for _, p := range s.patients {
		if p.TenantID == tenantID && p.Active {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b Patient) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) SaveService(ctx context.Context, svc Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.services[svc.ID]; ok {
		if existing.TenantID != svc.TenantID {
			return ErrTenantMismatch
		}
		svc.CreatedAt = existing.CreatedAt
	} else if svc.CreatedAt.IsZero() {
		svc.CreatedAt = time.Now()
	}
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	svc.UpdatedAt = time.Now()
	s.services[svc.ID] = svc
	return nil
}

func (s *MemoryStore) ServiceByID(ctx context.Context, tenantID, id uuid.UUID) (*Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok || svc.TenantID != tenantID {
		return nil, ErrServiceNotFound
	}
	return &svc, nil
}

func (s *MemoryStore) ListServices(ctx context.Context, tenantID uuid.UUID) ([]Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Service
	for _, svc := range s.services {
		if svc.TenantID == tenantID && svc.Active {
			out = append(out, svc)
		}
	}
	slices.SortFunc(out, func(a, b Service) int {
		if a.Code < b.Code {
			return -1
		}
		if a.Code > b.Code {
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *MemoryStore) SaveInvoice(ctx context.Context, inv Invoice) error {
	if !inv.Status.Valid() {
		return ErrInvalidTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.invoices[inv.ID]; ok {
		if existing.TenantID != inv.TenantID {
			return ErrTenantMismatch
		}
		inv.CreatedAt = existing.CreatedAt
	} else if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.UpdatedAt = time.Now()

	// Deep-copy slices so callers cannot mutate stored state.
	inv.Lines = slices.Clone(inv.Lines)
	inv.Payments = slices.Clone(inv.Payments)
	s.invoices[inv.ID] = inv
	return nil
}

func (s *MemoryStore) InvoiceByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, ErrInvoiceNotFound
	}
	inv.Lines = slices.Clone(inv.Lines)
	inv.Payments = slices.Clone(inv.Payments)
	return &inv, nil
}

func (s *MemoryStore) ListInvoices(ctx context.Context, tenantID uuid.UUID, f InvoiceFilter) ([]Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Invoice
	for _, inv := range s.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if f.PatientID != uuid.Nil && inv.PatientID != f.PatientID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.Quotation != nil && inv.Quotation != *f.Quotation {
			continue
		}
		inv.Lines = slices.Clone(inv.Lines)
		inv.Payments = slices.Clone(inv.Payments)
		out = append(out, inv)
	}
	slices.SortFunc(out, func(a, b Invoice) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
