package billing

import (
	"time"

	"github.com/google/uuid"
)

// Status is the invoice lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusProforma  Status = "proforma"
	StatusFinalized Status = "finalized"
	StatusPaid      Status = "paid"
	StatusVoid      Status = "void"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusProforma, StatusFinalized, StatusPaid, StatusVoid:
		return true
	}
	return false
}

// PaymentMethod names how an invoice was settled.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentEFT  PaymentMethod = "eft"
)

// Patient is a tenant-scoped patient record.
type Patient struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	IDNumber    string    `json:"id_number,omitempty"`
	HomeAddress string    `json:"home_address,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName joins the patient's names for display.
func (p Patient) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Service is a tenant-scoped catalog entry for billable work.
// UnitPrice is in the practice currency's minor unit (cents).
type Service struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UnitPrice   int64     `json:"unit_price"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LineItem is one billed row on an invoice. ServiceID is uuid.Nil for
// free-text lines. Amounts are in cents.
type LineItem struct {
	ID          uuid.UUID `json:"id"`
	ServiceID   uuid.UUID `json:"service_id,omitempty"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	LineTotal   int64     `json:"line_total"`
}

// Payment is a settlement recorded against a finalized invoice. ChangeDue is
// set for cash payments that exceed the outstanding balance.
type Payment struct {
	ID         uuid.UUID     `json:"id"`
	Method     PaymentMethod `json:"method"`
	Amount     int64         `json:"amount"`
	ChangeDue  int64         `json:"change_due,omitempty"`
	Reference  string        `json:"reference,omitempty"`
	ReceivedAt time.Time     `json:"received_at"`
}

// Invoice is a tenant-scoped invoice or, when Quotation is set, a quote that
// never enters the payment lifecycle. Amounts are in cents.
type Invoice struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	PatientID   uuid.UUID  `json:"patient_id"`
	Status      Status     `json:"status"`
	Quotation   bool       `json:"quotation"`
	IssueDate   time.Time  `json:"issue_date"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Lines       []LineItem `json:"lines"`
	Payments    []Payment  `json:"payments,omitempty"`
	Subtotal    int64      `json:"subtotal"`
	Total       int64      `json:"total"`
	PaidAmount  int64      `json:"paid_amount"`
	Notes       string     `json:"notes,omitempty"`
	Terms       string     `json:"terms,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by,omitempty"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	FinalizedBy uuid.UUID  `json:"finalized_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Recalculate recomputes per-line and invoice totals from the line items.
func (inv *Invoice) Recalculate() {
	var subtotal int64
	for i := range inv.Lines {
		inv.Lines[i].LineTotal = int64(inv.Lines[i].Quantity) * inv.Lines[i].UnitPrice
		subtotal += inv.Lines[i].LineTotal
	}
	inv.Subtotal = subtotal
	inv.Total = subtotal
}

// Outstanding returns the unpaid balance.
func (inv *Invoice) Outstanding() int64 {
	if rem := inv.Total - inv.PaidAmount; rem > 0 {
		return rem
	}
	return 0
}

// Finalize locks the invoice for payment. Only drafts and proformas can be
// finalized, and quotations never can.
func (inv *Invoice) Finalize(by uuid.UUID, at time.Time) error {
	if inv.Quotation {
		return ErrQuotationImmutable
	}
	if inv.Status != StatusDraft && inv.Status != StatusProforma {
		return ErrInvalidTransition
	}
	inv.Recalculate()
	inv.Status = StatusFinalized
	inv.FinalizedAt = &at
	inv.FinalizedBy = by
	return nil
}

// RecordPayment applies a settlement to a finalized invoice. Cash overpayment
// becomes change due; other methods must not exceed the outstanding balance.
// The invoice moves to paid once the balance reaches zero.
func (inv *Invoice) RecordPayment(p Payment) error {
	if inv.Status != StatusFinalized {
		return ErrNotFinalized
	}
	if p.Amount <= 0 {
		return ErrInvalidPayment
	}

	outstanding := inv.Outstanding()
	applied := p.Amount
	if applied > outstanding {
		if p.Method != PaymentCash {
			return ErrInvalidPayment
		}
		p.ChangeDue = applied - outstanding
		applied = outstanding
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ReceivedAt.IsZero() {
		p.ReceivedAt = time.Now()
	}

	inv.Payments = append(inv.Payments, p)
	inv.PaidAmount += applied
	if inv.Outstanding() == 0 {
		inv.Status = StatusPaid
	}
	return nil
}

// Void cancels an invoice. Paid invoices cannot be voided.
func (inv *Invoice) Void() error {
	if inv.Status == StatusPaid || inv.Status == StatusVoid {
		return ErrInvalidTransition
	}
	inv.Status = StatusVoid
	return nil
}
