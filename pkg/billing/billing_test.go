package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentora/dentkit/pkg/billing"
)

func draftInvoice(tenantID uuid.UUID) billing.Invoice {
	inv := billing.Invoice{
		ID:        uuid.New(),
		TenantID:  tenantID,
		PatientID: uuid.New(),
		Status:    billing.StatusDraft,
		IssueDate: time.Now(),
		Lines: []billing.LineItem{
			{ID: uuid.New(), Description: "Consultation", Quantity: 1, UnitPrice: 45000},
			{ID: uuid.New(), Description: "Composite filling", Quantity: 2, UnitPrice: 80000},
		},
	}
	inv.Recalculate()
	return inv
}

func TestInvoice_Recalculate(t *testing.T) {
	t.Parallel()

	inv := draftInvoice(uuid.New())
	assert.Equal(t, int64(45000), inv.Lines[0].LineTotal)
	assert.Equal(t, int64(160000), inv.Lines[1].LineTotal)
	assert.Equal(t, int64(205000), inv.Subtotal)
	assert.Equal(t, int64(205000), inv.Total)
}

func TestInvoice_Finalize(t *testing.T) {
	t.Parallel()

	t.Run("draft finalizes", func(t *testing.T) {
		t.Parallel()

		inv := draftInvoice(uuid.New())
		by := uuid.New()
		require.NoError(t, inv.Finalize(by, time.Now()))
		assert.Equal(t, billing.StatusFinalized, inv.Status)
		assert.Equal(t, by, inv.FinalizedBy)
		require.NotNil(t, inv.FinalizedAt)
	})

	t.Run("quotation refuses", func(t *testing.T) {
		t.Parallel()

		inv := draftInvoice(uuid.New())
		inv.Quotation = true
		assert.ErrorIs(t, inv.Finalize(uuid.New(), time.Now()), billing.ErrQuotationImmutable)
	})

	t.Run("double finalize refuses", func(t *testing.T) {
		t.Parallel()

		inv := draftInvoice(uuid.New())
		require.NoError(t, inv.Finalize(uuid.New(), time.Now()))
		assert.ErrorIs(t, inv.Finalize(uuid.New(), time.Now()), billing.ErrInvalidTransition)
	})
}

func TestInvoice_RecordPayment(t *testing.T) {
	t.Parallel()

	t.Run("draft rejects payment", func(t *testing.T) {
		t.Parallel()

		inv := draftInvoice(uuid.New())
		err := inv.RecordPayment(billing.Payment{Method: billing.PaymentCard, Amount: 100})
		assert.ErrorIs(t, err, billing.ErrNotFinalized)
	})

	t.Run("partial then settling payment", func(t *testing.T) {
		t.Parallel()

		inv := draftInvoice(uuid.New())
		require.NoError(t, inv.Finalize(uuid.New(), time.Now()))

		require.NoError(t, inv.RecordPayment(billing.Payment{Method: billing.PaymentCard, Amount: 100000}))
		assert.Equal(t, billing.StatusFinalized, inv.Status)
		assert.Equal(t, int64(105000), inv.Outstanding())

		require.NoError(t, inv.RecordPayment(billing.Payment{Method: billing.PaymentEFT, Amount: 105000}))
		assert.Equal(t, billing.StatusPaid, inv.Status)
		assert.Zero(t, inv.Outstanding())
		assert.Len(t, inv.Payments, 2)
	})

	t.Run("cash overpayment yields change", func(t *testing.T) {
		t.Parallel()

		inv := draftInvoice(uuid.New())
		require.NoError(t, inv.Finalize(uuid.New(), time.Now()))

		require.NoError(t, inv.RecordPayment(billing.Payment{Method: billing.PaymentCash, Amount: 250000}))
		assert.Equal(t, billing.StatusPaid, inv.Status)
		assert.Equal(t, int64(205000), inv.PaidAmount)
		assert.Equal(t, int64(45000), inv.Payments[0].ChangeDue)
	})

	t.Run("card overpayment rejected", func(t *testing.T) {
		t.Parallel()

		inv := draftInvoice(uuid.New())
		require.NoError(t, inv.Finalize(uuid.New(), time.Now()))

		err := inv.RecordPayment(billing.Payment{Method: billing.PaymentCard, Amount: 250000})
		assert.ErrorIs(t, err, billing.ErrInvalidPayment)
	})
}

func TestInvoice_Void(t *testing.T) {
	t.Parallel()

	inv := draftInvoice(uuid.New())
	require.NoError(t, inv.Void())
	assert.Equal(t, billing.StatusVoid, inv.Status)

	paid := draftInvoice(uuid.New())
	require.NoError(t, paid.Finalize(uuid.New(), time.Now()))
	require.NoError(t, paid.RecordPayment(billing.Payment{Method: billing.PaymentCard, Amount: paid.Total}))
	assert.ErrorIs(t, paid.Void(), billing.ErrInvalidTransition)
}

func TestMemoryStore_TenantIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := billing.NewMemoryStore()
	tenantA, tenantB := uuid.New(), uuid.New()

	p := billing.Patient{ID: uuid.New(), TenantID: tenantA, FirstName: "Thandi", LastName: "Mokoena", Active: true}
	require.NoError(t, store.SavePatient(ctx, p))

	got, err := store.PatientByID(ctx, tenantA, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thandi Mokoena", got.FullName())

	_, err = store.PatientByID(ctx, tenantB, p.ID)
	assert.ErrorIs(t, err, billing.ErrPatientNotFound)

	// An update claiming another tenant must not move the record.
	p.TenantID = tenantB
	assert.ErrorIs(t, store.SavePatient(ctx, p), billing.ErrTenantMismatch)
}

func TestMemoryStore_Invoices(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := billing.NewMemoryStore()
	tenantID := uuid.New()

	inv := draftInvoice(tenantID)
	require.NoError(t, store.SaveInvoice(ctx, inv))

	quote := draftInvoice(tenantID)
	quote.Quotation = true
	quote.CreatedAt = time.Now().Add(time.Second)
	require.NoError(t, store.SaveInvoice(ctx, quote))

	t.Run("round trip keeps lines", func(t *testing.T) {
		got, err := store.InvoiceByID(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		assert.Len(t, got.Lines, 2)
		assert.Equal(t, inv.Total, got.Total)
	})

	t.Run("quotation filter", func(t *testing.T) {
		isQuote := true
		got, err := store.ListInvoices(ctx, tenantID, billing.InvoiceFilter{Quotation: &isQuote})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, quote.ID, got[0].ID)
	})

	t.Run("status filter after finalize", func(t *testing.T) {
		got, err := store.InvoiceByID(ctx, tenantID, inv.ID)
		require.NoError(t, err)
		require.NoError(t, got.Finalize(uuid.New(), time.Now()))
		require.NoError(t, store.SaveInvoice(ctx, *got))

		listed, err := store.ListInvoices(ctx, tenantID, billing.InvoiceFilter{Status: billing.StatusFinalized})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, inv.ID, listed[0].ID)
	})

	t.Run("wrong tenant sees nothing", func(t *testing.T) {
		_, err := store.InvoiceByID(ctx, uuid.New(), inv.ID)
		assert.ErrorIs(t, err, billing.ErrInvoiceNotFound)
	})
}
