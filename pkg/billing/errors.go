package billing

import "errors"

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrServiceNotFound    = errors.New("service not found")
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvalidTransition  = errors.New("invalid invoice status transition")
	ErrNotFinalized       = errors.New("invoice is not finalized")
	ErrInvalidPayment     = errors.New("invalid payment")
	ErrQuotationImmutable = errors.New("quotations cannot enter the payment lifecycle")
	ErrTenantMismatch     = errors.New("record belongs to another tenant")
)
