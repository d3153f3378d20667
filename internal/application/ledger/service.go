package ledger

import (
	"context"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/sequence"
	"gorm.io/gorm"
)

// TxManager runs a function inside a database transaction. Implementations
// retry transparently on transient concurrency failures, so the function may
// execute more than once and must not have side effects outside the handle
// it is given.
type TxManager interface {
	RunInTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repositories bundles the persistence ports the ledger services need,
// all bound to the same database handle
type Repositories struct {
	Sequences    sequence.Repository
	Allocator    sequence.Allocator
	Invoices     ledger.InvoiceRepository
	Payments     ledger.PaymentRepository
	Applications ledger.ApplicationRepository
}

// RepositoryFactory builds repositories bound to a handle. Services call it
// with the transaction handle inside RunInTransaction so every read and write
// of one operation shares the transaction, and with the base handle for
// plain reads.
type RepositoryFactory func(db *gorm.DB) Repositories

// NumberingConfig controls how document numbers are rendered
type NumberingConfig struct {
	Width int // zero-padded width of the numeric part
}

// Document number prefixes and their backing sequences
const (
	ARInvoicePrefix    = "AR-"
	APInvoicePrefix    = "AP-"
	ReceiptPrefix      = "RV-"
	DisbursementPrefix = "PV-"

	ARInvoiceSequence    = "ar_invoice_seq"
	APInvoiceSequence    = "ap_invoice_seq"
	ReceiptSequence      = "receipt_seq"
	DisbursementSequence = "disbursement_seq"
)

// invoiceNumbering returns the sequence name and format for an invoice kind
func invoiceNumbering(kind ledger.InvoiceKind, width int) (string, sequence.NumberFormat) {
	if kind == ledger.InvoiceKindPayable {
		return APInvoiceSequence, sequence.NumberFormat{Prefix: APInvoicePrefix, Width: width}
	}
	return ARInvoiceSequence, sequence.NumberFormat{Prefix: ARInvoicePrefix, Width: width}
}

// paymentNumbering returns the sequence name and format for a payment kind
func paymentNumbering(kind ledger.PaymentKind, width int) (string, sequence.NumberFormat) {
	if kind == ledger.PaymentKindDisbursement {
		return DisbursementSequence, sequence.NumberFormat{Prefix: DisbursementPrefix, Width: width}
	}
	return ReceiptSequence, sequence.NumberFormat{Prefix: ReceiptPrefix, Width: width}
}
