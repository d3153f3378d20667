package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFilter carries the supported invoice list filters
type InvoiceFilter struct {
	Kind      *InvoiceKind
	Status    *InvoiceStatus
	PartyID   *uuid.UUID
	DueBefore *time.Time
	DueAfter  *time.Time
	Overdue   bool
	Offset    int
	Limit     int
}

// PaymentFilter carries the supported payment list filters
type PaymentFilter struct {
	Kind          *PaymentKind
	Status        *PaymentStatus
	PartyID       *uuid.UUID
	WithUnapplied bool
	Offset        int
	Limit         int
}

// AgingBucket is one row of the receivable/payable aging summary
type AgingBucket struct {
	Label  string          `json:"label"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// InvoiceRepository persists invoice aggregates
type InvoiceRepository interface {
	// FindByID finds an invoice by ID, shared.ErrNotFound if absent
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate loads an invoice with a row lock inside a transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByNumber finds an invoice by its document number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	// FindOpenByParty returns open invoices for a party, oldest due date first
	FindOpenByParty(ctx context.Context, kind InvoiceKind, partyID uuid.UUID) ([]*Invoice, error)
	// List returns invoices matching the filter plus the unpaged total
	List(ctx context.Context, filter InvoiceFilter) ([]*Invoice, int64, error)
	// Create inserts a new invoice
	Create(ctx context.Context, inv *Invoice) error
	// Save updates an existing invoice
	Save(ctx context.Context, inv *Invoice) error
	// SaveWithLock updates an invoice only if the stored version is unchanged
	SaveWithLock(ctx context.Context, inv *Invoice) error
	// AgingSummary buckets open invoice balances by days overdue
	AgingSummary(ctx context.Context, kind InvoiceKind, asOf time.Time) ([]AgingBucket, error)
}

// PaymentRepository persists payment aggregates
type PaymentRepository interface {
	// FindByID finds a payment by ID, shared.ErrNotFound if absent
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByIDForUpdate loads a payment with a row lock inside a transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByNumber finds a payment by its document number
	FindByNumber(ctx context.Context, number string) (*Payment, error)
	// List returns payments matching the filter plus the unpaged total
	List(ctx context.Context, filter PaymentFilter) ([]*Payment, int64, error)
	// Create inserts a new payment
	Create(ctx context.Context, p *Payment) error
	// Save updates an existing payment
	Save(ctx context.Context, p *Payment) error
	// SaveWithLock updates a payment only if the stored version is unchanged
	SaveWithLock(ctx context.Context, p *Payment) error
}

// ApplicationRepository persists payment applications
type ApplicationRepository interface {
	// FindByID finds an application by ID, shared.ErrNotFound if absent
	FindByID(ctx context.Context, id uuid.UUID) (*Application, error)
	// FindByIDForUpdate loads an application with a row lock inside a transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Application, error)
	// FindByPayment returns all applications of a payment, newest first
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]*Application, error)
	// FindByInvoice returns all applications against an invoice, newest first
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Application, error)
	// FindActiveByPaymentAndInvoice returns the active application linking the
	// pair, nil if none exists
	FindActiveByPaymentAndInvoice(ctx context.Context, paymentID, invoiceID uuid.UUID) (*Application, error)
	// FindActiveByPayment returns the active applications of a payment
	FindActiveByPayment(ctx context.Context, paymentID uuid.UUID) ([]*Application, error)
	// Create inserts a new application
	Create(ctx context.Context, app *Application) error
	// Save updates an existing application
	Save(ctx context.Context, app *Application) error
}
