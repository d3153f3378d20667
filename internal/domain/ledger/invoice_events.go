package ledger

import (
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Invoice event types
const (
	EventInvoiceCreated   = "invoice.created"
	EventInvoiceApproved  = "invoice.approved"
	EventInvoicePaid      = "invoice.paid"
	EventInvoiceReopened  = "invoice.reopened"
	EventInvoiceCancelled = "invoice.cancelled"
	EventInvoiceVoided    = "invoice.voided"
)

const invoiceAggregateType = "Invoice"

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	Kind        InvoiceKind     `json:"kind"`
	PartyName   string          `json:"party_name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCreated, invoiceAggregateType, inv.ID),
		Number:          inv.Number,
		Kind:            inv.Kind,
		PartyName:       inv.PartyName,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceApprovedEvent is raised when an invoice transitions to OPEN
type InvoiceApprovedEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
}

// NewInvoiceApprovedEvent creates a new InvoiceApprovedEvent
func NewInvoiceApprovedEvent(inv *Invoice) *InvoiceApprovedEvent {
	return &InvoiceApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceApproved, invoiceAggregateType, inv.ID),
		Number:          inv.Number,
	}
}

// InvoicePaidEvent is raised when an invoice becomes fully paid
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoicePaid, invoiceAggregateType, inv.ID),
		Number:          inv.Number,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceReopenedEvent is raised when a reversal takes a paid invoice back to OPEN
type InvoiceReopenedEvent struct {
	shared.BaseDomainEvent
	Number    string          `json:"number"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

// NewInvoiceReopenedEvent creates a new InvoiceReopenedEvent
func NewInvoiceReopenedEvent(inv *Invoice) *InvoiceReopenedEvent {
	return &InvoiceReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceReopened, invoiceAggregateType, inv.ID),
		Number:          inv.Number,
		AmountDue:       inv.AmountDue,
	}
}

// InvoiceCancelledEvent is raised when a draft invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
	Reason string `json:"reason"`
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceCancelled, invoiceAggregateType, inv.ID),
		Number:          inv.Number,
		Reason:          inv.CancelReason,
	}
}

// InvoiceVoidedEvent is raised when an approved invoice is voided
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	Number         string        `json:"number"`
	Reason         string        `json:"reason"`
	PreviousStatus InvoiceStatus `json:"previous_status"`
}

// NewInvoiceVoidedEvent creates a new InvoiceVoidedEvent
func NewInvoiceVoidedEvent(inv *Invoice, previous InvoiceStatus) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoiceVoided, invoiceAggregateType, inv.ID),
		Number:          inv.Number,
		Reason:          inv.VoidReason,
		PreviousStatus:  previous,
	}
}
