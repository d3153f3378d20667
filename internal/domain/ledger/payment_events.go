package ledger

import (
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Payment event types
const (
	EventPaymentCreated   = "payment.created"
	EventPaymentConfirmed = "payment.confirmed"
	EventPaymentCancelled = "payment.cancelled"
	EventPaymentReversed  = "payment.reversed"
)

const paymentAggregateType = "Payment"

// PaymentCreatedEvent is raised when a new payment is recorded
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	Number    string          `json:"number"`
	Kind      PaymentKind     `json:"kind"`
	PartyName string          `json:"party_name"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewPaymentCreatedEvent creates a new PaymentCreatedEvent
func NewPaymentCreatedEvent(p *Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentCreated, paymentAggregateType, p.ID),
		Number:          p.Number,
		Kind:            p.Kind,
		PartyName:       p.PartyName,
		Amount:          p.Amount,
	}
}

// PaymentConfirmedEvent is raised when a payment becomes applicable
type PaymentConfirmedEvent struct {
	shared.BaseDomainEvent
	Number string          `json:"number"`
	Amount decimal.Decimal `json:"amount"`
}

// NewPaymentConfirmedEvent creates a new PaymentConfirmedEvent
func NewPaymentConfirmedEvent(p *Payment) *PaymentConfirmedEvent {
	return &PaymentConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentConfirmed, paymentAggregateType, p.ID),
		Number:          p.Number,
		Amount:          p.Amount,
	}
}

// PaymentCancelledEvent is raised when a payment is cancelled
type PaymentCancelledEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
	Reason string `json:"reason"`
}

// NewPaymentCancelledEvent creates a new PaymentCancelledEvent
func NewPaymentCancelledEvent(p *Payment) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentCancelled, paymentAggregateType, p.ID),
		Number:          p.Number,
		Reason:          p.CancelReason,
	}
}

// PaymentReversedEvent is raised when a confirmed or cleared payment is reversed
type PaymentReversedEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
	Reason string `json:"reason"`
}

// NewPaymentReversedEvent creates a new PaymentReversedEvent
func NewPaymentReversedEvent(p *Payment) *PaymentReversedEvent {
	return &PaymentReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentReversed, paymentAggregateType, p.ID),
		Number:          p.Number,
		Reason:          p.ReverseReason,
	}
}
