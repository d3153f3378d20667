package ledger

import (
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentKind distinguishes money received (receipts, settling receivables)
// from money paid out (disbursements, settling payables)
type PaymentKind string

const (
	PaymentKindReceipt      PaymentKind = "RECEIPT"
	PaymentKindDisbursement PaymentKind = "DISBURSEMENT"
)

// IsValid checks if the kind is a valid PaymentKind
func (k PaymentKind) IsValid() bool {
	return k == PaymentKindReceipt || k == PaymentKindDisbursement
}

// String returns the string representation of PaymentKind
func (k PaymentKind) String() string {
	return string(k)
}

// InvoiceKind returns the invoice kind this payment kind settles
func (k PaymentKind) InvoiceKind() InvoiceKind {
	if k == PaymentKindReceipt {
		return InvoiceKindReceivable
	}
	return InvoiceKindPayable
}

// PaymentStatus represents the lifecycle status of a payment
type PaymentStatus string

const (
	PaymentStatusDraft     PaymentStatus = "DRAFT"     // Recorded, funds not yet confirmed
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED" // Funds confirmed, may be applied
	PaymentStatusCleared   PaymentStatus = "CLEARED"   // Settled by the bank
	PaymentStatusCancelled PaymentStatus = "CANCELLED" // Cancelled before confirmation took effect
	PaymentStatusReversed  PaymentStatus = "REVERSED"  // Reversed after confirmation (e.g. bounced)
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusDraft, PaymentStatusConfirmed, PaymentStatusCleared,
		PaymentStatusCancelled, PaymentStatusReversed:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the payment can never change again
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCancelled || s == PaymentStatusReversed
}

// IsApplicable returns true if the payment can be applied to invoices
func (s PaymentStatus) IsApplicable() bool {
	return s == PaymentStatusConfirmed || s == PaymentStatusCleared
}

// PaymentMethod represents how the payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheck,
		PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// Payment represents a received or disbursed payment aggregate root.
// AmountApplied and AmountUnapplied are mutated only by the application
// engine inside an application transaction.
type Payment struct {
	shared.BaseAggregateRoot
	Number          string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Kind            PaymentKind          `gorm:"type:varchar(20);not null;index"`
	PartyID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	PartyName       string               `gorm:"type:varchar(200);not null"`
	PaymentDate     time.Time            `gorm:"not null;index"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null"`
	Amount          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountApplied   decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountUnapplied decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Method          PaymentMethod        `gorm:"type:varchar(20);not null"`
	Reference       string               `gorm:"type:varchar(100)"`
	Status          PaymentStatus        `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Remark          string               `gorm:"type:text"`
	ConfirmedAt     *time.Time
	ClearedAt       *time.Time
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:varchar(500)"`
	ReversedAt      *time.Time
	ReverseReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a new payment in DRAFT status with nothing applied
func NewPayment(
	kind PaymentKind,
	number string,
	partyID uuid.UUID,
	partyName string,
	paymentDate time.Time,
	amount valueobject.Money,
	method PaymentMethod,
	reference string,
) (*Payment, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment kind is not valid")
	}
	if number == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment number cannot exceed 50 characters")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Party ID cannot be empty")
	}
	if partyName == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Party name cannot be empty")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment date is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}
	if !amount.Currency().IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Currency is not supported")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment method is not valid")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Kind:              kind,
		PartyID:           partyID,
		PartyName:         partyName,
		PaymentDate:       paymentDate,
		Currency:          amount.Currency(),
		Amount:            amount.Amount(),
		AmountApplied:     decimal.Zero,
		AmountUnapplied:   amount.Amount(),
		Method:            method,
		Reference:         reference,
		Status:            PaymentStatusDraft,
	}

	p.AddDomainEvent(NewPaymentCreatedEvent(p))

	return p, nil
}

// Confirm transitions the payment from DRAFT to CONFIRMED, making it
// eligible for application to invoices
func (p *Payment) Confirm() error {
	if p.Status != PaymentStatusDraft {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot confirm payment in %s status", p.Status))
	}

	now := time.Now()
	p.Status = PaymentStatusConfirmed
	p.ConfirmedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentConfirmedEvent(p))

	return nil
}

// MarkCleared records bank settlement of a confirmed payment.
// Applications made while CONFIRMED stay intact.
func (p *Payment) MarkCleared() error {
	if p.Status != PaymentStatusConfirmed {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot clear payment in %s status", p.Status))
	}

	now := time.Now()
	p.Status = PaymentStatusCleared
	p.ClearedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// Cancel cancels a payment that has no applied amount. Payments with active
// applications must have them reversed before cancellation.
func (p *Payment) Cancel(reason string) error {
	if p.Status != PaymentStatusDraft && p.Status != PaymentStatusConfirmed {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot cancel payment in %s status", p.Status))
	}
	if p.AmountApplied.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot cancel payment with active applications; reverse them first")
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Cancel reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusCancelled
	p.CancelledAt = &now
	p.CancelReason = reason
	p.AmountUnapplied = decimal.Zero
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentCancelledEvent(p))

	return nil
}

// Reverse reverses a cleared payment, e.g. for a bounced check. All active
// applications must have been reversed first.
func (p *Payment) Reverse(reason string) error {
	if p.Status != PaymentStatusConfirmed && p.Status != PaymentStatusCleared {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot reverse payment in %s status", p.Status))
	}
	if p.AmountApplied.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot reverse payment with active applications; reverse them first")
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Reverse reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusReversed
	p.ReversedAt = &now
	p.ReverseReason = reason
	p.AmountUnapplied = decimal.Zero
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentReversedEvent(p))

	return nil
}

// AllocateAmount records an applied amount on the payment side.
// Called only by the application engine inside an application transaction.
func (p *Payment) AllocateAmount(amount valueobject.Money) error {
	if !p.Status.IsApplicable() {
		return shared.NewDomainError("PAYMENT_NOT_APPLICABLE",
			fmt.Sprintf("Cannot apply payment in %s status", p.Status))
	}
	if amount.Currency() != p.Currency {
		return shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Applied amount currency %s does not match payment currency %s", amount.Currency(), p.Currency))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Applied amount must be positive")
	}
	if amount.Amount().GreaterThan(p.AmountUnapplied) {
		return shared.NewDomainError("OVER_APPLICATION",
			fmt.Sprintf("Applied amount %s exceeds unapplied balance %s", amount.StringFixed(2), p.AmountUnapplied.StringFixed(2)))
	}

	p.AmountApplied = p.AmountApplied.Add(amount.Amount())
	p.AmountUnapplied = p.Amount.Sub(p.AmountApplied)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// ReleaseAmount returns a previously applied amount to the unapplied balance.
// Called only by the application engine when an application is reversed.
func (p *Payment) ReleaseAmount(amount valueobject.Money) error {
	if p.Status != PaymentStatusConfirmed && p.Status != PaymentStatusCleared {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot release applied amount on payment in %s status", p.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Released amount must be positive")
	}
	if amount.Amount().GreaterThan(p.AmountApplied) {
		return shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Released amount %s exceeds applied amount %s", amount.StringFixed(2), p.AmountApplied.StringFixed(2)))
	}

	p.AmountApplied = p.AmountApplied.Sub(amount.Amount())
	p.AmountUnapplied = p.Amount.Sub(p.AmountApplied)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetRemark sets the remark
func (p *Payment) SetRemark(remark string) {
	p.Remark = remark
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Helper methods

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.Amount, p.Currency)
	return m
}

// GetAmountAppliedMoney returns the applied amount as Money
func (p *Payment) GetAmountAppliedMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.AmountApplied, p.Currency)
	return m
}

// GetAmountUnappliedMoney returns the unapplied balance as Money
func (p *Payment) GetAmountUnappliedMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.AmountUnapplied, p.Currency)
	return m
}

// IsFullyApplied returns true if the entire payment amount has been applied
func (p *Payment) IsFullyApplied() bool {
	return p.AmountUnapplied.IsZero() && !p.Status.IsTerminal()
}
