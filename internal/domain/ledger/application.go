package ledger

import (
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplicationStatus represents the state of a payment application
type ApplicationStatus string

const (
	ApplicationStatusActive   ApplicationStatus = "ACTIVE"   // Counted in both balances
	ApplicationStatusReversed ApplicationStatus = "REVERSED" // Undone, kept for audit
	ApplicationStatusVoid     ApplicationStatus = "VOID"     // Invalidated by a document void
)

// IsValid checks if the status is a valid ApplicationStatus
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusActive, ApplicationStatusReversed, ApplicationStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of ApplicationStatus
func (s ApplicationStatus) String() string {
	return string(s)
}

// IsActive returns true if the application currently counts toward balances
func (s ApplicationStatus) IsActive() bool {
	return s == ApplicationStatusActive
}

// Application links a payment to an invoice for a specific applied amount.
// Active applications are the source of truth for both the invoice's
// AmountPaid and the payment's AmountApplied: the sum of active application
// amounts always equals both rollups. Reversed and void applications are
// retained as an audit trail and excluded from every balance.
type Application struct {
	shared.BaseEntity
	PaymentID     uuid.UUID            `gorm:"type:uuid;not null;index:idx_applications_payment"`
	InvoiceID     uuid.UUID            `gorm:"type:uuid;not null;index:idx_applications_invoice"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	AppliedAt     time.Time            `gorm:"not null"`
	Status        ApplicationStatus    `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	ReversedAt    *time.Time
	ReverseReason string `gorm:"type:varchar(500)"`
	Remark        string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Application) TableName() string {
	return "payment_applications"
}

// NewApplication creates an active application of a payment against an
// invoice. Cross-document checks (kind symmetry, party, currency) live here;
// balance checks live on the two aggregates, which the engine calls under
// the same transaction.
func NewApplication(payment *Payment, invoice *Invoice, amount valueobject.Money, remark string) (*Application, error) {
	if payment == nil || invoice == nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment and invoice are required")
	}
	if payment.Kind.InvoiceKind() != invoice.Kind {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("%s payment cannot be applied to %s invoice", payment.Kind, invoice.Kind))
	}
	if payment.PartyID != invoice.PartyID {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			"Payment and invoice must belong to the same party")
	}
	if payment.Currency != invoice.Currency {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Payment currency %s does not match invoice currency %s", payment.Currency, invoice.Currency))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Applied amount must be positive")
	}
	if amount.Currency() != payment.Currency {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Applied amount currency does not match documents")
	}

	return &Application{
		BaseEntity: shared.NewBaseEntity(),
		PaymentID:  payment.ID,
		InvoiceID:  invoice.ID,
		Amount:     amount.Amount(),
		Currency:   amount.Currency(),
		AppliedAt:  time.Now(),
		Status:     ApplicationStatusActive,
		Remark:     remark,
	}, nil
}

// Reverse marks an active application as reversed
func (a *Application) Reverse(reason string) error {
	if a.Status != ApplicationStatusActive {
		return shared.NewDomainError("NOT_ACTIVE",
			fmt.Sprintf("Cannot reverse application in %s status", a.Status))
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Reverse reason is required")
	}

	now := time.Now()
	a.Status = ApplicationStatusReversed
	a.ReversedAt = &now
	a.ReverseReason = reason
	a.UpdatedAt = now

	return nil
}

// MarkVoid invalidates an active application as part of a document void
func (a *Application) MarkVoid(reason string) error {
	if a.Status != ApplicationStatusActive {
		return shared.NewDomainError("NOT_ACTIVE",
			fmt.Sprintf("Cannot void application in %s status", a.Status))
	}

	now := time.Now()
	a.Status = ApplicationStatusVoid
	a.ReversedAt = &now
	a.ReverseReason = reason
	a.UpdatedAt = now

	return nil
}

// GetAmountMoney returns the applied amount as Money
func (a *Application) GetAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(a.Amount, a.Currency)
	return m
}
