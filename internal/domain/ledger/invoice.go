package ledger

import (
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceKind distinguishes receivable (AR) from payable (AP) invoices
type InvoiceKind string

const (
	InvoiceKindReceivable InvoiceKind = "RECEIVABLE" // Money owed to us by a customer
	InvoiceKindPayable    InvoiceKind = "PAYABLE"    // Money we owe a supplier
)

// IsValid checks if the kind is a valid InvoiceKind
func (k InvoiceKind) IsValid() bool {
	return k == InvoiceKindReceivable || k == InvoiceKindPayable
}

// String returns the string representation of InvoiceKind
func (k InvoiceKind) String() string {
	return string(k)
}

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"     // Created, not yet approved
	InvoiceStatusOpen      InvoiceStatus = "OPEN"      // Approved, payments may be applied
	InvoiceStatusPaid      InvoiceStatus = "PAID"      // Fully paid, amount due is zero
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED" // Cancelled before approval
	InvoiceStatusVoid      InvoiceStatus = "VOID"      // Voided after approval
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusOpen, InvoiceStatusPaid,
		InvoiceStatusCancelled, InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice can never change again
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusCancelled || s == InvoiceStatusVoid
}

// CanApplyPayment returns true if payments can be applied in this status
func (s InvoiceStatus) CanApplyPayment() bool {
	return s == InvoiceStatusOpen
}

// ApprovalStatus tracks whether an invoice has passed approval
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
)

// IsValid checks if the approval status is valid
func (s ApprovalStatus) IsValid() bool {
	return s == ApprovalStatusPending || s == ApprovalStatusApproved
}

// Invoice represents an invoice header aggregate root, AR or AP symmetric.
// AmountPaid and AmountDue are mutated only by the application engine inside
// an application transaction; the header never self-mutates these fields.
type Invoice struct {
	shared.BaseAggregateRoot
	Number         string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Kind           InvoiceKind          `gorm:"type:varchar(20);not null;index"`
	PartyID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	PartyName      string               `gorm:"type:varchar(200);not null"`
	BillSiteID     *uuid.UUID           `gorm:"type:uuid"`
	IssueDate      time.Time            `gorm:"not null"`
	DueDate        time.Time            `gorm:"not null;index"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate   decimal.Decimal      `gorm:"type:decimal(18,8);not null;default:1"`
	Subtotal       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	TaxAmount      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	TotalAmount    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountPaid     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountDue      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	ApprovalStatus ApprovalStatus       `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Status         InvoiceStatus        `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Remark         string               `gorm:"type:text"`
	ApprovedAt     *time.Time
	PaidAt         *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
	VoidedAt       *time.Time
	VoidReason     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new invoice header in DRAFT status.
// TotalAmount is computed as Subtotal + TaxAmount; AmountPaid starts at zero.
func NewInvoice(
	kind InvoiceKind,
	number string,
	partyID uuid.UUID,
	partyName string,
	billSiteID *uuid.UUID,
	issueDate time.Time,
	dueDate time.Time,
	subtotal valueobject.Money,
	taxAmount valueobject.Money,
	exchangeRate decimal.Decimal,
) (*Invoice, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invoice kind is not valid")
	}
	if number == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invoice number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invoice number cannot exceed 50 characters")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Party ID cannot be empty")
	}
	if partyName == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Party name cannot be empty")
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Issue date is required")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Due date is required")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Due date cannot be before issue date")
	}
	if subtotal.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Subtotal cannot be negative")
	}
	if taxAmount.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tax amount cannot be negative")
	}
	if subtotal.Currency() != taxAmount.Currency() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Subtotal and tax amount must share a currency")
	}
	if !subtotal.Currency().IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Currency is not supported")
	}
	total := subtotal.MustAdd(taxAmount)
	if !total.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Total amount must be positive")
	}
	if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Exchange rate must be positive")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Kind:              kind,
		PartyID:           partyID,
		PartyName:         partyName,
		BillSiteID:        billSiteID,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		Currency:          subtotal.Currency(),
		ExchangeRate:      exchangeRate,
		Subtotal:          subtotal.Amount(),
		TaxAmount:         taxAmount.Amount(),
		TotalAmount:       total.Amount(),
		AmountPaid:        decimal.Zero,
		AmountDue:         total.Amount(),
		ApprovalStatus:    ApprovalStatusPending,
		Status:            InvoiceStatusDraft,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// Approve transitions the invoice from DRAFT to OPEN
func (inv *Invoice) Approve() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot approve invoice in %s status", inv.Status))
	}

	now := time.Now()
	inv.Status = InvoiceStatusOpen
	inv.ApprovalStatus = ApprovalStatusApproved
	inv.ApprovedAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceApprovedEvent(inv))

	return nil
}

// Cancel cancels a draft invoice. Invoices with any applied amount cannot be
// cancelled; they must be voided after their applications are reversed.
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if inv.AmountPaid.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_TRANSITION", "Cannot cancel invoice with applied payments")
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Cancel reason is required")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// Void voids an approved invoice. All active applications must have been
// reversed first, so the applied amount is zero at this point.
func (inv *Invoice) Void(reason string) error {
	if inv.Status != InvoiceStatusOpen && inv.Status != InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot void invoice in %s status", inv.Status))
	}
	if inv.AmountPaid.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot void invoice with active applications; reverse them first")
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Void reason is required")
	}

	now := time.Now()
	previousStatus := inv.Status
	inv.Status = InvoiceStatusVoid
	inv.VoidedAt = &now
	inv.VoidReason = reason
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceVoidedEvent(inv, previousStatus))

	return nil
}

// ApplyAmount records an applied payment amount on the invoice side.
// Called only by the application engine inside an application transaction.
func (inv *Invoice) ApplyAmount(amount valueobject.Money) error {
	if !inv.Status.CanApplyPayment() {
		return shared.NewDomainError("INVOICE_NOT_OPEN",
			fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if amount.Currency() != inv.Currency {
		return shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Applied amount currency %s does not match invoice currency %s", amount.Currency(), inv.Currency))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Applied amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.AmountDue) {
		return shared.NewDomainError("OVER_APPLICATION",
			fmt.Sprintf("Applied amount %s exceeds amount due %s", amount.StringFixed(2), inv.AmountDue.StringFixed(2)))
	}

	inv.AmountPaid = inv.AmountPaid.Add(amount.Amount())
	inv.AmountDue = inv.TotalAmount.Sub(inv.AmountPaid)

	if inv.AmountDue.IsZero() {
		now := time.Now()
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// ReverseAmount removes a previously applied amount from the invoice side.
// A fully paid invoice reverts to OPEN; PAID is never silently re-entered.
func (inv *Invoice) ReverseAmount(amount valueobject.Money) error {
	if inv.Status != InvoiceStatusOpen && inv.Status != InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot reverse application on invoice in %s status", inv.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Reversed amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.AmountPaid) {
		return shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Reversed amount %s exceeds amount paid %s", amount.StringFixed(2), inv.AmountPaid.StringFixed(2)))
	}

	wasPaid := inv.Status == InvoiceStatusPaid

	inv.AmountPaid = inv.AmountPaid.Sub(amount.Amount())
	inv.AmountDue = inv.TotalAmount.Sub(inv.AmountPaid)

	if wasPaid {
		inv.Status = InvoiceStatusOpen
		inv.PaidAt = nil
		inv.AddDomainEvent(NewInvoiceReopenedEvent(inv))
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// SetRemark sets the remark. Allowed in any status to preserve audit notes.
func (inv *Invoice) SetRemark(remark string) {
	inv.Remark = remark
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// Helper methods

// GetTotalAmountMoney returns total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.TotalAmount, inv.Currency)
	return m
}

// GetAmountPaidMoney returns amount paid as Money
func (inv *Invoice) GetAmountPaidMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.AmountPaid, inv.Currency)
	return m
}

// GetAmountDueMoney returns amount due as Money
func (inv *Invoice) GetAmountDueMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.AmountDue, inv.Currency)
	return m
}

// IsDraft returns true if the invoice is in draft status
func (inv *Invoice) IsDraft() bool {
	return inv.Status == InvoiceStatusDraft
}

// IsOpen returns true if the invoice is open
func (inv *Invoice) IsOpen() bool {
	return inv.Status == InvoiceStatusOpen
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsOverdue returns true if the invoice is open and past its due date
func (inv *Invoice) IsOverdue() bool {
	if inv.Status != InvoiceStatusOpen {
		return false
	}
	return time.Now().After(inv.DueDate)
}

// DaysOverdue returns the number of days past due (0 if not overdue)
func (inv *Invoice) DaysOverdue() int {
	if !inv.IsOverdue() {
		return 0
	}
	return int(time.Since(inv.DueDate).Hours() / 24)
}
