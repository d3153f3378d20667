package ledger

import (
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID       `json:"id"`
	Number         string          `json:"number"`
	Kind           string          `json:"kind"`
	PartyID        uuid.UUID       `json:"party_id"`
	PartyName      string          `json:"party_name"`
	BillSiteID     *uuid.UUID      `json:"bill_site_id,omitempty"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date"`
	Currency       string          `json:"currency"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	ApprovalStatus string          `json:"approval_status"`
	Status         string          `json:"status"`
	Remark         string          `json:"remark,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
	VoidedAt       *time.Time      `json:"voided_at,omitempty"`
	VoidReason     string          `json:"void_reason,omitempty"`
	Overdue        bool            `json:"overdue"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// NewInvoiceResponse converts an invoice aggregate to a response
func NewInvoiceResponse(inv *ledger.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		Kind:           inv.Kind.String(),
		PartyID:        inv.PartyID,
		PartyName:      inv.PartyName,
		BillSiteID:     inv.BillSiteID,
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		Currency:       string(inv.Currency),
		ExchangeRate:   inv.ExchangeRate,
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		TotalAmount:    inv.TotalAmount,
		AmountPaid:     inv.AmountPaid,
		AmountDue:      inv.AmountDue,
		ApprovalStatus: string(inv.ApprovalStatus),
		Status:         inv.Status.String(),
		Remark:         inv.Remark,
		ApprovedAt:     inv.ApprovedAt,
		PaidAt:         inv.PaidAt,
		CancelledAt:    inv.CancelledAt,
		CancelReason:   inv.CancelReason,
		VoidedAt:       inv.VoidedAt,
		VoidReason:     inv.VoidReason,
		Overdue:        inv.IsOverdue(),
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
		Version:        inv.Version,
	}
}

// InvoiceBalanceResponse is the monetary position of an invoice
type InvoiceBalanceResponse struct {
	ID     uuid.UUID       `json:"id"`
	Number string          `json:"number"`
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
	Paid   decimal.Decimal `json:"paid"`
	Due    decimal.Decimal `json:"due"`
}

// NewInvoiceBalanceResponse extracts the balance view of an invoice
func NewInvoiceBalanceResponse(inv *ledger.Invoice) *InvoiceBalanceResponse {
	return &InvoiceBalanceResponse{
		ID:     inv.ID,
		Number: inv.Number,
		Status: inv.Status.String(),
		Total:  inv.TotalAmount,
		Paid:   inv.AmountPaid,
		Due:    inv.AmountDue,
	}
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"number"`
	Kind            string          `json:"kind"`
	PartyID         uuid.UUID       `json:"party_id"`
	PartyName       string          `json:"party_name"`
	PaymentDate     time.Time       `json:"payment_date"`
	Currency        string          `json:"currency"`
	Amount          decimal.Decimal `json:"amount"`
	AmountApplied   decimal.Decimal `json:"amount_applied"`
	AmountUnapplied decimal.Decimal `json:"amount_unapplied"`
	Method          string          `json:"method"`
	Reference       string          `json:"reference,omitempty"`
	Status          string          `json:"status"`
	Remark          string          `json:"remark,omitempty"`
	ConfirmedAt     *time.Time      `json:"confirmed_at,omitempty"`
	ClearedAt       *time.Time      `json:"cleared_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	ReversedAt      *time.Time      `json:"reversed_at,omitempty"`
	ReverseReason   string          `json:"reverse_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// NewPaymentResponse converts a payment aggregate to a response
func NewPaymentResponse(p *ledger.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:              p.ID,
		Number:          p.Number,
		Kind:            p.Kind.String(),
		PartyID:         p.PartyID,
		PartyName:       p.PartyName,
		PaymentDate:     p.PaymentDate,
		Currency:        string(p.Currency),
		Amount:          p.Amount,
		AmountApplied:   p.AmountApplied,
		AmountUnapplied: p.AmountUnapplied,
		Method:          string(p.Method),
		Reference:       p.Reference,
		Status:          p.Status.String(),
		Remark:          p.Remark,
		ConfirmedAt:     p.ConfirmedAt,
		ClearedAt:       p.ClearedAt,
		CancelledAt:     p.CancelledAt,
		CancelReason:    p.CancelReason,
		ReversedAt:      p.ReversedAt,
		ReverseReason:   p.ReverseReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Version:         p.Version,
	}
}

// PaymentBalanceResponse is the monetary position of a payment
type PaymentBalanceResponse struct {
	ID        uuid.UUID       `json:"id"`
	Number    string          `json:"number"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Applied   decimal.Decimal `json:"applied"`
	Unapplied decimal.Decimal `json:"unapplied"`
}

// NewPaymentBalanceResponse extracts the balance view of a payment
func NewPaymentBalanceResponse(p *ledger.Payment) *PaymentBalanceResponse {
	return &PaymentBalanceResponse{
		ID:        p.ID,
		Number:    p.Number,
		Status:    p.Status.String(),
		Amount:    p.Amount,
		Applied:   p.AmountApplied,
		Unapplied: p.AmountUnapplied,
	}
}

// ApplicationResponse represents a payment application in API responses
type ApplicationResponse struct {
	ID            uuid.UUID       `json:"id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	AppliedAt     time.Time       `json:"applied_at"`
	Status        string          `json:"status"`
	ReversedAt    *time.Time      `json:"reversed_at,omitempty"`
	ReverseReason string          `json:"reverse_reason,omitempty"`
	Remark        string          `json:"remark,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewApplicationResponse converts an application to a response
func NewApplicationResponse(app *ledger.Application) *ApplicationResponse {
	return &ApplicationResponse{
		ID:            app.ID,
		PaymentID:     app.PaymentID,
		InvoiceID:     app.InvoiceID,
		Amount:        app.Amount,
		Currency:      string(app.Currency),
		AppliedAt:     app.AppliedAt,
		Status:        app.Status.String(),
		ReversedAt:    app.ReversedAt,
		ReverseReason: app.ReverseReason,
		Remark:        app.Remark,
		CreatedAt:     app.CreatedAt,
	}
}

// ListResult is a paged list of responses
type ListResult[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}
