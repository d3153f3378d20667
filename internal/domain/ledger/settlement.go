package ledger

import (
	"sort"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementLine is one planned application of an amount to an invoice
type SettlementLine struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// SettlementPlan is the result of planning a payment across invoices.
// TotalApplied plus Remainder always equals the available amount.
type SettlementPlan struct {
	Lines        []SettlementLine `json:"lines"`
	TotalApplied decimal.Decimal  `json:"total_applied"`
	Remainder    decimal.Decimal  `json:"remainder"`
}

// PlanSettlement distributes an available amount across open invoices in
// FIFO order: oldest due date first, creation time as tie-break. Each
// invoice receives at most its amount due; any remainder stays unapplied.
// The plan is pure - it mutates nothing and performs no I/O.
func PlanSettlement(available valueobject.Money, invoices []*Invoice) (*SettlementPlan, error) {
	if !available.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Available amount must be positive")
	}

	candidates := make([]*Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if !inv.Status.CanApplyPayment() || !inv.AmountDue.GreaterThan(decimal.Zero) {
			continue
		}
		// Cross-currency applications are never planned; those invoices wait
		// for a payment in their own currency
		if inv.Currency != available.Currency() {
			continue
		}
		candidates = append(candidates, inv)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].DueDate.Equal(candidates[j].DueDate) {
			return candidates[i].DueDate.Before(candidates[j].DueDate)
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	plan := &SettlementPlan{
		Lines:        make([]SettlementLine, 0, len(candidates)),
		TotalApplied: decimal.Zero,
		Remainder:    available.Amount(),
	}

	for _, inv := range candidates {
		if plan.Remainder.IsZero() {
			break
		}
		applied := decimal.Min(plan.Remainder, inv.AmountDue)
		plan.Lines = append(plan.Lines, SettlementLine{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.Number,
			Amount:        applied,
		})
		plan.TotalApplied = plan.TotalApplied.Add(applied)
		plan.Remainder = plan.Remainder.Sub(applied)
	}

	return plan, nil
}
