package ledger

import (
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInvoiceDue(t *testing.T, number string, total float64, due time.Time) *Invoice {
	t.Helper()
	inv, err := NewInvoice(
		InvoiceKindReceivable, number, uuid.New(), "Acme Corp", nil,
		due.AddDate(0, -1, 0), due,
		usd(total), usd(0), decimal.NewFromInt(1),
	)
	require.NoError(t, err)
	require.NoError(t, inv.Approve())
	return inv
}

func TestPlanSettlement_FIFOOrder(t *testing.T) {
	now := time.Now()
	newest := openInvoiceDue(t, "AR-000003", 700, now.AddDate(0, 2, 0))
	oldest := openInvoiceDue(t, "AR-000001", 1000, now)
	middle := openInvoiceDue(t, "AR-000002", 500, now.AddDate(0, 1, 0))

	plan, err := PlanSettlement(usd(1500), []*Invoice{newest, oldest, middle})
	require.NoError(t, err)

	require.Len(t, plan.Lines, 2)
	assert.Equal(t, oldest.ID, plan.Lines[0].InvoiceID)
	assert.True(t, plan.Lines[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, middle.ID, plan.Lines[1].InvoiceID)
	assert.True(t, plan.Lines[1].Amount.Equal(decimal.NewFromInt(500)))

	assert.True(t, plan.TotalApplied.Equal(decimal.NewFromInt(1500)))
	assert.True(t, plan.Remainder.IsZero())
}

func TestPlanSettlement_RemainderStaysUnapplied(t *testing.T) {
	inv := openInvoiceDue(t, "AR-000001", 1000, time.Now())

	plan, err := PlanSettlement(usd(1500), []*Invoice{inv})
	require.NoError(t, err)

	require.Len(t, plan.Lines, 1)
	assert.True(t, plan.TotalApplied.Equal(decimal.NewFromInt(1000)))
	assert.True(t, plan.Remainder.Equal(decimal.NewFromInt(500)))
}

func TestPlanSettlement_SkipsNonOpenInvoices(t *testing.T) {
	open := openInvoiceDue(t, "AR-000001", 300, time.Now())
	paid := openInvoiceDue(t, "AR-000002", 200, time.Now())
	require.NoError(t, paid.ApplyAmount(usd(200)))

	plan, err := PlanSettlement(usd(500), []*Invoice{paid, open})
	require.NoError(t, err)

	require.Len(t, plan.Lines, 1)
	assert.Equal(t, open.ID, plan.Lines[0].InvoiceID)
	assert.True(t, plan.Remainder.Equal(decimal.NewFromInt(200)))
}

func TestPlanSettlement_SkipsOtherCurrencies(t *testing.T) {
	now := time.Now()
	domestic := openInvoiceDue(t, "AR-000001", 400, now)

	eurTotal, err := valueobject.NewMoney(decimal.NewFromInt(250), valueobject.EUR)
	require.NoError(t, err)
	eurTax, err := valueobject.NewMoney(decimal.Zero, valueobject.EUR)
	require.NoError(t, err)
	foreign, err := NewInvoice(
		InvoiceKindReceivable, "AR-000002", uuid.New(), "Acme GmbH", nil,
		now.AddDate(0, -1, 0), now,
		eurTotal, eurTax, decimal.NewFromInt(1),
	)
	require.NoError(t, err)
	require.NoError(t, foreign.Approve())

	// Foreign-currency invoices wait for a payment in their own currency
	plan, err := PlanSettlement(usd(1000), []*Invoice{foreign, domestic})
	require.NoError(t, err)

	require.Len(t, plan.Lines, 1)
	assert.Equal(t, domestic.ID, plan.Lines[0].InvoiceID)
	assert.True(t, plan.Remainder.Equal(decimal.NewFromInt(600)))
}

func TestPlanSettlement_TieBreakByCreation(t *testing.T) {
	due := time.Now().AddDate(0, 1, 0)
	first := openInvoiceDue(t, "AR-000001", 100, due)
	second := openInvoiceDue(t, "AR-000002", 100, due)
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	plan, err := PlanSettlement(usd(150), []*Invoice{second, first})
	require.NoError(t, err)

	require.Len(t, plan.Lines, 2)
	assert.Equal(t, first.ID, plan.Lines[0].InvoiceID)
	assert.Equal(t, second.ID, plan.Lines[1].InvoiceID)
	assert.True(t, plan.Lines[1].Amount.Equal(decimal.NewFromInt(50)))
}

func TestPlanSettlement_Conservation(t *testing.T) {
	invoices := []*Invoice{
		openInvoiceDue(t, "AR-000001", 123.45, time.Now()),
		openInvoiceDue(t, "AR-000002", 678.90, time.Now().AddDate(0, 0, 1)),
	}

	available := usd(500)
	plan, err := PlanSettlement(available, invoices)
	require.NoError(t, err)

	// Applied plus remainder always equals the available amount
	assert.True(t, plan.TotalApplied.Add(plan.Remainder).Equal(available.Amount()))
}

func TestPlanSettlement_NonPositiveAmount(t *testing.T) {
	plan, err := PlanSettlement(usd(0), nil)
	assert.Nil(t, plan)
	require.Error(t, err)
}
