package ledger

import (
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPayment(t *testing.T, kind PaymentKind, amount float64) *Payment {
	t.Helper()
	p, err := NewPayment(
		kind,
		"RV-000001",
		uuid.New(),
		"Acme Corp",
		time.Now(),
		usd(amount),
		PaymentMethodBankTransfer,
		"wire-123",
	)
	require.NoError(t, err)
	return p
}

func createConfirmedPayment(t *testing.T, amount float64) *Payment {
	t.Helper()
	p := createTestPayment(t, PaymentKindReceipt, amount)
	require.NoError(t, p.Confirm())
	return p
}

func TestNewPayment(t *testing.T) {
	p := createTestPayment(t, PaymentKindReceipt, 1500)

	assert.Equal(t, PaymentStatusDraft, p.Status)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(1500)))
	assert.True(t, p.AmountApplied.IsZero())
	assert.True(t, p.AmountUnapplied.Equal(p.Amount))
	assert.Equal(t, InvoiceKindReceivable, p.Kind.InvoiceKind())
	assert.Len(t, p.GetDomainEvents(), 1)
}

func TestNewPayment_Validation(t *testing.T) {
	partyID := uuid.New()

	tests := []struct {
		name  string
		build func() (*Payment, error)
	}{
		{
			name: "invalid kind",
			build: func() (*Payment, error) {
				return NewPayment("BOGUS", "RV-1", partyID, "Acme", time.Now(), usd(100), PaymentMethodCash, "")
			},
		},
		{
			name: "empty number",
			build: func() (*Payment, error) {
				return NewPayment(PaymentKindReceipt, "", partyID, "Acme", time.Now(), usd(100), PaymentMethodCash, "")
			},
		},
		{
			name: "zero amount",
			build: func() (*Payment, error) {
				return NewPayment(PaymentKindReceipt, "RV-1", partyID, "Acme", time.Now(), usd(0), PaymentMethodCash, "")
			},
		},
		{
			name: "negative amount",
			build: func() (*Payment, error) {
				return NewPayment(PaymentKindReceipt, "RV-1", partyID, "Acme", time.Now(), usd(-50), PaymentMethodCash, "")
			},
		},
		{
			name: "invalid method",
			build: func() (*Payment, error) {
				return NewPayment(PaymentKindReceipt, "RV-1", partyID, "Acme", time.Now(), usd(100), "BARTER", "")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build()
			assert.Nil(t, p)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		})
	}
}

func TestPaymentConfirm(t *testing.T) {
	p := createTestPayment(t, PaymentKindReceipt, 100)

	require.NoError(t, p.Confirm())
	assert.Equal(t, PaymentStatusConfirmed, p.Status)
	assert.NotNil(t, p.ConfirmedAt)
	assert.True(t, p.Status.IsApplicable())

	err := p.Confirm()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
}

func TestPaymentMarkCleared(t *testing.T) {
	p := createConfirmedPayment(t, 100)

	require.NoError(t, p.MarkCleared())
	assert.Equal(t, PaymentStatusCleared, p.Status)
	assert.True(t, p.Status.IsApplicable())

	draft := createTestPayment(t, PaymentKindReceipt, 100)
	require.Error(t, draft.MarkCleared())
}

func TestPaymentAllocateAmount(t *testing.T) {
	p := createConfirmedPayment(t, 1000)

	require.NoError(t, p.AllocateAmount(usd(400)))
	assert.True(t, p.AmountApplied.Equal(decimal.NewFromInt(400)))
	assert.True(t, p.AmountUnapplied.Equal(decimal.NewFromInt(600)))

	// Conservation: applied + unapplied always equals the payment amount
	assert.True(t, p.AmountApplied.Add(p.AmountUnapplied).Equal(p.Amount))

	require.NoError(t, p.AllocateAmount(usd(600)))
	assert.True(t, p.IsFullyApplied())
}

func TestPaymentAllocateAmount_ExceedsUnapplied(t *testing.T) {
	p := createConfirmedPayment(t, 500)
	require.NoError(t, p.AllocateAmount(usd(300)))

	err := p.AllocateAmount(usd(300))
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OVER_APPLICATION", domainErr.Code)

	assert.True(t, p.AmountApplied.Equal(decimal.NewFromInt(300)))
	assert.True(t, p.AmountUnapplied.Equal(decimal.NewFromInt(200)))
}

func TestPaymentAllocateAmount_NotApplicable(t *testing.T) {
	p := createTestPayment(t, PaymentKindReceipt, 500)

	err := p.AllocateAmount(usd(100))
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PAYMENT_NOT_APPLICABLE", domainErr.Code)
}

func TestPaymentReleaseAmount(t *testing.T) {
	p := createConfirmedPayment(t, 1000)
	require.NoError(t, p.AllocateAmount(usd(700)))

	require.NoError(t, p.ReleaseAmount(usd(700)))
	assert.True(t, p.AmountApplied.IsZero())
	assert.True(t, p.AmountUnapplied.Equal(p.Amount))

	err := p.ReleaseAmount(usd(1))
	require.Error(t, err)
}

func TestPaymentCancel(t *testing.T) {
	p := createConfirmedPayment(t, 500)

	require.NoError(t, p.Cancel("duplicate entry"))
	assert.Equal(t, PaymentStatusCancelled, p.Status)
	assert.True(t, p.AmountUnapplied.IsZero())
	assert.True(t, p.Status.IsTerminal())

	// Cancelling with active applications is rejected
	applied := createConfirmedPayment(t, 500)
	require.NoError(t, applied.AllocateAmount(usd(100)))
	err := applied.Cancel("nope")
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
}

func TestPaymentReverse(t *testing.T) {
	p := createConfirmedPayment(t, 500)
	require.NoError(t, p.MarkCleared())

	require.NoError(t, p.Reverse("check bounced"))
	assert.Equal(t, PaymentStatusReversed, p.Status)
	assert.NotNil(t, p.ReversedAt)
	assert.Equal(t, "check bounced", p.ReverseReason)

	// Draft payments cannot be reversed, only cancelled
	draft := createTestPayment(t, PaymentKindReceipt, 500)
	require.Error(t, draft.Reverse("wrong path"))

	// Payments with active applications cannot be reversed
	applied := createConfirmedPayment(t, 500)
	require.NoError(t, applied.AllocateAmount(usd(200)))
	require.Error(t, applied.Reverse("still applied"))
}
