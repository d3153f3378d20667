package ledger

import (
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createApplicationPair(t *testing.T, partyID uuid.UUID, invoiceTotal, paymentAmount float64) (*Payment, *Invoice) {
	t.Helper()
	inv, err := NewInvoice(
		InvoiceKindReceivable, "AR-000010", partyID, "Acme Corp", nil,
		time.Now(), time.Now().AddDate(0, 1, 0),
		usd(invoiceTotal), usd(0), decimal.NewFromInt(1),
	)
	require.NoError(t, err)
	require.NoError(t, inv.Approve())

	p, err := NewPayment(
		PaymentKindReceipt, "RV-000010", partyID, "Acme Corp",
		time.Now(), usd(paymentAmount), PaymentMethodBankTransfer, "",
	)
	require.NoError(t, err)
	require.NoError(t, p.Confirm())

	return p, inv
}

func TestNewApplication(t *testing.T) {
	partyID := uuid.New()
	p, inv := createApplicationPair(t, partyID, 1000, 400)

	app, err := NewApplication(p, inv, usd(400), "partial settlement")
	require.NoError(t, err)

	assert.Equal(t, ApplicationStatusActive, app.Status)
	assert.Equal(t, p.ID, app.PaymentID)
	assert.Equal(t, inv.ID, app.InvoiceID)
	assert.True(t, app.Amount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, valueobject.USD, app.Currency)
}

func TestNewApplication_KindMismatch(t *testing.T) {
	partyID := uuid.New()
	_, inv := createApplicationPair(t, partyID, 1000, 400)

	disbursement, err := NewPayment(
		PaymentKindDisbursement, "PV-000001", partyID, "Acme Corp",
		time.Now(), usd(400), PaymentMethodCheck, "",
	)
	require.NoError(t, err)
	require.NoError(t, disbursement.Confirm())

	app, err := NewApplication(disbursement, inv, usd(400), "")
	assert.Nil(t, app)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
}

func TestNewApplication_PartyMismatch(t *testing.T) {
	p, _ := createApplicationPair(t, uuid.New(), 1000, 400)
	_, otherInv := createApplicationPair(t, uuid.New(), 500, 100)

	app, err := NewApplication(p, otherInv, usd(100), "")
	assert.Nil(t, app)
	require.Error(t, err)
}

func TestNewApplication_NonPositiveAmount(t *testing.T) {
	p, inv := createApplicationPair(t, uuid.New(), 1000, 400)

	app, err := NewApplication(p, inv, usd(0), "")
	assert.Nil(t, app)
	require.Error(t, err)
}

func TestApplicationReverse(t *testing.T) {
	p, inv := createApplicationPair(t, uuid.New(), 1000, 400)
	app, err := NewApplication(p, inv, usd(400), "")
	require.NoError(t, err)

	require.NoError(t, app.Reverse("posted in error"))
	assert.Equal(t, ApplicationStatusReversed, app.Status)
	assert.NotNil(t, app.ReversedAt)
	assert.Equal(t, "posted in error", app.ReverseReason)

	// Reversing twice is rejected
	err = app.Reverse("again")
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_ACTIVE", domainErr.Code)
}

func TestApplicationMarkVoid(t *testing.T) {
	p, inv := createApplicationPair(t, uuid.New(), 1000, 400)
	app, err := NewApplication(p, inv, usd(400), "")
	require.NoError(t, err)

	require.NoError(t, app.MarkVoid("invoice voided"))
	assert.Equal(t, ApplicationStatusVoid, app.Status)
	assert.False(t, app.Status.IsActive())
}
