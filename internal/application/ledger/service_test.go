package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/sequence"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv wires the services against an in-memory SQLite database with the
// real repositories and transaction runner, so every scenario exercises the
// same code path production uses.
type testEnv struct {
	db           *gorm.DB
	invoices     *InvoiceService
	payments     *PaymentService
	applications *ApplicationService
	sequences    *SequenceService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&sequence.Sequence{},
		&ledger.Invoice{},
		&ledger.Payment{},
		&ledger.Application{},
	))

	factory := func(db *gorm.DB) Repositories {
		seqRepo := persistence.NewGormSequenceRepository(db)
		return Repositories{
			Sequences:    seqRepo,
			Allocator:    seqRepo,
			Invoices:     persistence.NewGormInvoiceRepository(db),
			Payments:     persistence.NewGormPaymentRepository(db),
			Applications: persistence.NewGormApplicationRepository(db),
		}
	}
	tx := persistence.NewTxRunner(db, 2, time.Millisecond)
	numbering := NumberingConfig{Width: 6}
	logger := zap.NewNop()

	env := &testEnv{
		db:           db,
		invoices:     NewInvoiceService(db, tx, factory, numbering, logger),
		payments:     NewPaymentService(db, tx, factory, numbering, logger),
		applications: NewApplicationService(db, tx, factory, logger),
		sequences:    NewSequenceService(db, tx, factory, logger),
	}

	ctx := context.Background()
	for _, name := range []string{ARInvoiceSequence, APInvoiceSequence, ReceiptSequence, DisbursementSequence} {
		_, err := env.sequences.CreateSequence(ctx, CreateSequenceCommand{Name: name, MaxValue: 999999999})
		require.NoError(t, err)
	}
	return env
}

func (e *testEnv) openInvoice(t *testing.T, partyID uuid.UUID, subtotal float64, dueDate time.Time) *InvoiceResponse {
	t.Helper()
	ctx := context.Background()
	inv, err := e.invoices.CreateInvoice(ctx, CreateInvoiceCommand{
		Kind:      ledger.InvoiceKindReceivable.String(),
		PartyID:   partyID,
		PartyName: "Acme Corp",
		IssueDate: time.Now(),
		DueDate:   dueDate,
		Subtotal:  decimal.NewFromFloat(subtotal),
	})
	require.NoError(t, err)
	inv, err = e.invoices.ApproveInvoice(ctx, inv.ID)
	require.NoError(t, err)
	return inv
}

func (e *testEnv) confirmedReceipt(t *testing.T, partyID uuid.UUID, amount float64) *PaymentResponse {
	t.Helper()
	ctx := context.Background()
	p, err := e.payments.CreatePayment(ctx, CreatePaymentCommand{
		Kind:        ledger.PaymentKindReceipt.String(),
		PartyID:     partyID,
		PartyName:   "Acme Corp",
		PaymentDate: time.Now(),
		Amount:      decimal.NewFromFloat(amount),
		Method:      string(ledger.PaymentMethodBankTransfer),
	})
	require.NoError(t, err)
	p, err = e.payments.ConfirmPayment(ctx, p.ID)
	require.NoError(t, err)
	return p
}

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestInvoiceService_DocumentNumbering(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	first := env.openInvoice(t, partyID, 100, time.Now().AddDate(0, 1, 0))
	second := env.openInvoice(t, partyID, 200, time.Now().AddDate(0, 1, 0))
	assert.Equal(t, "AR-000001", first.Number)
	assert.Equal(t, "AR-000002", second.Number)

	payable, err := env.invoices.CreateInvoice(ctx, CreateInvoiceCommand{
		Kind:      ledger.InvoiceKindPayable.String(),
		PartyID:   partyID,
		PartyName: "Supplier Ltd",
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 1, 0),
		Subtotal:  decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.Equal(t, "AP-000001", payable.Number)

	receipt := env.confirmedReceipt(t, partyID, 10)
	assert.Equal(t, "RV-000001", receipt.Number)
}

func TestInvoiceService_NumbersSurviveFailedCreate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	// A create that fails domain validation must not burn a number
	_, err := env.invoices.CreateInvoice(ctx, CreateInvoiceCommand{
		Kind:      ledger.InvoiceKindReceivable.String(),
		PartyID:   partyID,
		PartyName: "Acme Corp",
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 1, 0),
		Subtotal:  decimal.NewFromInt(-100),
	})
	require.Error(t, err)

	inv := env.openInvoice(t, partyID, 100, time.Now().AddDate(0, 1, 0))
	assert.Equal(t, "AR-000001", inv.Number)
}

func TestInvoiceService_CallerSuppliedNumber(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	custom, err := env.invoices.CreateInvoice(ctx, CreateInvoiceCommand{
		Kind:      ledger.InvoiceKindReceivable.String(),
		Number:    "AR-LEGACY-0042",
		PartyID:   partyID,
		PartyName: "Acme Corp",
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 1, 0),
		Subtotal:  decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, "AR-LEGACY-0042", custom.Number)

	// A colliding caller-supplied number is rejected
	_, err = env.invoices.CreateInvoice(ctx, CreateInvoiceCommand{
		Kind:      ledger.InvoiceKindReceivable.String(),
		Number:    "AR-LEGACY-0042",
		PartyID:   partyID,
		PartyName: "Acme Corp",
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 1, 0),
		Subtotal:  decimal.NewFromInt(200),
	})
	assertDomainErrorCode(t, err, "DUPLICATE_NUMBER")

	// Supplied numbers never consume the allocator
	auto := env.openInvoice(t, partyID, 100, time.Now().AddDate(0, 1, 0))
	assert.Equal(t, "AR-000001", auto.Number)
}

func TestPaymentService_CallerSuppliedNumber(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	cmd := CreatePaymentCommand{
		Kind:        ledger.PaymentKindReceipt.String(),
		Number:      "RV-LEGACY-0001",
		PartyID:     partyID,
		PartyName:   "Acme Corp",
		PaymentDate: time.Now(),
		Amount:      decimal.NewFromInt(100),
		Method:      string(ledger.PaymentMethodCash),
	}
	p, err := env.payments.CreatePayment(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "RV-LEGACY-0001", p.Number)

	_, err = env.payments.CreatePayment(ctx, cmd)
	assertDomainErrorCode(t, err, "DUPLICATE_NUMBER")
}

func TestApplicationService_FullPayment(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	inv := env.openInvoice(t, partyID, 1000, time.Now().AddDate(0, 1, 0))
	p := env.confirmedReceipt(t, partyID, 1000)

	app, err := env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: p.ID,
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", app.Status)

	inv, err = env.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", inv.Status)
	assert.True(t, inv.AmountDue.IsZero())
	assert.True(t, inv.AmountPaid.Equal(inv.TotalAmount))
	require.NotNil(t, inv.PaidAt)

	p, err = env.payments.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, p.AmountUnapplied.IsZero())
	assert.True(t, p.AmountApplied.Add(p.AmountUnapplied).Equal(p.Amount))
}

func TestApplicationService_TwoPartialPayments(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	inv := env.openInvoice(t, partyID, 1000, time.Now().AddDate(0, 1, 0))
	first := env.confirmedReceipt(t, partyID, 400)
	second := env.confirmedReceipt(t, partyID, 600)

	_, err := env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: first.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	inv, err = env.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "OPEN", inv.Status)
	assert.True(t, inv.AmountDue.Equal(decimal.NewFromInt(600)))

	_, err = env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: second.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(600),
	})
	require.NoError(t, err)

	inv, err = env.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", inv.Status)
	assert.True(t, inv.AmountPaid.Add(inv.AmountDue).Equal(inv.TotalAmount))
}

func TestApplicationService_OverApplicationLeavesStateUntouched(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	inv := env.openInvoice(t, partyID, 1000, time.Now().AddDate(0, 1, 0))
	partial := env.confirmedReceipt(t, partyID, 500)
	_, err := env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: partial.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	// 600 against a 500 remaining balance must be rejected atomically
	over := env.confirmedReceipt(t, partyID, 600)
	_, err = env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: over.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(600),
	})
	assertDomainErrorCode(t, err, "OVER_APPLICATION")

	inv, err = env.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "OPEN", inv.Status)
	assert.True(t, inv.AmountDue.Equal(decimal.NewFromInt(500)))

	over, err = env.payments.GetPayment(ctx, over.ID)
	require.NoError(t, err)
	assert.True(t, over.AmountApplied.IsZero())
	assert.True(t, over.AmountUnapplied.Equal(over.Amount))

	apps, err := env.applications.ListByPayment(ctx, over.ID)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestApplicationService_ExceedingUnappliedBalance(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	first := env.openInvoice(t, partyID, 400, time.Now().AddDate(0, 1, 0))
	second := env.openInvoice(t, partyID, 400, time.Now().AddDate(0, 1, 0))
	p := env.confirmedReceipt(t, partyID, 500)

	_, err := env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: p.ID, InvoiceID: first.ID, Amount: decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	_, err = env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: p.ID, InvoiceID: second.ID, Amount: decimal.NewFromInt(200),
	})
	assertDomainErrorCode(t, err, "OVER_APPLICATION")
}

func TestApplicationService_DuplicateApplication(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	inv := env.openInvoice(t, partyID, 1000, time.Now().AddDate(0, 1, 0))
	p := env.confirmedReceipt(t, partyID, 1000)

	_, err := env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: p.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(300),
	})
	require.NoError(t, err)

	_, err = env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: p.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(200),
	})
	assertDomainErrorCode(t, err, "DUPLICATE_APPLICATION")
}

func TestApplicationService_DraftPaymentNotApplicable(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	inv := env.openInvoice(t, partyID, 1000, time.Now().AddDate(0, 1, 0))
	p, err := env.payments.CreatePayment(ctx, CreatePaymentCommand{
		Kind:        ledger.PaymentKindReceipt.String(),
		PartyID:     partyID,
		PartyName:   "Acme Corp",
		PaymentDate: time.Now(),
		Amount:      decimal.NewFromInt(1000),
		Method:      string(ledger.PaymentMethodCash),
	})
	require.NoError(t, err)

	_, err = env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: p.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(1000),
	})
	assertDomainErrorCode(t, err, "PAYMENT_NOT_APPLICABLE")
}

func TestApplicationService_AutoApplyFIFO(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	oldest := env.openInvoice(t, partyID, 1000, time.Now().AddDate(0, 0, 10))
	newer := env.openInvoice(t, partyID, 500, time.Now().AddDate(0, 0, 20))
	p := env.confirmedReceipt(t, partyID, 1500)

	result, err := env.applications.AutoApply(ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, result.Applications, 2)
	assert.Equal(t, oldest.ID, result.Applications[0].InvoiceID)
	assert.True(t, result.Applications[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, newer.ID, result.Applications[1].InvoiceID)
	assert.True(t, result.Applications[1].Amount.Equal(decimal.NewFromInt(500)))
	assert.True(t, result.Remainder.IsZero())

	for _, id := range []uuid.UUID{oldest.ID, newer.ID} {
		inv, err := env.invoices.GetInvoice(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "PAID", inv.Status)
	}
}

func TestApplicationService_AutoApplyPartialAndRemainder(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	oldest := env.openInvoice(t, partyID, 1000, time.Now().AddDate(0, 0, 5))
	newer := env.openInvoice(t, partyID, 500, time.Now().AddDate(0, 0, 15))
	p := env.confirmedReceipt(t, partyID, 1200)

	result, err := env.applications.AutoApply(ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, result.Applications, 2)
	assert.True(t, result.Remainder.IsZero())

	first, err := env.invoices.GetInvoice(ctx, oldest.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", first.Status)

	second, err := env.invoices.GetInvoice(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "OPEN", second.Status)
	assert.True(t, second.AmountDue.Equal(decimal.NewFromInt(300)))
}

func TestApplicationService_AutoApplyRemainderStaysOnPayment(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	env.openInvoice(t, partyID, 1500, time.Now().AddDate(0, 0, 5))
	p := env.confirmedReceipt(t, partyID, 2000)

	result, err := env.applications.AutoApply(ctx, p.ID, "")
	require.NoError(t, err)
	assert.True(t, result.Remainder.Equal(decimal.NewFromInt(500)))

	p, err = env.payments.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, p.AmountUnapplied.Equal(decimal.NewFromInt(500)))
	assert.True(t, p.AmountApplied.Add(p.AmountUnapplied).Equal(p.Amount))
}

func TestApplicationService_AutoApplySkipsOtherParties(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	env.openInvoice(t, uuid.New(), 1000, time.Now().AddDate(0, 0, 5))
	mine := env.openInvoice(t, partyID, 300, time.Now().AddDate(0, 0, 5))
	p := env.confirmedReceipt(t, partyID, 1000)

	result, err := env.applications.AutoApply(ctx, p.ID, "")
	require.NoError(t, err)
	require.Len(t, result.Applications, 1)
	assert.Equal(t, mine.ID, result.Applications[0].InvoiceID)
	assert.True(t, result.Remainder.Equal(decimal.NewFromInt(700)))
}

func TestApplicationService_PreviewAutoApplyIsReadOnly(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	inv := env.openInvoice(t, partyID, 1000, time.Now().AddDate(0, 0, 5))
	p := env.confirmedReceipt(t, partyID, 800)

	plan, err := env.applications.PreviewAutoApply(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, plan.Lines, 1)
	assert.True(t, plan.TotalApplied.Equal(decimal.NewFromInt(800)))
	assert.True(t, plan.Remainder.IsZero())

	inv, err = env.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, inv.AmountPaid.IsZero())

	p, err = env.payments.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, p.AmountApplied.IsZero())
}

func TestApplicationService_ReverseRestoresBothSides(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	inv := env.openInvoice(t, partyID, 1000, time.Now().AddDate(0, 1, 0))
	p := env.confirmedReceipt(t, partyID, 1000)

	app, err := env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: p.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	reversed, err := env.applications.ReverseApplication(ctx, app.ID, "posted to wrong invoice")
	require.NoError(t, err)
	assert.Equal(t, "REVERSED", reversed.Status)
	require.NotNil(t, reversed.ReversedAt)

	inv, err = env.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "OPEN", inv.Status)
	assert.True(t, inv.AmountDue.Equal(inv.TotalAmount))
	assert.Nil(t, inv.PaidAt)

	p, err = env.payments.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, p.AmountApplied.IsZero())
	assert.True(t, p.AmountUnapplied.Equal(p.Amount))

	// The pair is free again after the reversal
	_, err = env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: p.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(400),
	})
	require.NoError(t, err)
}

func TestApplicationService_ReverseTwiceFails(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	inv := env.openInvoice(t, partyID, 500, time.Now().AddDate(0, 1, 0))
	p := env.confirmedReceipt(t, partyID, 500)
	app, err := env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: p.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	_, err = env.applications.ReverseApplication(ctx, app.ID, "duplicate entry")
	require.NoError(t, err)
	_, err = env.applications.ReverseApplication(ctx, app.ID, "duplicate entry")
	assertDomainErrorCode(t, err, "NOT_ACTIVE")
}

func TestApplicationService_RepeatedReverseLeavesSiblingBalancesIntact(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	// Both parents carry a second active application, so a reversal that
	// released amounts twice would leave the rollups out of step with the
	// remaining active rows
	inv := env.openInvoice(t, partyID, 300, time.Now().AddDate(0, 1, 0))
	first := env.confirmedReceipt(t, partyID, 100)
	second := env.confirmedReceipt(t, partyID, 200)

	app, err := env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: first.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	_, err = env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: second.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	_, err = env.applications.ReverseApplication(ctx, app.ID, "posted in error")
	require.NoError(t, err)
	_, err = env.applications.ReverseApplication(ctx, app.ID, "posted in error")
	assertDomainErrorCode(t, err, "NOT_ACTIVE")

	got, err := env.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.AmountPaid.Equal(decimal.NewFromInt(200)))
	assert.True(t, got.AmountDue.Equal(decimal.NewFromInt(100)))

	// The paid rollup still equals the sum of active applications
	apps, err := env.applications.ListByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	activeTotal := decimal.Zero
	for _, a := range apps {
		if a.Status == "ACTIVE" {
			activeTotal = activeTotal.Add(a.Amount)
		}
	}
	assert.True(t, got.AmountPaid.Equal(activeTotal))
}

func TestApplicationService_KindMismatchRejected(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	payable, err := env.invoices.CreateInvoice(ctx, CreateInvoiceCommand{
		Kind:      ledger.InvoiceKindPayable.String(),
		PartyID:   partyID,
		PartyName: "Supplier Ltd",
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 1, 0),
		Subtotal:  decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	payable, err = env.invoices.ApproveInvoice(ctx, payable.ID)
	require.NoError(t, err)

	receipt := env.confirmedReceipt(t, partyID, 500)
	_, err = env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: receipt.ID, InvoiceID: payable.ID, Amount: decimal.NewFromInt(500),
	})
	assertDomainErrorCode(t, err, "VALIDATION_ERROR")
}

func TestPaymentService_CancelWithActiveApplicationFails(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	inv := env.openInvoice(t, partyID, 500, time.Now().AddDate(0, 1, 0))
	p := env.confirmedReceipt(t, partyID, 500)
	_, err := env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: p.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	_, err = env.payments.ReversePayment(ctx, p.ID, "bounced")
	assertDomainErrorCode(t, err, "INVALID_TRANSITION")
}

func TestInvoiceService_VoidWithPaymentsFails(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	partyID := uuid.New()

	inv := env.openInvoice(t, partyID, 500, time.Now().AddDate(0, 1, 0))
	p := env.confirmedReceipt(t, partyID, 200)
	_, err := env.applications.ApplyPayment(ctx, ApplyPaymentCommand{
		PaymentID: p.ID, InvoiceID: inv.ID, Amount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	_, err = env.invoices.VoidInvoice(ctx, inv.ID, "entered in error")
	assertDomainErrorCode(t, err, "INVALID_TRANSITION")
}

func TestSequenceService_AllocateAndExhaustion(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.sequences.CreateSequence(ctx, CreateSequenceCommand{Name: "tiny_seq", MaxValue: 2})
	require.NoError(t, err)

	v1, err := env.sequences.AllocateValue(ctx, "tiny_seq")
	require.NoError(t, err)
	v2, err := env.sequences.AllocateValue(ctx, "tiny_seq")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)
	assert.Equal(t, int64(2), v2)

	_, err = env.sequences.AllocateValue(ctx, "tiny_seq")
	assertDomainErrorCode(t, err, "SEQUENCE_EXHAUSTED")

	seq, err := env.sequences.GetSequence(ctx, "tiny_seq")
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq.CurrentValue)
	assert.Equal(t, int64(0), seq.Remaining)
}

func TestSequenceService_DuplicateAndMissing(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.sequences.CreateSequence(ctx, CreateSequenceCommand{Name: "dup_seq", MaxValue: 100})
	require.NoError(t, err)
	_, err = env.sequences.CreateSequence(ctx, CreateSequenceCommand{Name: "dup_seq", MaxValue: 100})
	assertDomainErrorCode(t, err, "DUPLICATE_SEQUENCE")

	_, err = env.sequences.GetSequence(ctx, "missing_seq")
	assertDomainErrorCode(t, err, "SEQUENCE_NOT_FOUND")

	_, err = env.sequences.AllocateValue(ctx, "missing_seq")
	assertDomainErrorCode(t, err, "SEQUENCE_NOT_FOUND")
}
