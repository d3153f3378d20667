package ledger

import (
	"context"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApplicationService applies payments to invoices and reverses applications.
// Every operation runs in one transaction that locks the payment row first
// and invoice rows second; all engine transactions take locks in that order
// so two concurrent applications cannot deadlock.
type ApplicationService struct {
	tx     TxManager
	repos  RepositoryFactory
	reads  Repositories
	logger *zap.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(db *gorm.DB, tx TxManager, factory RepositoryFactory, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		tx:     tx,
		repos:  factory,
		reads:  factory(db),
		logger: logger,
	}
}

// ApplyPaymentCommand carries the input for applying a payment to an invoice
type ApplyPaymentCommand struct {
	PaymentID uuid.UUID       `json:"payment_id" binding:"required"`
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Remark    string          `json:"remark" binding:"max=500"`
}

// ApplyPayment applies an amount of a payment against an invoice. On success
// the invoice's paid amount, the payment's applied amount, and the new active
// application all move together; on any failure nothing changes.
func (s *ApplicationService) ApplyPayment(ctx context.Context, cmd ApplyPaymentCommand) (*ApplicationResponse, error) {
	if !cmd.Amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Applied amount must be positive")
	}

	var app *ledger.Application
	err := s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		repos := s.repos(tx)

		payment, err := repos.Payments.FindByIDForUpdate(ctx, cmd.PaymentID)
		if err != nil {
			return err
		}
		invoice, err := repos.Invoices.FindByIDForUpdate(ctx, cmd.InvoiceID)
		if err != nil {
			return err
		}

		existing, err := repos.Applications.FindActiveByPaymentAndInvoice(ctx, payment.ID, invoice.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return shared.NewDomainError("DUPLICATE_APPLICATION",
				"Payment already has an active application against this invoice")
		}

		amount, err := valueobject.NewMoney(cmd.Amount, payment.Currency)
		if err != nil {
			return shared.NewDomainError("VALIDATION_ERROR", err.Error())
		}

		app, err = ledger.NewApplication(payment, invoice, amount, cmd.Remark)
		if err != nil {
			return err
		}
		if err := payment.AllocateAmount(amount); err != nil {
			return err
		}
		if err := invoice.ApplyAmount(amount); err != nil {
			return err
		}

		if err := repos.Applications.Create(ctx, app); err != nil {
			return err
		}
		if err := repos.Payments.SaveWithLock(ctx, payment); err != nil {
			return err
		}
		return repos.Invoices.SaveWithLock(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment applied",
		zap.String("payment_id", cmd.PaymentID.String()),
		zap.String("invoice_id", cmd.InvoiceID.String()),
		zap.String("amount", cmd.Amount.String()),
	)

	return NewApplicationResponse(app), nil
}

// ReverseApplication undoes an active application. The reversed row stays
// behind as audit trail; both document balances are restored.
func (s *ApplicationService) ReverseApplication(ctx context.Context, id uuid.UUID, reason string) (*ApplicationResponse, error) {
	var app *ledger.Application
	err := s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		repos := s.repos(tx)

		var err error
		app, err = repos.Applications.FindByID(ctx, id)
		if err != nil {
			return err
		}

		payment, err := repos.Payments.FindByIDForUpdate(ctx, app.PaymentID)
		if err != nil {
			return err
		}
		invoice, err := repos.Invoices.FindByIDForUpdate(ctx, app.InvoiceID)
		if err != nil {
			return err
		}

		// Re-read under the parent locks; the first read was unlocked and a
		// concurrent reversal may have committed before the locks were granted
		app, err = repos.Applications.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := app.Reverse(reason); err != nil {
			return err
		}
		amount := app.GetAmountMoney()
		if err := payment.ReleaseAmount(amount); err != nil {
			return err
		}
		if err := invoice.ReverseAmount(amount); err != nil {
			return err
		}

		if err := repos.Applications.Save(ctx, app); err != nil {
			return err
		}
		if err := repos.Payments.SaveWithLock(ctx, payment); err != nil {
			return err
		}
		return repos.Invoices.SaveWithLock(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Application reversed",
		zap.String("application_id", id.String()),
		zap.String("reason", reason),
	)

	return NewApplicationResponse(app), nil
}

// AutoApplyResult is the outcome of distributing a payment across invoices
type AutoApplyResult struct {
	Payment      *PaymentResponse       `json:"payment"`
	Applications []*ApplicationResponse `json:"applications"`
	Remainder    decimal.Decimal        `json:"remainder"`
}

// AutoApply distributes a payment's unapplied balance across the party's
// open invoices in FIFO order (oldest due date first). Any remainder stays
// on the payment as an unapplied balance.
func (s *ApplicationService) AutoApply(ctx context.Context, paymentID uuid.UUID, remark string) (*AutoApplyResult, error) {
	var result *AutoApplyResult
	err := s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		repos := s.repos(tx)

		payment, err := repos.Payments.FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if !payment.Status.IsApplicable() {
			return shared.NewDomainError("PAYMENT_NOT_APPLICABLE",
				"Only confirmed or cleared payments can be applied")
		}
		available := payment.GetAmountUnappliedMoney()
		if !available.IsPositive() {
			return shared.NewDomainError("VALIDATION_ERROR", "Payment has no unapplied balance")
		}

		candidates, err := repos.Invoices.FindOpenByParty(ctx, payment.Kind.InvoiceKind(), payment.PartyID)
		if err != nil {
			return err
		}
		plan, err := ledger.PlanSettlement(available, candidates)
		if err != nil {
			return err
		}

		applications := make([]*ApplicationResponse, 0, len(plan.Lines))
		for _, line := range plan.Lines {
			invoice, err := repos.Invoices.FindByIDForUpdate(ctx, line.InvoiceID)
			if err != nil {
				return err
			}
			// Re-check under lock; the planning read was not locked
			if !invoice.Status.CanApplyPayment() || !invoice.AmountDue.IsPositive() {
				continue
			}
			existing, err := repos.Applications.FindActiveByPaymentAndInvoice(ctx, payment.ID, invoice.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}

			amount, err := valueobject.NewMoney(decimal.Min(line.Amount, invoice.AmountDue), payment.Currency)
			if err != nil {
				return shared.NewDomainError("VALIDATION_ERROR", err.Error())
			}

			app, err := ledger.NewApplication(payment, invoice, amount, remark)
			if err != nil {
				return err
			}
			if err := payment.AllocateAmount(amount); err != nil {
				return err
			}
			if err := invoice.ApplyAmount(amount); err != nil {
				return err
			}

			if err := repos.Applications.Create(ctx, app); err != nil {
				return err
			}
			if err := repos.Invoices.SaveWithLock(ctx, invoice); err != nil {
				return err
			}
			applications = append(applications, NewApplicationResponse(app))
		}

		if err := repos.Payments.SaveWithLock(ctx, payment); err != nil {
			return err
		}

		result = &AutoApplyResult{
			Payment:      NewPaymentResponse(payment),
			Applications: applications,
			Remainder:    payment.AmountUnapplied,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment auto-applied",
		zap.String("payment_id", paymentID.String()),
		zap.Int("applications", len(result.Applications)),
		zap.String("remainder", result.Remainder.String()),
	)

	return result, nil
}

// PreviewAutoApply plans a FIFO distribution without applying anything
func (s *ApplicationService) PreviewAutoApply(ctx context.Context, paymentID uuid.UUID) (*ledger.SettlementPlan, error) {
	payment, err := s.reads.Payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !payment.Status.IsApplicable() {
		return nil, shared.NewDomainError("PAYMENT_NOT_APPLICABLE",
			"Only confirmed or cleared payments can be applied")
	}
	available := payment.GetAmountUnappliedMoney()
	if !available.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment has no unapplied balance")
	}

	candidates, err := s.reads.Invoices.FindOpenByParty(ctx, payment.Kind.InvoiceKind(), payment.PartyID)
	if err != nil {
		return nil, err
	}
	return ledger.PlanSettlement(available, candidates)
}

// GetApplication returns an application by ID
func (s *ApplicationService) GetApplication(ctx context.Context, id uuid.UUID) (*ApplicationResponse, error) {
	app, err := s.reads.Applications.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewApplicationResponse(app), nil
}

// ListByPayment returns all applications of a payment
func (s *ApplicationService) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*ApplicationResponse, error) {
	apps, err := s.reads.Applications.FindByPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return toApplicationResponses(apps), nil
}

// ListByInvoice returns all applications against an invoice
func (s *ApplicationService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*ApplicationResponse, error) {
	apps, err := s.reads.Applications.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return toApplicationResponses(apps), nil
}

func toApplicationResponses(apps []*ledger.Application) []*ApplicationResponse {
	responses := make([]*ApplicationResponse, len(apps))
	for i, app := range apps {
		responses[i] = NewApplicationResponse(app)
	}
	return responses
}
