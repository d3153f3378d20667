package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService provides application-level payment operations
type PaymentService struct {
	tx        TxManager
	repos     RepositoryFactory
	reads     Repositories
	numbering NumberingConfig
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(db *gorm.DB, tx TxManager, factory RepositoryFactory, numbering NumberingConfig, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		tx:        tx,
		repos:     factory,
		reads:     factory(db),
		numbering: numbering,
		logger:    logger,
	}
}

// CreatePaymentCommand carries the input for recording a payment
type CreatePaymentCommand struct {
	Kind        string          `json:"kind" binding:"required,oneof=RECEIPT DISBURSEMENT"`
	Number      string          `json:"number" binding:"omitempty,max=50"`
	PartyID     uuid.UUID       `json:"party_id" binding:"required"`
	PartyName   string          `json:"party_name" binding:"required,max=200"`
	PaymentDate time.Time       `json:"payment_date" binding:"required"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Method      string          `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CHECK CARD OTHER"`
	Reference   string          `json:"reference" binding:"max=100"`
	Remark      string          `json:"remark"`
}

// CreatePayment stores a new draft payment. The document number comes from
// the sequence allocator unless the caller supplies one; a supplied number
// must not collide with an existing payment.
func (s *PaymentService) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (*PaymentResponse, error) {
	kind := ledger.PaymentKind(cmd.Kind)
	if !kind.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment kind must be RECEIPT or DISBURSEMENT")
	}

	currency := valueobject.Currency(cmd.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	amount, err := valueobject.NewMoney(cmd.Amount, currency)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}

	var p *ledger.Payment
	err = s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		repos := s.repos(tx)

		number := cmd.Number
		if number == "" {
			seqName, format := paymentNumbering(kind, s.numbering.Width)
			value, err := repos.Allocator.Allocate(ctx, seqName)
			if err != nil {
				return err
			}
			number = format.Render(value)
		} else {
			if _, err := repos.Payments.FindByNumber(ctx, number); err == nil {
				return shared.NewDomainError("DUPLICATE_NUMBER",
					fmt.Sprintf("Payment number %s already exists", number))
			} else if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}

		p, err = ledger.NewPayment(
			kind,
			number,
			cmd.PartyID,
			cmd.PartyName,
			cmd.PaymentDate,
			amount,
			ledger.PaymentMethod(cmd.Method),
			cmd.Reference,
		)
		if err != nil {
			return err
		}
		if cmd.Remark != "" {
			p.Remark = cmd.Remark
		}

		return repos.Payments.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logEvents(p)
	s.logger.Info("Payment created",
		zap.String("number", p.Number),
		zap.String("kind", p.Kind.String()),
		zap.String("amount", p.Amount.String()),
	)

	return NewPaymentResponse(p), nil
}

// GetPayment returns a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.reads.Payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewPaymentResponse(p), nil
}

// GetPaymentBalance returns the monetary position of a payment
func (s *PaymentService) GetPaymentBalance(ctx context.Context, id uuid.UUID) (*PaymentBalanceResponse, error) {
	p, err := s.reads.Payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewPaymentBalanceResponse(p), nil
}

// GetPaymentByNumber returns a payment by its document number
func (s *PaymentService) GetPaymentByNumber(ctx context.Context, number string) (*PaymentResponse, error) {
	p, err := s.reads.Payments.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return NewPaymentResponse(p), nil
}

// ListPayments returns payments matching the filter
func (s *PaymentService) ListPayments(ctx context.Context, filter ledger.PaymentFilter) (*ListResult[*PaymentResponse], error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	payments, total, err := s.reads.Payments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = NewPaymentResponse(p)
	}

	return &ListResult[*PaymentResponse]{
		Items:  items,
		Total:  total,
		Offset: filter.Offset,
		Limit:  filter.Limit,
	}, nil
}

// ConfirmPayment transitions a draft payment to CONFIRMED
func (s *PaymentService) ConfirmPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	return s.transition(ctx, id, func(p *ledger.Payment) error {
		return p.Confirm()
	})
}

// ClearPayment records bank settlement of a confirmed payment
func (s *PaymentService) ClearPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	return s.transition(ctx, id, func(p *ledger.Payment) error {
		return p.MarkCleared()
	})
}

// CancelPayment cancels a payment that has no active applications
func (s *PaymentService) CancelPayment(ctx context.Context, id uuid.UUID, reason string) (*PaymentResponse, error) {
	return s.transition(ctx, id, func(p *ledger.Payment) error {
		return p.Cancel(reason)
	})
}

// ReversePayment reverses a confirmed or cleared payment (e.g. bounced check).
// Active applications must be reversed first via the application service.
func (s *PaymentService) ReversePayment(ctx context.Context, id uuid.UUID, reason string) (*PaymentResponse, error) {
	return s.transition(ctx, id, func(p *ledger.Payment) error {
		return p.Reverse(reason)
	})
}

// transition locks the payment, applies the state change, and saves it
func (s *PaymentService) transition(ctx context.Context, id uuid.UUID, change func(*ledger.Payment) error) (*PaymentResponse, error) {
	var p *ledger.Payment
	err := s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		repos := s.repos(tx)

		var err error
		p, err = repos.Payments.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := change(p); err != nil {
			return err
		}
		return repos.Payments.SaveWithLock(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logEvents(p)
	return NewPaymentResponse(p), nil
}

// logEvents drains pending domain events to the log
func (s *PaymentService) logEvents(p *ledger.Payment) {
	for _, event := range p.GetDomainEvents() {
		s.logger.Debug("Domain event",
			zap.String("type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
		)
	}
	p.ClearDomainEvents()
}
