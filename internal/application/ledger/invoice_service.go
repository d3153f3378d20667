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

// InvoiceService provides application-level invoice operations
type InvoiceService struct {
	tx        TxManager
	repos     RepositoryFactory
	reads     Repositories
	numbering NumberingConfig
	logger    *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(db *gorm.DB, tx TxManager, factory RepositoryFactory, numbering NumberingConfig, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		tx:        tx,
		repos:     factory,
		reads:     factory(db),
		numbering: numbering,
		logger:    logger,
	}
}

// CreateInvoiceCommand carries the input for creating an invoice
type CreateInvoiceCommand struct {
	Kind         string          `json:"kind" binding:"required,oneof=RECEIVABLE PAYABLE"`
	Number       string          `json:"number" binding:"omitempty,max=50"`
	PartyID      uuid.UUID       `json:"party_id" binding:"required"`
	PartyName    string          `json:"party_name" binding:"required,max=200"`
	BillSiteID   *uuid.UUID      `json:"bill_site_id"`
	IssueDate    time.Time       `json:"issue_date" binding:"required"`
	DueDate      time.Time       `json:"due_date" binding:"required"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Subtotal     decimal.Decimal `json:"subtotal" binding:"required"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	Remark       string          `json:"remark"`
}

// CreateInvoice stores a new draft invoice. The document number comes from
// the sequence allocator unless the caller supplies one; a supplied number
// must not collide with an existing invoice. Allocation and insert share one
// transaction, so a failed insert rolls the counter back and a committed
// invoice never reuses its number.
func (s *InvoiceService) CreateInvoice(ctx context.Context, cmd CreateInvoiceCommand) (*InvoiceResponse, error) {
	kind := ledger.InvoiceKind(cmd.Kind)
	if !kind.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invoice kind must be RECEIVABLE or PAYABLE")
	}

	currency := valueobject.Currency(cmd.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	subtotal, err := valueobject.NewMoney(cmd.Subtotal, currency)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}
	taxAmount, err := valueobject.NewMoney(cmd.TaxAmount, currency)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}
	exchangeRate := cmd.ExchangeRate
	if exchangeRate.IsZero() {
		exchangeRate = decimal.NewFromInt(1)
	}

	var inv *ledger.Invoice
	err = s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		repos := s.repos(tx)

		number := cmd.Number
		if number == "" {
			seqName, format := invoiceNumbering(kind, s.numbering.Width)
			value, err := repos.Allocator.Allocate(ctx, seqName)
			if err != nil {
				return err
			}
			number = format.Render(value)
		} else {
			if _, err := repos.Invoices.FindByNumber(ctx, number); err == nil {
				return shared.NewDomainError("DUPLICATE_NUMBER",
					fmt.Sprintf("Invoice number %s already exists", number))
			} else if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}

		inv, err = ledger.NewInvoice(
			kind,
			number,
			cmd.PartyID,
			cmd.PartyName,
			cmd.BillSiteID,
			cmd.IssueDate,
			cmd.DueDate,
			subtotal,
			taxAmount,
			exchangeRate,
		)
		if err != nil {
			return err
		}
		if cmd.Remark != "" {
			inv.Remark = cmd.Remark
		}

		return repos.Invoices.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.logEvents(inv)
	s.logger.Info("Invoice created",
		zap.String("number", inv.Number),
		zap.String("kind", inv.Kind.String()),
		zap.String("total", inv.TotalAmount.String()),
	)

	return NewInvoiceResponse(inv), nil
}

// GetInvoice returns an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.reads.Invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewInvoiceResponse(inv), nil
}

// GetInvoiceBalance returns the monetary position of an invoice
func (s *InvoiceService) GetInvoiceBalance(ctx context.Context, id uuid.UUID) (*InvoiceBalanceResponse, error) {
	inv, err := s.reads.Invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewInvoiceBalanceResponse(inv), nil
}

// GetInvoiceByNumber returns an invoice by its document number
func (s *InvoiceService) GetInvoiceByNumber(ctx context.Context, number string) (*InvoiceResponse, error) {
	inv, err := s.reads.Invoices.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return NewInvoiceResponse(inv), nil
}

// ListInvoices returns invoices matching the filter
func (s *InvoiceService) ListInvoices(ctx context.Context, filter ledger.InvoiceFilter) (*ListResult[*InvoiceResponse], error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	invoices, total, err := s.reads.Invoices.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = NewInvoiceResponse(inv)
	}

	return &ListResult[*InvoiceResponse]{
		Items:  items,
		Total:  total,
		Offset: filter.Offset,
		Limit:  filter.Limit,
	}, nil
}

// ApproveInvoice transitions a draft invoice to OPEN
func (s *InvoiceService) ApproveInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, id, func(inv *ledger.Invoice) error {
		return inv.Approve()
	})
}

// CancelInvoice cancels a draft invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID, reason string) (*InvoiceResponse, error) {
	return s.transition(ctx, id, func(inv *ledger.Invoice) error {
		return inv.Cancel(reason)
	})
}

// VoidInvoice voids an approved invoice with no active applications
func (s *InvoiceService) VoidInvoice(ctx context.Context, id uuid.UUID, reason string) (*InvoiceResponse, error) {
	return s.transition(ctx, id, func(inv *ledger.Invoice) error {
		return inv.Void(reason)
	})
}

// AgingSummary buckets open balances of the given kind by days overdue
func (s *InvoiceService) AgingSummary(ctx context.Context, kind ledger.InvoiceKind, asOf time.Time) ([]ledger.AgingBucket, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invoice kind must be RECEIVABLE or PAYABLE")
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	return s.reads.Invoices.AgingSummary(ctx, kind, asOf)
}

// transition locks the invoice, applies the state change, and saves it
func (s *InvoiceService) transition(ctx context.Context, id uuid.UUID, change func(*ledger.Invoice) error) (*InvoiceResponse, error) {
	var inv *ledger.Invoice
	err := s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		repos := s.repos(tx)

		var err error
		inv, err = repos.Invoices.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := change(inv); err != nil {
			return err
		}
		return repos.Invoices.SaveWithLock(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.logEvents(inv)
	return NewInvoiceResponse(inv), nil
}

// logEvents drains pending domain events to the log
func (s *InvoiceService) logEvents(inv *ledger.Invoice) {
	for _, event := range inv.GetDomainEvents() {
		s.logger.Debug("Domain event",
			zap.String("type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
		)
	}
	inv.ClearDomainEvents()
}
