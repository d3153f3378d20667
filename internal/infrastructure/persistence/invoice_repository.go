package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements ledger.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	var inv ledger.Invoice
	if err := r.db.WithContext(ctx).
		First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByIDForUpdate loads an invoice with a row lock. Must run inside a
// transaction; the lock is held until that transaction ends.
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	query := r.db.WithContext(ctx)
	if supportsRowLocking(query) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var inv ledger.Invoice
	if err := query.First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByNumber finds an invoice by its document number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*ledger.Invoice, error) {
	var inv ledger.Invoice
	if err := r.db.WithContext(ctx).
		First(&inv, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindOpenByParty returns open invoices for a party, oldest due date first.
// Creation time breaks due-date ties so FIFO settlement is deterministic.
func (r *GormInvoiceRepository) FindOpenByParty(ctx context.Context, kind ledger.InvoiceKind, partyID uuid.UUID) ([]*ledger.Invoice, error) {
	var invoices []*ledger.Invoice
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND party_id = ? AND status = ?", kind, partyID, ledger.InvoiceStatusOpen).
		Order("due_date ASC, created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}
	return invoices, nil
}

// List returns invoices matching the filter plus the unpaged total
func (r *GormInvoiceRepository) List(ctx context.Context, filter ledger.InvoiceFilter) ([]*ledger.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&ledger.Invoice{})

	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		query = query.Where("due_date > ?", *filter.DueAfter)
	}
	if filter.Overdue {
		query = query.Where("status = ? AND due_date < ?", ledger.InvoiceStatusOpen, time.Now())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var invoices []*ledger.Invoice
	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	return invoices, total, nil
}

// Create inserts a new invoice
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *ledger.Invoice) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("DUPLICATE_NUMBER",
				fmt.Sprintf("Invoice number %s already exists", inv.Number))
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// Save updates an existing invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *ledger.Invoice) error {
	if err := r.db.WithContext(ctx).Save(inv).Error; err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}

// SaveWithLock updates an invoice only if the stored version still matches
// the version the aggregate was loaded with. The domain increments Version
// on every mutation, so a zero-row update means a concurrent writer won.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *ledger.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(inv).
		Select("*").
		Where("id = ? AND version = ?", inv.ID, inv.Version-1).
		Updates(inv)
	if result.Error != nil {
		return fmt.Errorf("failed to save invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR",
			"Invoice was modified by another transaction")
	}
	return nil
}

// AgingSummary buckets open invoice balances by days overdue as of a date.
// Bucketing happens in Go so the query stays dialect independent.
func (r *GormInvoiceRepository) AgingSummary(ctx context.Context, kind ledger.InvoiceKind, asOf time.Time) ([]ledger.AgingBucket, error) {
	type row struct {
		DueDate   time.Time
		AmountDue decimal.Decimal
	}

	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&ledger.Invoice{}).
		Select("due_date, amount_due").
		Where("kind = ? AND status = ?", kind, ledger.InvoiceStatusOpen).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load aging rows: %w", err)
	}

	labels := []string{"current", "1-30", "31-60", "61-90", "90+"}
	buckets := make([]ledger.AgingBucket, len(labels))
	for i, label := range labels {
		buckets[i] = ledger.AgingBucket{Label: label, Amount: decimal.Zero}
	}

	for _, rec := range rows {
		days := int(asOf.Sub(rec.DueDate).Hours() / 24)
		var idx int
		switch {
		case days <= 0:
			idx = 0
		case days <= 30:
			idx = 1
		case days <= 60:
			idx = 2
		case days <= 90:
			idx = 3
		default:
			idx = 4
		}
		buckets[idx].Count++
		buckets[idx].Amount = buckets[idx].Amount.Add(rec.AmountDue)
	}

	return buckets, nil
}
