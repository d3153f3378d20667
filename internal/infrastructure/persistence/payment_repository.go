package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements ledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var p ledger.Payment
	if err := r.db.WithContext(ctx).
		First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByIDForUpdate loads a payment with a row lock. Must run inside a
// transaction; the lock is held until that transaction ends.
func (r *GormPaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	query := r.db.WithContext(ctx)
	if supportsRowLocking(query) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var p ledger.Payment
	if err := query.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByNumber finds a payment by its document number
func (r *GormPaymentRepository) FindByNumber(ctx context.Context, number string) (*ledger.Payment, error) {
	var p ledger.Payment
	if err := r.db.WithContext(ctx).
		First(&p, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns payments matching the filter plus the unpaged total
func (r *GormPaymentRepository) List(ctx context.Context, filter ledger.PaymentFilter) ([]*ledger.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&ledger.Payment{})

	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.WithUnapplied {
		query = query.Where("amount_unapplied > ? AND status IN ?",
			decimal.Zero, []ledger.PaymentStatus{ledger.PaymentStatusConfirmed, ledger.PaymentStatusCleared})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var payments []*ledger.Payment
	if err := query.Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, total, nil
}

// Create inserts a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *ledger.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("DUPLICATE_NUMBER",
				fmt.Sprintf("Payment number %s already exists", p.Number))
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// Save updates an existing payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *ledger.Payment) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// SaveWithLock updates a payment only if the stored version still matches
// the version the aggregate was loaded with
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, p *ledger.Payment) error {
	result := r.db.WithContext(ctx).
		Model(p).
		Select("*").
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Updates(p)
	if result.Error != nil {
		return fmt.Errorf("failed to save payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR",
			"Payment was modified by another transaction")
	}
	return nil
}
