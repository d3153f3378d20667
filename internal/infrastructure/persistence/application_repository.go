package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormApplicationRepository implements ledger.ApplicationRepository using GORM
type GormApplicationRepository struct {
	db *gorm.DB
}

// NewGormApplicationRepository creates a new GormApplicationRepository
func NewGormApplicationRepository(db *gorm.DB) *GormApplicationRepository {
	return &GormApplicationRepository{db: db}
}

// FindByID finds an application by its ID
func (r *GormApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Application, error) {
	var app ledger.Application
	if err := r.db.WithContext(ctx).
		First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// FindByIDForUpdate loads an application with a row lock. Must run inside a
// transaction; the lock is held until that transaction ends.
func (r *GormApplicationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Application, error) {
	query := r.db.WithContext(ctx)
	if supportsRowLocking(query) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var app ledger.Application
	if err := query.First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// FindByPayment returns all applications of a payment, newest first
func (r *GormApplicationRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]*ledger.Application, error) {
	var apps []*ledger.Application
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("applied_at DESC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications by payment: %w", err)
	}
	return apps, nil
}

// FindByInvoice returns all applications against an invoice, newest first
func (r *GormApplicationRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*ledger.Application, error) {
	var apps []*ledger.Application
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("applied_at DESC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications by invoice: %w", err)
	}
	return apps, nil
}

// FindActiveByPaymentAndInvoice returns the active application linking the
// pair, nil if none exists
func (r *GormApplicationRepository) FindActiveByPaymentAndInvoice(ctx context.Context, paymentID, invoiceID uuid.UUID) (*ledger.Application, error) {
	var app ledger.Application
	err := r.db.WithContext(ctx).
		Where("payment_id = ? AND invoice_id = ? AND status = ?",
			paymentID, invoiceID, ledger.ApplicationStatusActive).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

// FindActiveByPayment returns the active applications of a payment
func (r *GormApplicationRepository) FindActiveByPayment(ctx context.Context, paymentID uuid.UUID) ([]*ledger.Application, error) {
	var apps []*ledger.Application
	if err := r.db.WithContext(ctx).
		Where("payment_id = ? AND status = ?", paymentID, ledger.ApplicationStatusActive).
		Order("applied_at ASC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list active applications: %w", err)
	}
	return apps, nil
}

// Create inserts a new application
func (r *GormApplicationRepository) Create(ctx context.Context, app *ledger.Application) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// Save updates an existing application
func (r *GormApplicationRepository) Save(ctx context.Context, app *ledger.Application) error {
	if err := r.db.WithContext(ctx).Save(app).Error; err != nil {
		return fmt.Errorf("failed to save application: %w", err)
	}
	return nil
}
