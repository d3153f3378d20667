package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/backend/internal/domain/sequence"
	"github.com/finbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository implements sequence.Repository and sequence.Allocator
// using GORM. Allocation locks the counter row so concurrent allocators
// serialize on the same sequence and never observe the same value.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// FindByName finds a sequence by name
func (r *GormSequenceRepository) FindByName(ctx context.Context, name string) (*sequence.Sequence, error) {
	var seq sequence.Sequence
	if err := r.db.WithContext(ctx).
		First(&seq, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &seq, nil
}

// Create inserts a new sequence row
func (r *GormSequenceRepository) Create(ctx context.Context, seq *sequence.Sequence) error {
	if err := r.db.WithContext(ctx).Create(seq).Error; err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create sequence: %w", err)
	}
	return nil
}

// Save updates an existing sequence row
func (r *GormSequenceRepository) Save(ctx context.Context, seq *sequence.Sequence) error {
	if err := r.db.WithContext(ctx).Save(seq).Error; err != nil {
		return fmt.Errorf("failed to save sequence: %w", err)
	}
	return nil
}

// Allocate atomically advances the named counter and returns the new value.
// The read-increment-write runs in a transaction with the counter row locked;
// when called inside an outer transaction GORM nests it as a savepoint, so
// the allocation commits or rolls back together with the caller's work.
func (r *GormSequenceRepository) Allocate(ctx context.Context, name string) (int64, error) {
	var allocated int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if supportsRowLocking(tx) {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var seq sequence.Sequence
		if err := query.First(&seq, "name = ?", name).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewDomainError("SEQUENCE_NOT_FOUND",
					fmt.Sprintf("Sequence %s does not exist", name))
			}
			return err
		}

		value, err := seq.Next()
		if err != nil {
			return err
		}

		if err := tx.Model(&sequence.Sequence{}).
			Where("name = ?", name).
			Updates(map[string]any{
				"current_value": seq.CurrentValue,
				"updated_at":    seq.UpdatedAt,
			}).Error; err != nil {
			return fmt.Errorf("failed to advance sequence %s: %w", name, err)
		}

		allocated = value
		return nil
	})
	if err != nil {
		return 0, err
	}

	return allocated, nil
}
