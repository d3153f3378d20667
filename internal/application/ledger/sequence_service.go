package ledger

import (
	"context"
	"errors"

	"github.com/finbooks/backend/internal/domain/sequence"
	"github.com/finbooks/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SequenceService manages named counters and exposes manual allocation
// for operators (e.g. reserving a number before importing documents)
type SequenceService struct {
	tx     TxManager
	repos  RepositoryFactory
	reads  Repositories
	logger *zap.Logger
}

// NewSequenceService creates a new SequenceService
func NewSequenceService(db *gorm.DB, tx TxManager, factory RepositoryFactory, logger *zap.Logger) *SequenceService {
	return &SequenceService{
		tx:     tx,
		repos:  factory,
		reads:  factory(db),
		logger: logger,
	}
}

// CreateSequenceCommand carries the input for defining a counter
type CreateSequenceCommand struct {
	Name        string `json:"name" binding:"required,max=100"`
	IncrementBy int64  `json:"increment_by"`
	MinValue    int64  `json:"min_value"`
	MaxValue    int64  `json:"max_value" binding:"required"`
	Cycle       bool   `json:"cycle"`
}

// SequenceResponse represents a sequence in API responses
type SequenceResponse struct {
	Name         string `json:"name"`
	CurrentValue int64  `json:"current_value"`
	IncrementBy  int64  `json:"increment_by"`
	MinValue     int64  `json:"min_value"`
	MaxValue     int64  `json:"max_value"`
	Cycle        bool   `json:"cycle"`
	Remaining    int64  `json:"remaining"`
}

// NewSequenceResponse converts a sequence to a response
func NewSequenceResponse(seq *sequence.Sequence) *SequenceResponse {
	return &SequenceResponse{
		Name:         seq.Name,
		CurrentValue: seq.CurrentValue,
		IncrementBy:  seq.IncrementBy,
		MinValue:     seq.MinValue,
		MaxValue:     seq.MaxValue,
		Cycle:        seq.Cycle,
		Remaining:    seq.Remaining(),
	}
}

// CreateSequence defines a new named counter
func (s *SequenceService) CreateSequence(ctx context.Context, cmd CreateSequenceCommand) (*SequenceResponse, error) {
	if cmd.IncrementBy == 0 {
		cmd.IncrementBy = 1
	}
	if cmd.MinValue == 0 {
		cmd.MinValue = 1
	}

	seq, err := sequence.NewSequence(cmd.Name, cmd.IncrementBy, cmd.MinValue, cmd.MaxValue, cmd.Cycle)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		return s.repos(tx).Sequences.Create(ctx, seq)
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("DUPLICATE_SEQUENCE", "A sequence with this name already exists")
		}
		return nil, err
	}

	s.logger.Info("Sequence created",
		zap.String("name", seq.Name),
		zap.Int64("min", seq.MinValue),
		zap.Int64("max", seq.MaxValue),
	)

	return NewSequenceResponse(seq), nil
}

// GetSequence returns a sequence by name
func (s *SequenceService) GetSequence(ctx context.Context, name string) (*SequenceResponse, error) {
	seq, err := s.reads.Sequences.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SEQUENCE_NOT_FOUND", "Sequence does not exist")
		}
		return nil, err
	}
	return NewSequenceResponse(seq), nil
}

// AllocateValue hands out the next value of a counter. The advanced counter
// is committed before the value is returned, so values are never reissued
// even if the caller discards the result.
func (s *SequenceService) AllocateValue(ctx context.Context, name string) (int64, error) {
	var value int64
	err := s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		value, err = s.repos(tx).Allocator.Allocate(ctx, name)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Sequence value allocated",
		zap.String("name", name),
		zap.Int64("value", value),
	)
	return value, nil
}
