package sequence

import (
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
)

// Sequence is a named, durable monotonic counter used to mint unique document
// identifiers. The stored CurrentValue only ever increases (or wraps to
// MinValue when Cycle is set) and no two callers ever observe the same value.
type Sequence struct {
	Name         string `gorm:"type:varchar(100);primary_key"`
	CurrentValue int64  `gorm:"not null"`
	IncrementBy  int64  `gorm:"not null;default:1"`
	MinValue     int64  `gorm:"not null;default:1"`
	MaxValue     int64  `gorm:"not null"`
	Cycle        bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (Sequence) TableName() string {
	return "sequences"
}

// NewSequence creates a new sequence definition.
// The counter starts below MinValue so the first allocation returns MinValue.
func NewSequence(name string, incrementBy, minValue, maxValue int64, cycle bool) (*Sequence, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SEQUENCE_NAME", "Sequence name cannot be empty")
	}
	if incrementBy <= 0 {
		return nil, shared.NewDomainError("INVALID_SEQUENCE_INCREMENT", "Increment must be positive")
	}
	if minValue > maxValue {
		return nil, shared.NewDomainError("INVALID_SEQUENCE_RANGE", "Min value cannot exceed max value")
	}

	now := time.Now()
	return &Sequence{
		Name:         name,
		CurrentValue: minValue - incrementBy,
		IncrementBy:  incrementBy,
		MinValue:     minValue,
		MaxValue:     maxValue,
		Cycle:        cycle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Next advances the counter and returns the newly allocated value.
// This is the pure state transition; durability and locking are the
// responsibility of the repository that persists the mutated sequence.
func (s *Sequence) Next() (int64, error) {
	next := s.CurrentValue + s.IncrementBy
	if next > s.MaxValue {
		if !s.Cycle {
			return 0, shared.NewDomainError("SEQUENCE_EXHAUSTED",
				fmt.Sprintf("Sequence %s is exhausted (max value %d reached)", s.Name, s.MaxValue))
		}
		next = s.MinValue
	}

	s.CurrentValue = next
	s.UpdatedAt = time.Now()
	return next, nil
}

// Remaining returns how many allocations are left before exhaustion.
// Returns -1 for cycling sequences, which never exhaust.
func (s *Sequence) Remaining() int64 {
	if s.Cycle {
		return -1
	}
	if s.CurrentValue >= s.MaxValue {
		return 0
	}
	return (s.MaxValue - s.CurrentValue) / s.IncrementBy
}
