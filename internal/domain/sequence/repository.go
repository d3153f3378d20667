package sequence

import "context"

// Repository persists sequence definitions
type Repository interface {
	// FindByName finds a sequence by name, shared.ErrNotFound if absent
	FindByName(ctx context.Context, name string) (*Sequence, error)
	// Create inserts a new sequence row
	Create(ctx context.Context, seq *Sequence) error
	// Save updates an existing sequence row
	Save(ctx context.Context, seq *Sequence) error
}

// Allocator issues unique, strictly increasing values per named counter.
// An allocation is a read-increment-return performed as a single atomic unit
// against the backing store; the advanced counter is durable before the value
// is handed to the caller.
type Allocator interface {
	Allocate(ctx context.Context, name string) (int64, error)
}
