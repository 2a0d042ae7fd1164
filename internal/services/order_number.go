package services

import (
	"context"
	"fmt"

	"farmcloud/internal/repository"
)

// SequenceAllocator issues the per-day order number suffix.
// Next runs inside the order creation transaction; repos is bound to it.
type SequenceAllocator interface {
	Next(ctx context.Context, repos *repository.Repositories, day string) (int, error)
}

// DatabaseSequence keeps the counter in the order_sequences table.
// The upsert row lock serialises concurrent creations for a day, and a rolled
// back order gives its number back, so sequences stay gap-free.
type DatabaseSequence struct{}

func (DatabaseSequence) Next(ctx context.Context, repos *repository.Repositories, day string) (int, error) {
	highest, err := repos.Orders.MaxSequence(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("failed to read existing order numbers: %w", err)
	}

	seq, err := repos.Sequences.Increment(ctx, day, highest+1)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate order sequence: %w", err)
	}
	// Orders inserted without going through the counter (imports, seeds) push it forward.
	if seq <= highest {
		seq = highest + 1
		if err := repos.Sequences.Set(ctx, day, seq); err != nil {
			return 0, fmt.Errorf("failed to advance order sequence: %w", err)
		}
	}
	return seq, nil
}

// SequenceCounter is an atomic external counter such as redis.
type SequenceCounter interface {
	NextOrderSequence(ctx context.Context, day string, floor int) (int, error)
}

// RedisSequence allocates from a shared counter outside the database.
// A rolled back order burns its number.
type RedisSequence struct {
	Counter SequenceCounter
}

func (s RedisSequence) Next(ctx context.Context, repos *repository.Repositories, day string) (int, error) {
	highest, err := repos.Orders.MaxSequence(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("failed to read existing order numbers: %w", err)
	}
	return s.Counter.NextOrderSequence(ctx, day, highest)
}
