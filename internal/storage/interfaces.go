package storage

import (
	"context"

	"signal-lab/internal/domain"
)

// PairStore provides access to the tracked pairs registry.
type PairStore interface {
	// Insert registers a pair. Returns ErrDuplicateKey if it is already tracked.
	Insert(ctx context.Context, p domain.Pair) error

	// GetAll retrieves all tracked pairs in registration order.
	GetAll(ctx context.Context) ([]domain.Pair, error)
}

// PriceSampleStore provides access to price_samples storage.
type PriceSampleStore interface {
	// InsertBulk adds multiple samples. Fails entire batch on duplicate (pair, timestamp_ms).
	InsertBulk(ctx context.Context, samples []*domain.PriceSample) error

	// GetByPair retrieves all samples for a pair, ordered by timestamp ASC.
	GetByPair(ctx context.Context, pair domain.Pair) ([]*domain.PriceSample, error)

	// ListPairs returns every pair that has at least one sample, sorted by label.
	ListPairs(ctx context.Context) ([]domain.Pair, error)
}

// PositionStore provides access to positions storage.
type PositionStore interface {
	// Insert adds a new position and assigns its ID.
	// Returns ErrDuplicateKey if (pair, strategy, buy_time_ms) exists.
	Insert(ctx context.Context, p *domain.Position) error

	// InsertBulk adds multiple positions atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, positions []*domain.Position) error

	// GetAll retrieves all positions ordered by buy time, then ID.
	GetAll(ctx context.Context) ([]*domain.Position, error)

	// GetByStrategy retrieves all positions opened by a strategy.
	GetByStrategy(ctx context.Context, strategy string) ([]*domain.Position, error)
}
