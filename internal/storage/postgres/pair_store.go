package postgres

import (
	"context"
	"fmt"

	"signal-lab/internal/domain"
	"signal-lab/internal/storage"
)

// PairStore implements storage.PairStore using PostgreSQL.
type PairStore struct {
	pool *Pool
}

// NewPairStore creates a new PairStore.
func NewPairStore(pool *Pool) *PairStore {
	return &PairStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PairStore = (*PairStore)(nil)

// Insert registers a pair. Returns ErrDuplicateKey if it is already tracked.
func (s *PairStore) Insert(ctx context.Context, p domain.Pair) error {
	if !p.IsValid() {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `INSERT INTO pairs (from_symbol, to_symbol) VALUES ($1, $2)`, p.From, p.To)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert pair: %w", err)
	}
	return nil
}

// GetAll retrieves all tracked pairs in registration order.
func (s *PairStore) GetAll(ctx context.Context) ([]domain.Pair, error) {
	rows, err := s.pool.Query(ctx, `SELECT from_symbol, to_symbol FROM pairs ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("get pairs: %w", err)
	}
	defer rows.Close()

	var pairs []domain.Pair
	for rows.Next() {
		var p domain.Pair
		if err := rows.Scan(&p.From, &p.To); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pairs: %w", err)
	}
	return pairs, nil
}
