package memory

import (
	"context"
	"sync"

	"signal-lab/internal/domain"
	"signal-lab/internal/storage"
)

// PairStore is an in-memory implementation of storage.PairStore.
type PairStore struct {
	mu    sync.RWMutex
	pairs []domain.Pair
	index map[domain.Pair]struct{}
}

// NewPairStore creates a new in-memory pair store.
func NewPairStore() *PairStore {
	return &PairStore{
		index: make(map[domain.Pair]struct{}),
	}
}

// Insert registers a pair. Returns ErrDuplicateKey if it is already tracked.
func (s *PairStore) Insert(_ context.Context, p domain.Pair) error {
	if !p.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[p]; exists {
		return storage.ErrDuplicateKey
	}
	s.index[p] = struct{}{}
	s.pairs = append(s.pairs, p)
	return nil
}

// GetAll retrieves all tracked pairs in registration order.
func (s *PairStore) GetAll(_ context.Context) ([]domain.Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Pair, len(s.pairs))
	copy(result, s.pairs)
	return result, nil
}

var _ storage.PairStore = (*PairStore)(nil)
