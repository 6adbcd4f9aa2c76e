package memory

import (
	"context"
	"sort"
	"sync"

	"signal-lab/internal/domain"
	"signal-lab/internal/storage"
)

// positionKey is the natural key of a position.
type positionKey struct {
	pair      domain.Pair
	strategy  string
	buyTimeMs int64
}

func keyOf(p *domain.Position) positionKey {
	return positionKey{p.Pair, p.Strategy, p.BuyTimeMs}
}

// PositionStore is an in-memory implementation of storage.PositionStore.
type PositionStore struct {
	mu     sync.RWMutex
	data   map[positionKey]*domain.Position
	nextID int64
}

// NewPositionStore creates a new in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		data:   make(map[positionKey]*domain.Position),
		nextID: 1,
	}
}

func validPosition(p *domain.Position) bool {
	return p != nil && p.Pair.IsValid() && p.Strategy != ""
}

// Insert adds a new position and assigns its ID.
func (s *PositionStore) Insert(_ context.Context, p *domain.Position) error {
	if !validPosition(p) {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyOf(p)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.insertLocked(key, p)
	return nil
}

// InsertBulk adds multiple positions atomically. Fails entire batch on any duplicate.
func (s *PositionStore) InsertBulk(_ context.Context, positions []*domain.Position) error {
	if len(positions) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[positionKey]struct{}, len(positions))
	for _, p := range positions {
		if !validPosition(p) {
			return storage.ErrInvalidInput
		}
		key := keyOf(p)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range positions {
		s.insertLocked(keyOf(p), p)
	}
	return nil
}

// insertLocked stores a copy and writes the assigned ID back to p. Caller holds mu.
func (s *PositionStore) insertLocked(key positionKey, p *domain.Position) {
	p.ID = s.nextID
	s.nextID++
	posCopy := *p
	s.data[key] = &posCopy
}

// GetAll retrieves all positions ordered by buy time, then ID.
func (s *PositionStore) GetAll(_ context.Context) ([]*domain.Position, error) {
	return s.filter(func(*domain.Position) bool { return true }), nil
}

// GetByStrategy retrieves all positions opened by a strategy.
func (s *PositionStore) GetByStrategy(_ context.Context, strategy string) ([]*domain.Position, error) {
	return s.filter(func(p *domain.Position) bool { return p.Strategy == strategy }), nil
}

func (s *PositionStore) filter(keep func(*domain.Position) bool) []*domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Position
	for _, p := range s.data {
		if keep(p) {
			posCopy := *p
			result = append(result, &posCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].BuyTimeMs != result[j].BuyTimeMs {
			return result[i].BuyTimeMs < result[j].BuyTimeMs
		}
		return result[i].ID < result[j].ID
	})

	return result
}

var _ storage.PositionStore = (*PositionStore)(nil)
