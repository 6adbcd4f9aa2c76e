package memory

import (
	"context"
	"sort"
	"sync"

	"signal-lab/internal/domain"
	"signal-lab/internal/storage"
)

// sampleKey identifies a sample by (pair, timestamp_ms).
type sampleKey struct {
	pair        domain.Pair
	timestampMs int64
}

// PriceSampleStore is an in-memory implementation of storage.PriceSampleStore.
type PriceSampleStore struct {
	mu   sync.RWMutex
	data map[sampleKey]*domain.PriceSample
}

// NewPriceSampleStore creates a new in-memory price sample store.
func NewPriceSampleStore() *PriceSampleStore {
	return &PriceSampleStore{
		data: make(map[sampleKey]*domain.PriceSample),
	}
}

// InsertBulk adds multiple samples. Fails entire batch on duplicate.
func (s *PriceSampleStore) InsertBulk(_ context.Context, samples []*domain.PriceSample) error {
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[sampleKey]struct{}, len(samples))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range samples {
		if p == nil || !p.Pair.IsValid() {
			return storage.ErrInvalidInput
		}
		key := sampleKey{p.Pair, p.TimestampMs}

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range samples {
		sampleCopy := *p
		s.data[sampleKey{p.Pair, p.TimestampMs}] = &sampleCopy
	}

	return nil
}

// GetByPair retrieves all samples for a pair, ordered by timestamp ASC.
func (s *PriceSampleStore) GetByPair(_ context.Context, pair domain.Pair) ([]*domain.PriceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceSample
	for _, p := range s.data {
		if p.Pair == pair {
			sampleCopy := *p
			result = append(result, &sampleCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}

// ListPairs returns every pair that has at least one sample, sorted by label.
func (s *PriceSampleStore) ListPairs(_ context.Context) ([]domain.Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[domain.Pair]struct{})
	var pairs []domain.Pair
	for k := range s.data {
		if _, ok := seen[k.pair]; ok {
			continue
		}
		seen[k.pair] = struct{}{}
		pairs = append(pairs, k.pair)
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Label() < pairs[j].Label()
	})

	return pairs, nil
}

var _ storage.PriceSampleStore = (*PriceSampleStore)(nil)
