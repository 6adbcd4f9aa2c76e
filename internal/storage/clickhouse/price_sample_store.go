package clickhouse

import (
	"context"
	"fmt"

	"signal-lab/internal/domain"
	"signal-lab/internal/storage"
)

// PriceSampleStore implements storage.PriceSampleStore using ClickHouse.
type PriceSampleStore struct {
	conn *Conn
}

// NewPriceSampleStore creates a new PriceSampleStore.
func NewPriceSampleStore(conn *Conn) *PriceSampleStore {
	return &PriceSampleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceSampleStore = (*PriceSampleStore)(nil)

// InsertBulk adds multiple samples. Fails entire batch on duplicate (pair, timestamp_ms).
// MergeTree does not enforce uniqueness, so duplicates are checked before insert.
func (s *PriceSampleStore) InsertBulk(ctx context.Context, samples []*domain.PriceSample) error {
	if len(samples) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		pair        domain.Pair
		timestampMs int64
	}
	seen := make(map[key]struct{})
	for _, p := range samples {
		if p == nil || !p.Pair.IsValid() {
			return storage.ErrInvalidInput
		}
		k := key{p.Pair, p.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows, one range query per pair
	byPair := make(map[domain.Pair][]int64)
	for _, p := range samples {
		byPair[p.Pair] = append(byPair[p.Pair], p.TimestampMs)
	}
	for pair, timestamps := range byPair {
		lo, hi := timestamps[0], timestamps[0]
		for _, ts := range timestamps[1:] {
			lo = min(lo, ts)
			hi = max(hi, ts)
		}
		stored, err := s.timestampsBetween(ctx, pair, lo, hi)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, ts := range timestamps {
			if _, exists := stored[ts]; exists {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_samples (from_symbol, to_symbol, timestamp_ms, price)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range samples {
		if err := batch.Append(p.Pair.From, p.Pair.To, p.TimestampMs, p.Price); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByPair retrieves all samples for a pair, ordered by timestamp ASC.
func (s *PriceSampleStore) GetByPair(ctx context.Context, pair domain.Pair) ([]*domain.PriceSample, error) {
	query := `
		SELECT from_symbol, to_symbol, timestamp_ms, price
		FROM price_samples
		WHERE from_symbol = ? AND to_symbol = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, pair.From, pair.To)
	if err != nil {
		return nil, fmt.Errorf("query by pair: %w", err)
	}
	defer rows.Close()

	return scanPriceSamples(rows)
}

// ListPairs returns every pair that has at least one sample, sorted by label.
func (s *PriceSampleStore) ListPairs(ctx context.Context) ([]domain.Pair, error) {
	query := `
		SELECT DISTINCT from_symbol, to_symbol
		FROM price_samples
		ORDER BY concat(from_symbol, '-', to_symbol) ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
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

// timestampsBetween returns the stored timestamps of pair within [lo, hi].
func (s *PriceSampleStore) timestampsBetween(ctx context.Context, pair domain.Pair, lo, hi int64) (map[int64]struct{}, error) {
	query := `
		SELECT timestamp_ms FROM price_samples
		WHERE from_symbol = ? AND to_symbol = ? AND timestamp_ms BETWEEN ? AND ?
	`

	rows, err := s.conn.Query(ctx, query, pair.From, pair.To, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stored := make(map[int64]struct{})
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		stored[ts] = struct{}{}
	}
	return stored, rows.Err()
}

// chRows is the subset of driver.Rows used by the scanners.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanPriceSamples scans multiple rows.
func scanPriceSamples(rows chRows) ([]*domain.PriceSample, error) {
	var samples []*domain.PriceSample

	for rows.Next() {
		var p domain.PriceSample
		if err := rows.Scan(&p.Pair.From, &p.Pair.To, &p.TimestampMs, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price sample: %w", err)
		}
		samples = append(samples, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return samples, nil
}
