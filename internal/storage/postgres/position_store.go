package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"signal-lab/internal/domain"
	"signal-lab/internal/storage"
)

// PositionStore implements storage.PositionStore using PostgreSQL.
type PositionStore struct {
	pool *Pool
}

// NewPositionStore creates a new PositionStore.
func NewPositionStore(pool *Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PositionStore = (*PositionStore)(nil)

const insertPositionQuery = `
	INSERT INTO positions (
		from_symbol, to_symbol, strategy,
		buy_price, sell_price, buy_time_ms, sell_time_ms, closed
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
`

const selectPositionColumns = `
	SELECT id, from_symbol, to_symbol, strategy,
		buy_price, sell_price, buy_time_ms, sell_time_ms, closed
	FROM positions
`

func validPosition(p *domain.Position) bool {
	return p != nil && p.Pair.IsValid() && p.Strategy != ""
}

func positionArgs(p *domain.Position) []any {
	return []any{
		p.Pair.From, p.Pair.To, p.Strategy,
		p.BuyPrice, p.SellPrice, p.BuyTimeMs, p.SellTimeMs, p.Closed,
	}
}

// Insert adds a new position and assigns its ID.
// Returns ErrDuplicateKey if (pair, strategy, buy_time_ms) exists.
func (s *PositionStore) Insert(ctx context.Context, p *domain.Position) error {
	if !validPosition(p) {
		return storage.ErrInvalidInput
	}

	err := s.pool.QueryRow(ctx, insertPositionQuery, positionArgs(p)...).Scan(&p.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

// InsertBulk adds multiple positions atomically. Fails entire batch on any duplicate.
func (s *PositionStore) InsertBulk(ctx context.Context, positions []*domain.Position) error {
	if len(positions) == 0 {
		return nil
	}
	for _, p := range positions {
		if !validPosition(p) {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]int64, len(positions))
	for i, p := range positions {
		if err := tx.QueryRow(ctx, insertPositionQuery, positionArgs(p)...).Scan(&ids[i]); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert position in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	for i, p := range positions {
		p.ID = ids[i]
	}
	return nil
}

// GetAll retrieves all positions ordered by buy time, then ID.
func (s *PositionStore) GetAll(ctx context.Context) ([]*domain.Position, error) {
	rows, err := s.pool.Query(ctx, selectPositionColumns+` ORDER BY buy_time_ms ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// GetByStrategy retrieves all positions opened by a strategy.
func (s *PositionStore) GetByStrategy(ctx context.Context, strategy string) ([]*domain.Position, error) {
	rows, err := s.pool.Query(ctx, selectPositionColumns+` WHERE strategy = $1 ORDER BY buy_time_ms ASC, id ASC`, strategy)
	if err != nil {
		return nil, fmt.Errorf("get positions by strategy: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// scanPositions scans multiple rows.
func scanPositions(rows pgx.Rows) ([]*domain.Position, error) {
	var positions []*domain.Position
	for rows.Next() {
		var p domain.Position
		err := rows.Scan(
			&p.ID, &p.Pair.From, &p.Pair.To, &p.Strategy,
			&p.BuyPrice, &p.SellPrice, &p.BuyTimeMs, &p.SellTimeMs, &p.Closed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}
	return positions, nil
}
