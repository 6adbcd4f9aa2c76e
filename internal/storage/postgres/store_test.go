package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-lab/internal/domain"
	"signal-lab/internal/storage"
)

var (
	btcUSD = domain.Pair{From: "BTC", To: "USD"}
	ethBTC = domain.Pair{From: "ETH", To: "BTC"}
)

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, isDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isDuplicateKeyError(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, isDuplicateKeyError(errors.New("other")))
	assert.False(t, isDuplicateKeyError(nil))
}

func TestPairStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPairStore(pool)

	require.NoError(t, store.Insert(ctx, ethBTC))
	require.NoError(t, store.Insert(ctx, btcUSD))

	err := store.Insert(ctx, ethBTC)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	err = store.Insert(ctx, domain.Pair{From: "BTC"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	pairs, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Pair{ethBTC, btcUSD}, pairs)
}

func TestPositionStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPositionStore(pool)

	first := &domain.Position{Pair: btcUSD, Strategy: "rising 3", BuyPrice: 100, SellPrice: 110, BuyTimeMs: 2000, SellTimeMs: 5000, Closed: true}
	require.NoError(t, store.Insert(ctx, first))
	assert.NotZero(t, first.ID)

	dup := *first
	dup.ID = 0
	assert.ErrorIs(t, store.Insert(ctx, &dup), storage.ErrDuplicateKey)

	batch := []*domain.Position{
		{Pair: ethBTC, Strategy: "dip 5", BuyPrice: 0.05, SellPrice: 0.06, BuyTimeMs: 1000, SellTimeMs: 3000},
		{Pair: btcUSD, Strategy: "dip 5", BuyPrice: 90, SellPrice: 80, BuyTimeMs: 3000, SellTimeMs: 4000},
	}
	require.NoError(t, store.InsertBulk(ctx, batch))
	assert.NotZero(t, batch[0].ID)
	assert.NotEqual(t, batch[0].ID, batch[1].ID)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1000), all[0].BuyTimeMs)
	assert.Equal(t, first, all[1])

	dips, err := store.GetByStrategy(ctx, "dip 5")
	require.NoError(t, err)
	assert.Len(t, dips, 2)
}

func TestPositionStore_BulkIsAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPositionStore(pool)

	p := &domain.Position{Pair: btcUSD, Strategy: "a", BuyPrice: 1, SellPrice: 1, BuyTimeMs: 1}
	err := store.InsertBulk(ctx, []*domain.Position{
		{Pair: ethBTC, Strategy: "a", BuyPrice: 1, SellPrice: 1, BuyTimeMs: 1},
		p,
		{Pair: btcUSD, Strategy: "a", BuyPrice: 2, SellPrice: 2, BuyTimeMs: 1},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	assert.Zero(t, p.ID)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
