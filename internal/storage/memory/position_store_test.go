package memory

import (
	"context"
	"errors"
	"testing"

	"signal-lab/internal/domain"
	"signal-lab/internal/storage"
)

func TestPositionStore_InsertAssignsID(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	p := &domain.Position{Pair: btcUSD, Strategy: "rising 3", BuyPrice: 100, SellPrice: 110, BuyTimeMs: 1000}
	if err := store.Insert(ctx, p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if p.ID != 1 {
		t.Errorf("Expected ID 1, got %d", p.ID)
	}

	err := store.Insert(ctx, &domain.Position{Pair: btcUSD, Strategy: "rising 3", BuyTimeMs: 1000})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPositionStore_GetByStrategy(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	positions := []*domain.Position{
		{Pair: btcUSD, Strategy: "dip 5", BuyTimeMs: 3000},
		{Pair: ethBTC, Strategy: "rising 3", BuyTimeMs: 2000},
		{Pair: ethBTC, Strategy: "dip 5", BuyTimeMs: 1000},
	}
	if err := store.InsertBulk(ctx, positions); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	dips, err := store.GetByStrategy(ctx, "dip 5")
	if err != nil {
		t.Fatalf("GetByStrategy failed: %v", err)
	}
	if len(dips) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(dips))
	}
	if dips[0].BuyTimeMs != 1000 || dips[1].BuyTimeMs != 3000 {
		t.Error("Positions not ordered by buy time")
	}

	all, _ := store.GetAll(ctx)
	if len(all) != 3 {
		t.Errorf("Expected 3 positions, got %d", len(all))
	}
}

func TestPositionStore_InsertBulkAtomic(t *testing.T) {
	store := NewPositionStore()
	ctx := context.Background()

	positions := []*domain.Position{
		{Pair: btcUSD, Strategy: "dip 5", BuyTimeMs: 1000},
		{Pair: btcUSD, Strategy: "dip 5", BuyTimeMs: 1000},
	}
	if err := store.InsertBulk(ctx, positions); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	all, _ := store.GetAll(ctx)
	if len(all) != 0 {
		t.Errorf("Expected no positions after failed batch, got %d", len(all))
	}
}
