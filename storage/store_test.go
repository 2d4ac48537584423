package storage

import (
	"context"
	"path/filepath"
	"testing"

	"tycho/service"
)

func TestEventStoreRoundTrip(t *testing.T) {
	store, err := NewEventStore(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	batch := []service.Event{
		{Seq: 1, Type: service.EvAddOrder, SymbolID: 1, OrderID: 10, Price: 100, Quantity: 5},
		{Seq: 2, Type: service.EvExecuteOrder, SymbolID: 1, OrderID: 10, Price: 100, Quantity: 5},
		{Seq: 3, Type: service.EvExecuteOrder, SymbolID: 1, OrderID: 11, Price: 100, Quantity: 5},
	}
	if err := store.SaveBatch(ctx, batch); err != nil {
		t.Fatalf("save: %v", err)
	}

	execs, err := store.Executions(ctx, 1, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(execs) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(execs))
	}
	if execs[0].Seq != 3 {
		t.Fatalf("expected newest first, got seq %d", execs[0].Seq)
	}

	last, err := store.LastSeq(ctx)
	if err != nil {
		t.Fatalf("last seq: %v", err)
	}
	if last != 3 {
		t.Fatalf("expected last seq 3, got %d", last)
	}
}

func TestEventStoreEmpty(t *testing.T) {
	store, err := NewEventStore(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	last, err := store.LastSeq(context.Background())
	if err != nil {
		t.Fatalf("last seq: %v", err)
	}
	if last != 0 {
		t.Fatalf("expected 0 on empty store, got %d", last)
	}
}
