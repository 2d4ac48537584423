package matching

import (
	"math/rand"
	"testing"
)

func upsert(t *testing.T, tree *rbTree, price uint64) *PriceLevel {
	t.Helper()
	lvl, _ := tree.UpsertLevel(price, func() *PriceLevel {
		return &PriceLevel{Price: price}
	})
	return lvl
}

func TestRBTreeInsertFindDelete(t *testing.T) {
	tree := newRBTree()
	pl1 := upsert(t, tree, 100)
	if pl1 == nil {
		t.Fatal("UpsertLevel failed")
	}
	if pl2 := tree.FindLevel(100); pl2 != pl1 {
		t.Error("FindLevel did not return same PriceLevel")
	}

	upsert(t, tree, 200)
	if tree.MinLevel().Price != 100 {
		t.Error("expected min=100")
	}
	if tree.MaxLevel().Price != 200 {
		t.Error("expected max=200")
	}

	if !tree.DeleteLevel(100) {
		t.Error("DeleteLevel failed")
	}
	if tree.FindLevel(100) != nil {
		t.Error("expected level 100 to be gone")
	}
}

func TestRBTreeDeleteNonExistentLevel(t *testing.T) {
	tree := newRBTree()
	if tree.DeleteLevel(123) {
		t.Error("expected false when deleting non-existent level")
	}
}

func TestRBTreeEmptyMinMax(t *testing.T) {
	tree := newRBTree()
	if tree.MinLevel() != nil || tree.MaxLevel() != nil {
		t.Error("expected nil for min/max on empty tree")
	}
}

func TestRBTreeUpsertDuplicate(t *testing.T) {
	tree := newRBTree()
	pl1 := upsert(t, tree, 150)
	pl2, created := tree.UpsertLevel(150, func() *PriceLevel { return &PriceLevel{Price: 150} })
	if created {
		t.Error("duplicate upsert reported creation")
	}
	if pl1 != pl2 {
		t.Error("Upsert should return the same level for a duplicate price")
	}
}

func TestRBTreeOrderedWalk(t *testing.T) {
	tree := newRBTree()
	rng := rand.New(rand.NewSource(42))
	inserted := map[uint64]bool{}
	for i := 0; i < 1000; i++ {
		p := uint64(rng.Intn(500) + 1)
		upsert(t, tree, p)
		inserted[p] = true
	}
	if tree.Size() != len(inserted) {
		t.Fatalf("size mismatch: got %d want %d", tree.Size(), len(inserted))
	}

	var last uint64
	count := 0
	tree.ForEachAscending(func(lvl *PriceLevel) bool {
		if count > 0 && lvl.Price <= last {
			t.Fatalf("ascending walk out of order: %d after %d", lvl.Price, last)
		}
		last = lvl.Price
		count++
		return true
	})
	if count != len(inserted) {
		t.Fatalf("ascending walk visited %d of %d levels", count, len(inserted))
	}

	last = ^uint64(0)
	count = 0
	tree.ForEachDescending(func(lvl *PriceLevel) bool {
		if lvl.Price >= last {
			t.Fatalf("descending walk out of order: %d before %d", lvl.Price, last)
		}
		last = lvl.Price
		count++
		return true
	})
	if count != len(inserted) {
		t.Fatalf("descending walk visited %d of %d levels", count, len(inserted))
	}
}

func TestRBTreeRandomInsertDelete(t *testing.T) {
	tree := newRBTree()
	rng := rand.New(rand.NewSource(7))
	live := map[uint64]bool{}

	for i := 0; i < 5000; i++ {
		p := uint64(rng.Intn(200) + 1)
		if live[p] {
			if !tree.DeleteLevel(p) {
				t.Fatalf("delete of live price %d failed", p)
			}
			delete(live, p)
		} else {
			upsert(t, tree, p)
			live[p] = true
		}
		if tree.Size() != len(live) {
			t.Fatalf("size drift at step %d: got %d want %d", i, tree.Size(), len(live))
		}
	}

	for p := range live {
		if tree.FindLevel(p) == nil {
			t.Fatalf("live price %d not found after churn", p)
		}
	}
}
