package matching

import (
	"math/rand"
	"testing"
)

// verifyInvariants checks the structural invariants that must hold
// between commands: every indexed order sits on exactly one level of
// the right ladder, level totals equal the sum of their queue, and
// quantities are conserved.
func verifyInvariants(t *testing.T, e *Engine) {
	t.Helper()

	seen := 0
	for _, book := range e.books {
		book.eachOrder(func(o *Order) {
			seen++
			idx, ok := e.orders[o.ID]
			if !ok {
				t.Fatalf("order %d on book but not in index", o.ID)
			}
			if idx != o {
				t.Fatalf("order %d index points at a different record", o.ID)
			}
			if o.level == nil {
				t.Fatalf("order %d has no owning level", o.ID)
			}
			if o.level.Price != ladderKey(o) {
				t.Fatalf("order %d keyed at %d but level is %d", o.ID, ladderKey(o), o.level.Price)
			}
			if o.ExecutedQuantity+o.LeavesQuantity+o.HiddenQuantity > o.Quantity {
				t.Fatalf("order %d overruns its original quantity", o.ID)
			}
			if o.RemainingQuantity() == 0 {
				t.Fatalf("order %d fully consumed but still live", o.ID)
			}
		})

		checkLevels := func(tree *rbTree) {
			tree.ForEachAscending(func(lvl *PriceLevel) bool {
				if lvl.Empty() {
					t.Fatalf("empty level %d survived", lvl.Price)
				}
				var vis, hid uint64
				n := 0
				for o := lvl.Head(); o != nil; o = o.Next() {
					vis += o.LeavesQuantity
					hid += o.HiddenQuantity
					n++
				}
				if vis != lvl.TotalVisible || hid != lvl.TotalHidden || n != lvl.Orders {
					t.Fatalf("level %d totals drifted: %d/%d/%d vs %d/%d/%d",
						lvl.Price, vis, hid, n, lvl.TotalVisible, lvl.TotalHidden, lvl.Orders)
				}
				return true
			})
		}
		checkLevels(book.bids)
		checkLevels(book.asks)
		checkLevels(book.buyStops)
		checkLevels(book.sellStops)
		checkLevels(book.trailingBuyStops)
		checkLevels(book.trailingSellStops)

		if e.matching {
			bid, ask := book.BestBid(), book.BestAsk()
			if bid != nil && ask != nil && bid.Price >= ask.Price {
				// A cross may only survive behind an all-or-none head.
				if !bid.Head().IsAON() && !ask.Head().IsAON() {
					t.Fatalf("book crossed after command: bid %d ask %d", bid.Price, ask.Price)
				}
			}
		}
	}
	if seen != len(e.orders) {
		t.Fatalf("index holds %d orders, books hold %d", len(e.orders), seen)
	}
}

func TestInvariantsUnderRandomWorkload(t *testing.T) {
	e := NewEngine(NopHandler{})
	e.EnableMatching()
	if err := e.AddSymbol(NewSymbol(1, "RND")); err != nil {
		t.Fatal(err)
	}
	if err := e.AddOrderBook(NewSymbol(1, "")); err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(1))
	nextID := uint64(0)
	var live []uint64

	pickLive := func() (uint64, bool) {
		for len(live) > 0 {
			i := rng.Intn(len(live))
			id := live[i]
			if _, ok := e.orders[id]; ok {
				return id, true
			}
			live = append(live[:i], live[i+1:]...)
		}
		return 0, false
	}

	for step := 0; step < 20000; step++ {
		side := Buy
		if rng.Intn(2) == 0 {
			side = Sell
		}
		price := uint64(90 + rng.Intn(21))
		qty := uint64(1 + rng.Intn(20))

		switch rng.Intn(10) {
		case 0, 1, 2, 3:
			nextID++
			o := NewLimitOrder(1, nextID, side, price, qty)
			if rng.Intn(4) == 0 {
				o.TIF = IOC
			}
			if err := e.AddOrder(o); err != nil {
				t.Fatalf("step %d: add limit: %v", step, err)
			}
			live = append(live, nextID)
		case 4:
			nextID++
			if err := e.AddOrder(NewMarketOrder(1, nextID, side, qty)); err != nil {
				t.Fatalf("step %d: add market: %v", step, err)
			}
		case 5:
			nextID++
			o := NewIcebergLimitOrder(1, nextID, side, price, qty+10, 3)
			if err := e.AddOrder(o); err != nil {
				t.Fatalf("step %d: add iceberg: %v", step, err)
			}
			live = append(live, nextID)
		case 6:
			nextID++
			stop := uint64(85 + rng.Intn(31))
			if err := e.AddOrder(NewStopOrder(1, nextID, side, stop, qty)); err != nil {
				t.Fatalf("step %d: add stop: %v", step, err)
			}
			live = append(live, nextID)
		case 7:
			if id, ok := pickLive(); ok {
				if err := e.ReduceOrder(id, uint64(1+rng.Intn(5))); err != nil {
					t.Fatalf("step %d: reduce %d: %v", step, id, err)
				}
			}
		case 8:
			if id, ok := pickLive(); ok {
				if o := e.Order(id); o != nil && o.IsLimit() {
					if err := e.ModifyOrder(id, price, qty); err != nil {
						t.Fatalf("step %d: modify %d: %v", step, id, err)
					}
				}
			}
		case 9:
			if id, ok := pickLive(); ok {
				if err := e.DeleteOrder(id); err != nil {
					t.Fatalf("step %d: delete %d: %v", step, id, err)
				}
			}
		}

		if rng.Intn(500) == 0 {
			e.DisableMatching()
		}
		if rng.Intn(100) == 0 {
			e.EnableMatching()
		}

		if step%37 == 0 {
			verifyInvariants(t, e)
		}
	}
	e.EnableMatching()
	verifyInvariants(t, e)
}

func TestTrailingDistanceRounding(t *testing.T) {
	o := &Order{Side: Sell, TrailingDistance: -150}
	// 150 basis points of 999 is 14.985, rounded toward zero.
	if d := trailingDistance(o, 999); d != 14 {
		t.Errorf("got %d want 14", d)
	}
	o.TrailingDistance = 25
	if d := trailingDistance(o, 999); d != 25 {
		t.Errorf("got %d want 25", d)
	}
}
