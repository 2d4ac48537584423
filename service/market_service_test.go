package service

import (
	"reflect"
	"testing"

	"tycho/domain/matching"
	"tycho/infra/journal"
)

func newService(t *testing.T, dir string) *MarketService {
	t.Helper()
	j, err := journal.Open(journal.Config{Dir: dir})
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return New(Config{Journal: j})
}

func seedMarket(t *testing.T, s *MarketService) {
	t.Helper()
	s.EnableMatching()
	if err := s.AddSymbol(1, "TST"); err != nil {
		t.Fatalf("add symbol: %v", err)
	}
	if err := s.AddOrderBook(1); err != nil {
		t.Fatalf("add book: %v", err)
	}
}

func TestServiceCommandsAndEvents(t *testing.T) {
	s := newService(t, t.TempDir())

	var batches [][]Event
	s.Notify(func(evs []Event) {
		batch := make([]Event, len(evs))
		copy(batch, evs)
		batches = append(batches, batch)
	})

	seedMarket(t, s)
	if err := s.AddOrder(matching.NewLimitOrder(1, 1, matching.Sell, 100, 10)); err != nil {
		t.Fatalf("add order: %v", err)
	}
	if err := s.AddOrder(matching.NewLimitOrder(1, 2, matching.Buy, 100, 4)); err != nil {
		t.Fatalf("add order: %v", err)
	}

	// Event sequence is strictly monotonic across batches.
	var last uint64
	execs := 0
	for _, batch := range batches {
		for _, ev := range batch {
			if ev.Seq <= last {
				t.Fatalf("event seq not monotonic: %d after %d", ev.Seq, last)
			}
			last = ev.Seq
			if ev.Type == EvExecuteOrder {
				execs++
			}
		}
	}
	if execs != 2 {
		t.Fatalf("expected one execution pair, saw %d execute events", execs)
	}

	snap := s.Snapshot(1)
	if len(snap) != 1 || snap[0].ID != 1 || snap[0].Leaves != 6 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	bid, _, ask, askQty, ok := s.TopOfBook(1)
	if !ok || bid != 0 || ask != 100 || askQty != 6 {
		t.Fatalf("unexpected top of book: bid=%d ask=%d qty=%d", bid, ask, askQty)
	}
}

func TestServiceJournalReplayRebuildsState(t *testing.T) {
	dir := t.TempDir()

	s := newService(t, dir)
	seedMarket(t, s)
	_ = s.AddOrder(matching.NewLimitOrder(1, 1, matching.Sell, 101, 10))
	_ = s.AddOrder(matching.NewLimitOrder(1, 2, matching.Sell, 100, 5))
	_ = s.AddOrder(matching.NewLimitOrder(1, 3, matching.Buy, 100, 3))
	_ = s.ReduceOrder(1, 4)
	_ = s.ModifyOrder(1, 99, 6)
	// A failing command journals too and must replay as the same no-op.
	if err := s.AddOrder(matching.NewLimitOrder(1, 2, matching.Buy, 98, 1)); err == nil {
		t.Fatal("expected duplicate order to fail")
	}
	want := s.Snapshot(1)
	wantSeq := s.LastSeq()

	replayed := New(Config{})
	if err := replayed.ReplayJournal(dir); err != nil {
		t.Fatalf("replay: %v", err)
	}

	got := replayed.Snapshot(1)
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("replayed state differs:\nwant %+v\ngot  %+v", want, got)
	}
	if replayed.LastSeq() != wantSeq {
		t.Fatalf("sequencer not resumed: want %d got %d", wantSeq, replayed.LastSeq())
	}
}

func TestServiceReplayPreservesMatchingToggle(t *testing.T) {
	dir := t.TempDir()

	s := newService(t, dir)
	seedMarket(t, s)
	s.DisableMatching()
	_ = s.AddOrder(matching.NewLimitOrder(1, 1, matching.Sell, 100, 5))
	_ = s.AddOrder(matching.NewLimitOrder(1, 2, matching.Buy, 102, 5))

	replayed := New(Config{})
	if err := replayed.ReplayJournal(dir); err != nil {
		t.Fatalf("replay: %v", err)
	}

	// The crossed book survives replay because matching was off.
	snap := replayed.Snapshot(1)
	if len(snap) != 2 {
		t.Fatalf("expected both crossed orders, got %+v", snap)
	}
}
