package matching

import "testing"

// ---------------- Basic Benchmarks ---------------- //

func benchEngine(b *testing.B) *Engine {
	b.Helper()
	e := NewEngine(NopHandler{})
	e.EnableMatching()
	if err := e.AddSymbol(NewSymbol(1, "BENCH")); err != nil {
		b.Fatal(err)
	}
	if err := e.AddOrderBook(NewSymbol(1, "")); err != nil {
		b.Fatal(err)
	}
	return e
}

func BenchmarkAddRestingLimitOrder(b *testing.B) {
	e := benchEngine(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Spread across levels so the tree stays realistic.
		price := uint64(1000 + i%512)
		_ = e.AddOrder(NewLimitOrder(1, uint64(i+1), Buy, price, 10))
	}
}

func BenchmarkAddAndCancel(b *testing.B) {
	e := benchEngine(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := uint64(i + 1)
		_ = e.AddOrder(NewLimitOrder(1, id, Sell, uint64(1000+i%256), 10))
		_ = e.DeleteOrder(id)
	}
}

func BenchmarkMatchedPair(b *testing.B) {
	e := benchEngine(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := uint64(2*i + 1)
		_ = e.AddOrder(NewLimitOrder(1, id, Sell, 1000, 10))
		_ = e.AddOrder(NewLimitOrder(1, id+1, Buy, 1000, 10))
	}
}

func BenchmarkMarketSweep(b *testing.B) {
	e := benchEngine(b)
	for i := 0; i < 1024; i++ {
		_ = e.AddOrder(NewLimitOrder(1, uint64(i+1), Sell, uint64(1000+i), 1000000))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.AddOrder(NewMarketOrder(1, uint64(1_000_000+i), Buy, 5))
	}
}
