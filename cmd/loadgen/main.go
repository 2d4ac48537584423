// Command loadgen pushes a randomized order stream through the engine
// and reports throughput. It drives the engine in-process; use it to
// size hardware and catch hot-path regressions.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime/pprof"
	"time"

	"github.com/google/uuid"

	"tycho/domain/matching"
)

func main() {
	totalOrders := flag.Int("orders", 500000, "number of orders to submit")
	priceLevels := flag.Int64("price-levels", 200, "unique price levels around the mid")
	basePrice := flag.Int64("base-price", 10000, "mid price used for randomization")
	cancelEvery := flag.Int("cancel-every", 0, "cancel a random resting order every N submissions")
	marketRatio := flag.Int("market-ratio", 5, "1 in N orders will be market instead of limit")
	icebergRatio := flag.Int("iceberg-ratio", 50, "1 in N limit orders will be an iceberg")
	stopRatio := flag.Int("stop-ratio", 100, "1 in N orders will be a stop")
	seed := flag.Int64("seed", time.Now().UnixNano(), "seed for deterministic random streams")
	cpuProfile := flag.String("cpuprofile", "", "write cpu profile to file")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	runID := uuid.NewString()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer pprof.StopCPUProfile()
	}

	// Count executions without retaining anything.
	var trades, tradedQty uint64
	handler := &countingHandler{trades: &trades, qty: &tradedQty}

	engine := matching.NewEngine(handler)
	engine.EnableMatching()
	if err := engine.AddSymbol(matching.NewSymbol(1, "SIM")); err != nil {
		panic(err)
	}
	if err := engine.AddOrderBook(matching.NewSymbol(1, "")); err != nil {
		panic(err)
	}

	fmt.Printf("run %s: %d orders, seed %d\n", runID, *totalOrders, *seed)

	start := time.Now()
	nextID := uint64(0)
	var resting []uint64

	for i := 0; i < *totalOrders; i++ {
		nextID++
		side := matching.Buy
		if rng.Intn(2) == 0 {
			side = matching.Sell
		}
		price := uint64(*basePrice + rng.Int63n(*priceLevels) - *priceLevels/2)
		qty := uint64(1 + rng.Intn(100))

		var err error
		switch {
		case *stopRatio > 0 && rng.Intn(*stopRatio) == 0:
			stop := uint64(*basePrice + rng.Int63n(*priceLevels) - *priceLevels/2)
			err = engine.AddOrder(matching.NewStopOrder(1, nextID, side, stop, qty))
		case *marketRatio > 0 && rng.Intn(*marketRatio) == 0:
			err = engine.AddOrder(matching.NewMarketOrder(1, nextID, side, qty))
		case *icebergRatio > 0 && rng.Intn(*icebergRatio) == 0:
			err = engine.AddOrder(matching.NewIcebergLimitOrder(1, nextID, side, price, qty+20, 5))
			resting = append(resting, nextID)
		default:
			err = engine.AddOrder(matching.NewLimitOrder(1, nextID, side, price, qty))
			resting = append(resting, nextID)
		}
		if err != nil {
			panic(err)
		}

		if *cancelEvery > 0 && i%*cancelEvery == 0 && len(resting) > 0 {
			j := rng.Intn(len(resting))
			_ = engine.DeleteOrder(resting[j])
			resting = append(resting[:j], resting[j+1:]...)
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("submitted %d orders in %s (%.0f orders/sec)\n",
		*totalOrders, elapsed, float64(*totalOrders)/elapsed.Seconds())
	fmt.Printf("trades: %d, traded quantity: %d, resting orders: %d\n",
		trades, tradedQty, engine.Orders())
}

type countingHandler struct {
	matching.NopHandler
	trades *uint64
	qty    *uint64
}

func (h *countingHandler) OnExecuteOrder(_ *matching.Order, _ uint64, qty uint64) {
	*h.trades++
	*h.qty += qty
}
