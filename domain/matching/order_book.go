package matching

const maxPrice = ^uint64(0)

// levelUpdateKind tags the structural effect of a book mutation on a
// price level.
type levelUpdateKind uint8

const (
	levelNone levelUpdateKind = iota
	levelAdded
	levelUpdated
	levelDeleted
)

type levelUpdate struct {
	kind  levelUpdateKind
	level *PriceLevel
	top   bool
}

// OrderBook holds all resting liquidity of one symbol: the bid and ask
// ladders, the stop and trailing-stop ladders, and the scalar reference
// prices that drive stop triggering and trailing recomputation.
type OrderBook struct {
	symbol Symbol

	bids *rbTree
	asks *rbTree

	buyStops  *rbTree
	sellStops *rbTree

	trailingBuyStops  *rbTree
	trailingSellStops *rbTree

	// lastPrice is the price of the most recent trade, zero before the
	// first one.
	lastPrice uint64
	hasTraded bool

	// In-command matching references. A buy aggressor trades against
	// asks, so its trades push matchingAskPrice up; a sell aggressor
	// pushes matchingBidPrice down. Both reset once the command's
	// matching completes.
	matchingBidPrice uint64
	matchingAskPrice uint64

	// Trailing references: the last displayed best prices against
	// which the trailing ladders were recomputed. Recomputation is
	// batched per reference change, not per fill.
	trailingBidPrice uint64
	trailingAskPrice uint64

	// Free list of recycled price levels.
	freeLevels []*PriceLevel

	orders int
}

// NewOrderBook returns an empty book for the symbol.
func NewOrderBook(symbol Symbol) *OrderBook {
	return &OrderBook{
		symbol:            symbol,
		bids:              newRBTree(),
		asks:              newRBTree(),
		buyStops:          newRBTree(),
		sellStops:         newRBTree(),
		trailingBuyStops:  newRBTree(),
		trailingSellStops: newRBTree(),
		matchingBidPrice:  maxPrice,
		trailingAskPrice:  maxPrice,
	}
}

// Symbol returns the symbol descriptor this book trades.
func (b *OrderBook) Symbol() Symbol { return b.symbol }

// Size is the number of live orders across all ladders.
func (b *OrderBook) Size() int { return b.orders }

// BestBid returns the highest bid level, or nil.
func (b *OrderBook) BestBid() *PriceLevel { return b.bids.MaxLevel() }

// BestAsk returns the lowest ask level, or nil.
func (b *OrderBook) BestAsk() *PriceLevel { return b.asks.MinLevel() }

// BestBuyStop returns the buy-stop level closest to triggering.
func (b *OrderBook) BestBuyStop() *PriceLevel { return b.buyStops.MinLevel() }

// BestSellStop returns the sell-stop level closest to triggering.
func (b *OrderBook) BestSellStop() *PriceLevel { return b.sellStops.MaxLevel() }

// LastPrice returns the last trade price, zero before the first trade.
func (b *OrderBook) LastPrice() uint64 { return b.lastPrice }

// BidsWalk visits bid levels best-first.
func (b *OrderBook) BidsWalk(fn func(*PriceLevel) bool) { b.bids.ForEachDescending(fn) }

// AsksWalk visits ask levels best-first.
func (b *OrderBook) AsksWalk(fn func(*PriceLevel) bool) { b.asks.ForEachAscending(fn) }

// marketAskRef is the reference ask price for buy-stop triggering: a
// buy stop fires once the market has traded up to its stop price.
func (b *OrderBook) marketAskRef() uint64 {
	ref := b.matchingAskPrice
	if b.hasTraded && b.lastPrice > ref {
		ref = b.lastPrice
	}
	return ref
}

// marketBidRef is the reference bid price for sell-stop triggering.
func (b *OrderBook) marketBidRef() uint64 {
	ref := b.matchingBidPrice
	if b.hasTraded && b.lastPrice < ref {
		ref = b.lastPrice
	}
	return ref
}

// trailingBidRef is the displayed best bid trailed by sell
// trailing-stops; zero while the bid side is empty.
func (b *OrderBook) trailingBidRef() uint64 {
	if lvl := b.BestBid(); lvl != nil {
		return lvl.Price
	}
	return 0
}

// trailingAskRef is the displayed best ask trailed by buy
// trailing-stops; maxPrice while the ask side is empty.
func (b *OrderBook) trailingAskRef() uint64 {
	if lvl := b.BestAsk(); lvl != nil {
		return lvl.Price
	}
	return maxPrice
}

// updateTradePrice records one execution at the given price for the
// aggressing side.
func (b *OrderBook) updateTradePrice(aggressor Side, price uint64) {
	b.lastPrice = price
	b.hasTraded = true
	if aggressor == Buy {
		if price > b.matchingAskPrice {
			b.matchingAskPrice = price
		}
	} else {
		if price < b.matchingBidPrice {
			b.matchingBidPrice = price
		}
	}
}

// resetMatchingPrices clears the in-command matching references once a
// command's matching completes.
func (b *OrderBook) resetMatchingPrices() {
	b.matchingBidPrice = maxPrice
	b.matchingAskPrice = 0
}

// treeForOrder returns the ladder hosting the given resting order.
func (b *OrderBook) treeForOrder(o *Order) *rbTree {
	switch {
	case o.IsLimit():
		if o.IsBuy() {
			return b.bids
		}
		return b.asks
	case o.IsTrailing():
		if o.IsBuy() {
			return b.trailingBuyStops
		}
		return b.trailingSellStops
	default:
		if o.IsBuy() {
			return b.buyStops
		}
		return b.sellStops
	}
}

// ladderKey returns the price the order is keyed under in its ladder.
func ladderKey(o *Order) uint64 {
	if o.IsLimit() {
		return o.Price
	}
	return o.StopPrice
}

// visibleLadder reports whether the order rests on the displayed bid
// or ask ladder, the only ladders that produce level events.
func visibleLadder(o *Order) bool { return o.IsLimit() }

func (b *OrderBook) getLevel(price uint64, side Side) *PriceLevel {
	if n := len(b.freeLevels); n > 0 {
		lvl := b.freeLevels[n-1]
		b.freeLevels = b.freeLevels[:n-1]
		*lvl = PriceLevel{Price: price, Side: side}
		return lvl
	}
	return &PriceLevel{Price: price, Side: side}
}

func (b *OrderBook) putLevel(lvl *PriceLevel) {
	b.freeLevels = append(b.freeLevels, lvl)
}

// addOrder inserts a resting order at the tail of its price level,
// creating the level when absent.
func (b *OrderBook) addOrder(o *Order) levelUpdate {
	tree := b.treeForOrder(o)
	key := ladderKey(o)
	lvl, created := tree.UpsertLevel(key, func() *PriceLevel {
		return b.getLevel(key, o.Side)
	})
	lvl.enqueue(o)
	b.orders++

	kind := levelUpdated
	if created {
		kind = levelAdded
	}
	return levelUpdate{kind: kind, level: lvl, top: b.isTop(o, lvl)}
}

// removeOrder unlinks a resting order and destroys its level when the
// queue empties.
func (b *OrderBook) removeOrder(o *Order) levelUpdate {
	tree := b.treeForOrder(o)
	lvl := o.level
	lvl.unlink(o)
	b.orders--

	if lvl.Empty() {
		tree.DeleteLevel(lvl.Price)
		top := b.isTop(o, lvl)
		b.putLevel(lvl)
		return levelUpdate{kind: levelDeleted, level: lvl, top: top}
	}
	return levelUpdate{kind: levelUpdated, level: lvl, top: b.isTop(o, lvl)}
}

// isTop reports whether the level is, or just was, the best of its
// ladder. For a level already detached from the tree this compares its
// price against the new best.
func (b *OrderBook) isTop(o *Order, lvl *PriceLevel) bool {
	tree := b.treeForOrder(o)
	var best *PriceLevel
	descending := tree == b.bids || tree == b.sellStops || tree == b.trailingSellStops
	if descending {
		best = tree.MaxLevel()
	} else {
		best = tree.MinLevel()
	}
	if best == nil || best == lvl {
		return true
	}
	if descending {
		return lvl.Price > best.Price
	}
	return lvl.Price < best.Price
}

// eachOrder visits every live order in every ladder. Orders must not
// be removed during the walk.
func (b *OrderBook) eachOrder(fn func(*Order)) {
	visit := func(lvl *PriceLevel) bool {
		for o := lvl.Head(); o != nil; o = o.Next() {
			fn(o)
		}
		return true
	}
	b.bids.ForEachDescending(visit)
	b.asks.ForEachAscending(visit)
	b.buyStops.ForEachAscending(visit)
	b.sellStops.ForEachDescending(visit)
	b.trailingBuyStops.ForEachAscending(visit)
	b.trailingSellStops.ForEachDescending(visit)
}
