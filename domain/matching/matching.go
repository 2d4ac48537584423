package matching

// marketable reports whether a level price is acceptable to the given
// side at its limit price.
func marketable(side Side, limit, levelPrice uint64) bool {
	if side == Buy {
		return levelPrice <= limit
	}
	return levelPrice >= limit
}

// limitFor is the effective price constraint of an aggressor: the
// limit price for limit orders, unconstrained for market orders.
func limitFor(o *Order) uint64 {
	if o.IsLimit() {
		return o.Price
	}
	if o.IsBuy() {
		return maxPrice
	}
	return 0
}

func minQty(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// bestOpposite returns the best displayed level on the side an
// aggressor trades against.
func (e *Engine) bestOpposite(book *OrderBook, side Side) *PriceLevel {
	if side == Buy {
		return book.BestAsk()
	}
	return book.BestBid()
}

// ---- add-order state machine ----

func (e *Engine) addMarketOrder(book *OrderBook, o *Order) {
	e.handler.OnAddOrder(o)
	if e.matching {
		if o.IsFOK() || o.IsAON() {
			if chain, ok := e.matchingChain(book, o, o.RemainingQuantity()); ok {
				e.executeChain(book, o, chain)
			}
		} else {
			e.matchMarket(book, o)
		}
	}
	// Market orders never rest; any remainder is cancelled.
	e.handler.OnDeleteOrder(o)
	e.discard(o)
	e.afterCommand(book)
}

func (e *Engine) addLimitOrder(book *OrderBook, o *Order) {
	if e.matching && o.IsFOK() {
		// Feasibility is checked before the order exists anywhere: an
		// infeasible fill-or-kill leaves no trace and emits nothing.
		chain, ok := e.matchingChain(book, o, o.Quantity)
		if !ok {
			e.alloc.PutOrder(o)
			return
		}
		e.handler.OnAddOrder(o)
		e.executeChain(book, o, chain)
		e.handler.OnDeleteOrder(o)
		e.discard(o)
		e.afterCommand(book)
		return
	}

	e.handler.OnAddOrder(o)
	e.placeLimit(book, o)
	e.afterCommand(book)
}

// placeLimit matches a limit order against the opposite side and rests
// or cancels the remainder according to its time in force. Shared by
// AddOrder, ModifyOrder and ReplaceOrder (the latter two emit their
// own lifecycle events first).
func (e *Engine) placeLimit(book *OrderBook, o *Order) {
	if e.matching {
		switch {
		case o.IsAON() || o.IsFOK():
			// Indivisible: execute the whole remainder in one batch or
			// not at all.
			if chain, ok := e.matchingChain(book, o, o.RemainingQuantity()); ok {
				e.executeChain(book, o, chain)
			}
		default:
			e.matchLimit(book, o)
		}
	}

	if !o.IsExecuted() && o.TIF != IOC && o.TIF != FOK {
		lu := book.addOrder(o)
		e.orders[o.ID] = o
		e.emitLevel(book, o, lu)
		return
	}
	// Fully executed, or an immediate-or-cancel remainder.
	e.handler.OnDeleteOrder(o)
	e.discard(o)
}

// matchLimit drains the opposite side for an aggressing limit order in
// price-time order, at resting prices, while levels stay marketable.
func (e *Engine) matchLimit(book *OrderBook, o *Order) {
	for !o.IsExecuted() {
		lvl := e.bestOpposite(book, o.Side)
		if lvl == nil || !marketable(o.Side, o.Price, lvl.Price) {
			return
		}
		if !e.matchHead(book, o, lvl) {
			return
		}
	}
}

// matchMarket drains the opposite side for a market order until filled,
// exhausted, or the price has slipped beyond the cap measured from the
// first-match price.
func (e *Engine) matchMarket(book *OrderBook, o *Order) {
	var first uint64
	hasFirst := false
	for !o.IsExecuted() {
		lvl := e.bestOpposite(book, o.Side)
		if lvl == nil {
			return
		}
		price := lvl.Price
		if !hasFirst {
			first, hasFirst = price, true
		} else if o.Slippage != NoSlippage {
			if o.IsBuy() && price-first > o.Slippage {
				return
			}
			if !o.IsBuy() && first-price > o.Slippage {
				return
			}
		}
		if !e.matchHead(book, o, lvl) {
			return
		}
	}
}

// matchHead executes the aggressor against the head of the given
// level. Returns false when the head is an all-or-none block the
// aggressor cannot swallow whole.
func (e *Engine) matchHead(book *OrderBook, o *Order, lvl *PriceLevel) bool {
	rest := lvl.Head()
	var qty uint64
	if rest.IsAON() {
		qty = rest.RemainingQuantity()
		if qty > o.RemainingQuantity() {
			return false
		}
	} else {
		qty = minQty(o.RemainingQuantity(), rest.LeavesQuantity)
	}
	e.executeSlices(book, o, rest, lvl.Price, qty)
	return true
}

// ---- all-or-none matching chains ----

type chainLink struct {
	order *Order
	qty   uint64
}

// matchingChain walks the side opposite to the aggressor in priority
// order and assembles the exact set of fills that satisfies volume.
// All-or-none counterparties join as whole blocks; a block that would
// have to be split fails the chain, because price-time priority forbids
// bypassing it.
func (e *Engine) matchingChain(book *OrderBook, aggr *Order, volume uint64) ([]chainLink, bool) {
	limit := limitFor(aggr)
	var chain []chainLink
	available := uint64(0)
	done := false

	walk := func(lvl *PriceLevel) bool {
		if !marketable(aggr.Side, limit, lvl.Price) {
			return false
		}
		for o := lvl.Head(); o != nil; o = o.Next() {
			need := volume - available
			take := o.RemainingQuantity()
			if o.IsAON() {
				if take > need {
					return false
				}
			} else if take > need {
				take = need
			}
			chain = append(chain, chainLink{order: o, qty: take})
			available += take
			if available == volume {
				done = true
				return false
			}
		}
		return true
	}

	if aggr.Side == Buy {
		book.asks.ForEachAscending(walk)
	} else {
		book.bids.ForEachDescending(walk)
	}
	if !done {
		return nil, false
	}
	return chain, true
}

// executeChain runs a precomputed matching chain. Iceberg
// counterparties execute slice by slice with replenishment between
// fills.
func (e *Engine) executeChain(book *OrderBook, aggr *Order, chain []chainLink) {
	for _, link := range chain {
		remaining := link.qty
		for remaining > 0 {
			slice := minQty(remaining, link.order.LeavesQuantity)
			price := restingPrice(aggr, link.order)
			e.executeSlices(book, aggr, link.order, price, slice)
			remaining -= slice
		}
	}
}

// restingPrice picks the execution price between two orders: the price
// of the earlier arrival, which was the resting side.
func restingPrice(a, b *Order) uint64 {
	if a.level != nil && (b.level == nil || a.seq < b.seq) {
		return ladderKey(a)
	}
	return ladderKey(b)
}

// ---- trade execution ----

// executeSlices performs one fill pair between an aggressor and a
// resting order. Both legs' execution events are emitted together,
// aggressor first; the book mutations and their level events follow.
func (e *Engine) executeSlices(book *OrderBook, aggr, rest *Order, price, qty uint64) {
	e.handler.OnExecuteOrder(aggr, price, qty)
	e.handler.OnExecuteOrder(rest, price, qty)

	e.applyFill(book, rest, qty)
	e.applyFill(book, aggr, qty)

	book.updateTradePrice(aggr.Side, price)
}

// applyFill consumes quantity from an order. For a resting order this
// keeps its level totals coherent, replenishes depleted icebergs to
// the tail of their level, and removes the order once exhausted.
func (e *Engine) applyFill(book *OrderBook, o *Order, qty uint64) {
	if o.level == nil {
		// Aggressor in flight: plain quantity bookkeeping.
		o.ExecutedQuantity += qty
		take := minQty(qty, o.LeavesQuantity)
		o.LeavesQuantity -= take
		o.HiddenQuantity -= qty - take
		if o.LeavesQuantity == 0 && o.HiddenQuantity > 0 {
			o.replenish()
		}
		return
	}

	lvl := o.level
	visBefore, hidBefore := o.LeavesQuantity, o.HiddenQuantity
	o.ExecutedQuantity += qty
	o.LeavesQuantity -= qty

	switch {
	case o.LeavesQuantity == 0 && o.HiddenQuantity > 0:
		// Iceberg slice depleted: reveal the next slice at the tail of
		// the level, giving up in-level priority.
		o.replenish()
		lvl.moveToTail(o)
		lvl.retotal(visBefore, hidBefore, o.LeavesQuantity, o.HiddenQuantity)
		e.emitLevel(book, o, levelUpdate{kind: levelUpdated, level: lvl, top: book.isTop(o, lvl)})
		e.handler.OnUpdateOrder(o)
	case o.LeavesQuantity == 0:
		lvl.retotal(visBefore, hidBefore, 0, 0)
		lu := book.removeOrder(o)
		e.emitLevel(book, o, lu)
		e.handler.OnDeleteOrder(o)
		e.discard(o)
	default:
		lvl.retotal(visBefore, hidBefore, o.LeavesQuantity, o.HiddenQuantity)
		e.emitLevel(book, o, levelUpdate{kind: levelUpdated, level: lvl, top: book.isTop(o, lvl)})
		e.handler.OnUpdateOrder(o)
	}
}

// ---- book drain ----

// matchBook repeatedly drains crossed displayed levels and fires
// triggered stops until the book is stable. The later-arrived head is
// the aggressor of each pair and trades at the earlier head's price.
func (e *Engine) matchBook(book *OrderBook) {
	for {
		for {
			bid := book.BestBid()
			ask := book.BestAsk()
			if bid == nil || ask == nil || bid.Price < ask.Price {
				break
			}
			bidHead, askHead := bid.Head(), ask.Head()

			if bidHead.IsAON() || askHead.IsAON() {
				if !e.matchAONHeads(book, bidHead, askHead) {
					// The indivisible block cannot be assembled;
					// priority forbids trading around it.
					break
				}
				continue
			}

			aggr, rest := bidHead, askHead
			if bidHead.seq < askHead.seq {
				aggr, rest = askHead, bidHead
			}
			qty := minQty(bidHead.LeavesQuantity, askHead.LeavesQuantity)
			e.executeSlices(book, aggr, rest, ladderKey(rest), qty)
		}
		activated := e.activateStopOrders(book)
		trailed := e.recalculateTrailingStops(book)
		if !activated && !trailed {
			return
		}
	}
}

// matchAONHeads resolves a crossed pair where at least one head is
// all-or-none, by assembling a full matching chain for the binding
// block. Returns false when no chain exists.
func (e *Engine) matchAONHeads(book *OrderBook, bidHead, askHead *Order) bool {
	var owner *Order
	switch {
	case bidHead.IsAON() && askHead.IsAON():
		if bidHead.RemainingQuantity() == askHead.RemainingQuantity() {
			aggr, rest := bidHead, askHead
			if bidHead.seq < askHead.seq {
				aggr, rest = askHead, bidHead
			}
			e.executeSlices(book, aggr, rest, ladderKey(rest), rest.RemainingQuantity())
			return true
		}
		if bidHead.RemainingQuantity() > askHead.RemainingQuantity() {
			owner = bidHead
		} else {
			owner = askHead
		}
	case bidHead.IsAON():
		owner = bidHead
	default:
		owner = askHead
	}

	chain, ok := e.matchingChain(book, owner, owner.RemainingQuantity())
	if !ok {
		return false
	}
	e.executeChain(book, owner, chain)
	return true
}
