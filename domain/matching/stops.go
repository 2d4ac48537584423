package matching

// addStopOrder handles stop, stop-limit and both trailing variants. A
// stop whose trigger condition already holds activates inline;
// otherwise it rests in its stop ladder until the market reaches it.
func (e *Engine) addStopOrder(book *OrderBook, o *Order) {
	if o.IsTrailing() {
		o.StopPrice = e.initialTrailingStop(book, o)
	}

	e.handler.OnAddOrder(o)

	if e.matching && e.stopTriggered(book, o) {
		e.activate(book, o)
		e.afterCommand(book)
		return
	}

	book.addOrder(o)
	e.orders[o.ID] = o
	e.afterCommand(book)
}

// stopTriggered reports whether the market reference has crossed the
// order's stop price.
func (e *Engine) stopTriggered(book *OrderBook, o *Order) bool {
	if o.IsBuy() {
		return book.marketAskRef() >= o.StopPrice
	}
	return book.marketBidRef() <= o.StopPrice
}

// activate converts a triggered stop into its post-trigger order and
// runs it as an aggressor within the current command.
func (e *Engine) activate(book *OrderBook, o *Order) {
	if o.IsStopLimit() {
		o.Type = TypeLimit
	} else {
		o.Type = TypeMarket
	}
	o.StopPrice = 0
	o.TrailingDistance = 0
	o.seq = e.nextSeq()
	e.handler.OnUpdateOrder(o)

	if o.IsMarket() {
		if o.IsFOK() || o.IsAON() {
			if chain, ok := e.matchingChain(book, o, o.RemainingQuantity()); ok {
				e.executeChain(book, o, chain)
			}
		} else {
			e.matchMarket(book, o)
		}
		e.handler.OnDeleteOrder(o)
		e.discard(o)
		return
	}
	e.placeLimit(book, o)
}

// activateResting pops a stop order out of its ladder and activates it.
func (e *Engine) activateResting(book *OrderBook, o *Order) {
	book.removeOrder(o)
	delete(e.orders, o.ID)
	e.activate(book, o)
}

// activateStopOrders fires every stop whose condition holds, nearest
// stop price first, ties in insertion order. Activated orders execute
// as part of the current command; their trades can trigger further
// stops, so the scan repeats until a full pass stays quiet. Returns
// whether anything fired.
func (e *Engine) activateStopOrders(book *OrderBook) bool {
	activity := false
	for {
		changed := false

		askRef := book.marketAskRef()
		for {
			lvl := book.buyStops.MinLevel()
			if lvl == nil || lvl.Price > askRef {
				break
			}
			e.activateResting(book, lvl.Head())
			changed = true
			askRef = book.marketAskRef()
		}
		for {
			lvl := book.trailingBuyStops.MinLevel()
			if lvl == nil || lvl.Price > askRef {
				break
			}
			e.activateResting(book, lvl.Head())
			changed = true
			askRef = book.marketAskRef()
		}

		bidRef := book.marketBidRef()
		for {
			lvl := book.sellStops.MaxLevel()
			if lvl == nil || lvl.Price < bidRef {
				break
			}
			e.activateResting(book, lvl.Head())
			changed = true
			bidRef = book.marketBidRef()
		}
		for {
			lvl := book.trailingSellStops.MaxLevel()
			if lvl == nil || lvl.Price < bidRef {
				break
			}
			e.activateResting(book, lvl.Head())
			changed = true
			bidRef = book.marketBidRef()
		}

		if !changed {
			return activity
		}
		activity = true
	}
}

// ---- trailing recomputation ----

// trailingDistance resolves the order's configured distance against a
// reference price: nonnegative values are absolute ticks, negative
// values are basis points of the reference, rounded toward zero.
func trailingDistance(o *Order, ref uint64) uint64 {
	if o.TrailingDistance >= 0 {
		return uint64(o.TrailingDistance)
	}
	return ref * uint64(-o.TrailingDistance) / 10000
}

// trailingStopPrice computes the floating stop for the current
// reference: below the bid for sell stops, above the ask for buy stops.
func trailingStopPrice(o *Order, ref uint64) uint64 {
	d := trailingDistance(o, ref)
	if o.IsBuy() {
		if ref > maxPrice-d {
			return maxPrice
		}
		return ref + d
	}
	if d >= ref {
		return 0
	}
	return ref - d
}

// initialTrailingStop seeds the stop of a freshly added trailing order
// from the current trailing reference. With no displayed reference the
// stop parks where it cannot trigger.
func (e *Engine) initialTrailingStop(book *OrderBook, o *Order) uint64 {
	if o.IsBuy() {
		return trailingStopPrice(o, book.trailingAskRef())
	}
	return trailingStopPrice(o, book.trailingBidRef())
}

// recalculateTrailingStops re-keys trailing orders after their
// reference moved. The stop only ratchets in the favorable direction:
// up for sell stops, down for buy stops; it never retreats. The pass is
// batched per reference change rather than per fill. Returns whether
// any stop moved.
func (e *Engine) recalculateTrailingStops(book *OrderBook) bool {
	moved := false

	if newBid := book.trailingBidRef(); newBid != book.trailingBidPrice {
		book.trailingBidPrice = newBid
		if newBid != 0 && book.trailingSellStops.Size() > 0 {
			for _, o := range collectOrders(book.trailingSellStops) {
				newStop := trailingStopPrice(o, newBid)
				if newStop > o.StopPrice {
					book.removeOrder(o)
					o.StopPrice = newStop
					book.addOrder(o)
					e.handler.OnUpdateOrder(o)
					moved = true
				}
			}
		}
	}

	if newAsk := book.trailingAskRef(); newAsk != book.trailingAskPrice {
		book.trailingAskPrice = newAsk
		if newAsk != maxPrice && book.trailingBuyStops.Size() > 0 {
			for _, o := range collectOrders(book.trailingBuyStops) {
				newStop := trailingStopPrice(o, newAsk)
				if newStop < o.StopPrice {
					book.removeOrder(o)
					o.StopPrice = newStop
					book.addOrder(o)
					e.handler.OnUpdateOrder(o)
					moved = true
				}
			}
		}
	}

	return moved
}

func collectOrders(tree *rbTree) []*Order {
	var orders []*Order
	tree.ForEachAscending(func(lvl *PriceLevel) bool {
		for o := lvl.Head(); o != nil; o = o.Next() {
			orders = append(orders, o)
		}
		return true
	})
	return orders
}
