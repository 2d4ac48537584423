package matching

// PriceLevel is a FIFO queue of live orders at a single price. Orders
// are linked intrusively; append and arbitrary removal are O(1).
type PriceLevel struct {
	Price uint64
	Side  Side

	head *Order
	tail *Order

	// Aggregate volumes across the queue. TotalVisible sums the
	// displayed leaves; TotalHidden sums iceberg reserves.
	TotalVisible uint64
	TotalHidden  uint64
	Orders       int
}

// TotalVolume is the full liquidity at this price, hidden included.
func (l *PriceLevel) TotalVolume() uint64 {
	return l.TotalVisible + l.TotalHidden
}

// Head returns the order with time priority at this price.
func (l *PriceLevel) Head() *Order { return l.head }

// Empty reports whether the queue holds no orders.
func (l *PriceLevel) Empty() bool { return l.head == nil }

// enqueue appends the order at the tail of the queue.
func (l *PriceLevel) enqueue(o *Order) {
	o.level = l
	o.next = nil
	o.prev = l.tail
	if l.tail == nil {
		l.head = o
	} else {
		l.tail.next = o
	}
	l.tail = o
	l.TotalVisible += o.LeavesQuantity
	l.TotalHidden += o.HiddenQuantity
	l.Orders++
}

// unlink removes the order from anywhere in the queue and subtracts
// its current volumes from the level totals.
func (l *PriceLevel) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.next = nil
	o.prev = nil
	o.level = nil
	l.TotalVisible -= o.LeavesQuantity
	l.TotalHidden -= o.HiddenQuantity
	l.Orders--
}

// moveToTail requeues the order behind every other order at this
// price. Used when an iceberg replenishes and loses in-level priority.
func (l *PriceLevel) moveToTail(o *Order) {
	if l.tail == o {
		return
	}
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	o.next.prev = o.prev
	o.prev = l.tail
	o.next = nil
	l.tail.next = o
	l.tail = o
}

// retotal folds a quantity mutation of one queued order into the level
// totals, given the order's volumes before and after the mutation.
func (l *PriceLevel) retotal(visBefore, hidBefore, visAfter, hidAfter uint64) {
	l.TotalVisible = l.TotalVisible - visBefore + visAfter
	l.TotalHidden = l.TotalHidden - hidBefore + hidAfter
}
