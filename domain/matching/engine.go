package matching

import "sort"

// Engine is the market manager. It owns the symbol registry, the order
// book set, the global order index, and the matching state machine,
// and forwards every market event to the injected handler.
//
// The engine is strictly single-writer: commands run to completion in
// submission order and event emission order equals command order.
// Handlers must not re-enter the engine.
type Engine struct {
	handler Handler
	alloc   Allocator

	symbols map[uint32]Symbol
	books   map[uint32]*OrderBook
	orders  map[uint64]*Order

	matching bool
	seq      uint64
}

// NewEngine creates an engine with the default heap allocator.
func NewEngine(handler Handler) *Engine {
	return NewEngineWithAllocator(handler, nil)
}

// NewEngineWithAllocator creates an engine drawing order records from
// the given allocator. A nil allocator falls back to plain allocation.
func NewEngineWithAllocator(handler Handler, alloc Allocator) *Engine {
	if handler == nil {
		handler = NopHandler{}
	}
	if alloc == nil {
		alloc = heapAllocator{}
	}
	return &Engine{
		handler: handler,
		alloc:   alloc,
		symbols: make(map[uint32]Symbol),
		books:   make(map[uint32]*OrderBook),
		orders:  make(map[uint64]*Order),
	}
}

// IsMatchingEnabled reports whether commands match automatically.
func (e *Engine) IsMatchingEnabled() bool { return e.matching }

// EnableMatching turns automatic matching on and immediately drains
// any cross left behind while it was off.
func (e *Engine) EnableMatching() {
	e.matching = true
	e.Match()
}

// DisableMatching turns automatic matching off. Subsequent commands
// may leave the book crossed until matching is re-enabled.
func (e *Engine) DisableMatching() {
	e.matching = false
}

// Match drains every order book in ascending symbol order: crossed
// levels execute and triggered stops fire until each book is stable.
func (e *Engine) Match() {
	ids := make([]uint32, 0, len(e.books))
	for id := range e.books {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		book := e.books[id]
		e.matchBook(book)
		e.finishMatching(book)
	}
}

// Symbol returns the registered symbol descriptor.
func (e *Engine) Symbol(id uint32) (Symbol, bool) {
	s, ok := e.symbols[id]
	return s, ok
}

// OrderBook returns the book for the symbol id, or nil.
func (e *Engine) OrderBook(id uint32) *OrderBook { return e.books[id] }

// Order returns the live order with the given id, or nil. The record
// is borrowed; it becomes invalid once the order completes.
func (e *Engine) Order(id uint64) *Order { return e.orders[id] }

// Orders is the number of live orders across all books.
func (e *Engine) Orders() int { return len(e.orders) }

// EachSymbol visits registered symbols in ascending id order.
func (e *Engine) EachSymbol(fn func(Symbol)) {
	ids := make([]uint32, 0, len(e.symbols))
	for id := range e.symbols {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(e.symbols[id])
	}
}

// EachOrder visits every live order, books in ascending symbol order,
// ladders best-first. Orders are borrowed for the duration of the call.
func (e *Engine) EachOrder(fn func(*Order)) {
	ids := make([]uint32, 0, len(e.books))
	for id := range e.books {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		e.books[id].eachOrder(fn)
	}
}

// AddSymbol registers a symbol descriptor.
func (e *Engine) AddSymbol(symbol Symbol) error {
	if _, ok := e.symbols[symbol.ID]; ok {
		return ErrSymbolDuplicate
	}
	e.symbols[symbol.ID] = symbol
	e.handler.OnAddSymbol(symbol)
	return nil
}

// DeleteSymbol removes a symbol. It refuses while an order book is
// still bound to the symbol.
func (e *Engine) DeleteSymbol(id uint32) error {
	symbol, ok := e.symbols[id]
	if !ok {
		return ErrSymbolNotFound
	}
	if _, bound := e.books[id]; bound {
		return ErrOrderBookExists
	}
	delete(e.symbols, id)
	e.handler.OnDeleteSymbol(symbol)
	return nil
}

// AddOrderBook creates the order book for a registered symbol.
func (e *Engine) AddOrderBook(symbol Symbol) error {
	registered, ok := e.symbols[symbol.ID]
	if !ok {
		return ErrSymbolNotFound
	}
	if _, exists := e.books[symbol.ID]; exists {
		return ErrOrderBookDuplicate
	}
	book := NewOrderBook(registered)
	e.books[symbol.ID] = book
	e.handler.OnAddOrderBook(book)
	return nil
}

// DeleteOrderBook removes the book and cancels every order inside it.
func (e *Engine) DeleteOrderBook(id uint32) error {
	book, ok := e.books[id]
	if !ok {
		return ErrOrderBookNotFound
	}
	// Cancel all resident orders. No level events: the whole book is
	// going away.
	var doomed []*Order
	book.eachOrder(func(o *Order) { doomed = append(doomed, o) })
	for _, o := range doomed {
		book.removeOrder(o)
		e.handler.OnDeleteOrder(o)
		delete(e.orders, o.ID)
		e.alloc.PutOrder(o)
	}
	delete(e.books, id)
	e.handler.OnDeleteOrderBook(book)
	return nil
}

// AddOrder submits a new order. The caller's value is copied into an
// engine-owned record.
func (e *Engine) AddOrder(order Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	if _, exists := e.orders[order.ID]; exists {
		return ErrOrderDuplicate
	}
	book, ok := e.books[order.SymbolID]
	if !ok {
		return ErrOrderBookNotFound
	}

	o := e.alloc.GetOrder()
	*o = order
	o.seq = e.nextSeq()

	switch {
	case o.IsMarket():
		e.addMarketOrder(book, o)
	case o.IsLimit():
		e.addLimitOrder(book, o)
	default:
		e.addStopOrder(book, o)
	}
	return nil
}

// ReduceOrder shrinks the remaining quantity of a resting order. The
// order keeps its price and its time priority; a reduction to zero
// cancels it. Iceberg orders give up their hidden reserve first.
func (e *Engine) ReduceOrder(id uint64, quantity uint64) error {
	if id == 0 {
		return ErrInvalidOrderID
	}
	if quantity == 0 {
		return ErrInvalidOrderQuantity
	}
	o, ok := e.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	book := e.books[o.SymbolID]

	remaining := o.RemainingQuantity()
	if quantity > remaining {
		quantity = remaining
	}

	visBefore, hidBefore := o.LeavesQuantity, o.HiddenQuantity
	fromHidden := quantity
	if fromHidden > o.HiddenQuantity {
		fromHidden = o.HiddenQuantity
	}
	o.HiddenQuantity -= fromHidden
	o.LeavesQuantity -= quantity - fromHidden

	if o.IsExecuted() {
		o.level.retotal(visBefore, hidBefore, 0, 0)
		e.handler.OnDeleteOrder(o)
		lu := e.removeFromBook(book, o)
		e.emitLevel(book, o, lu)
		e.discard(o)
	} else {
		o.level.retotal(visBefore, hidBefore, o.LeavesQuantity, o.HiddenQuantity)
		e.handler.OnUpdateOrder(o)
		e.emitLevel(book, o, levelUpdate{kind: levelUpdated, level: o.level, top: book.isTop(o, o.level)})
	}
	e.afterCommand(book)
	return nil
}

// ModifyOrder changes the price and quantity of a resting limit order
// in place. A strict quantity decrease at the same price preserves
// time priority; any price change or quantity increase moves the order
// to the tail of its new level and re-attempts matching.
func (e *Engine) ModifyOrder(id uint64, newPrice, newQuantity uint64) error {
	if id == 0 {
		return ErrInvalidOrderID
	}
	if newPrice == 0 {
		return ErrInvalidOrderPrice
	}
	if newQuantity == 0 {
		return ErrInvalidOrderQuantity
	}
	o, ok := e.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	if !o.IsLimit() {
		return ErrInvalidOrderType
	}
	book := e.books[o.SymbolID]

	if newPrice == o.Price && newQuantity <= o.RemainingQuantity() {
		// In-place shrink, priority preserved.
		visBefore, hidBefore := o.LeavesQuantity, o.HiddenQuantity
		e.resliceQuantity(o, newQuantity)
		o.Quantity = o.ExecutedQuantity + newQuantity
		o.level.retotal(visBefore, hidBefore, o.LeavesQuantity, o.HiddenQuantity)
		e.handler.OnUpdateOrder(o)
		e.emitLevel(book, o, levelUpdate{kind: levelUpdated, level: o.level, top: book.isTop(o, o.level)})
		e.afterCommand(book)
		return nil
	}

	// Price change or quantity increase: the order loses priority and
	// is treated as a fresh arrival at its new level.
	lu := e.removeFromBook(book, o)
	e.emitLevel(book, o, lu)
	o.Price = newPrice
	e.resliceQuantity(o, newQuantity)
	o.Quantity = o.ExecutedQuantity + newQuantity
	o.seq = e.nextSeq()
	e.handler.OnUpdateOrder(o)

	e.placeLimit(book, o)
	e.afterCommand(book)
	return nil
}

// ReplaceOrder atomically cancels a resting limit order and submits a
// new one in its place. The new order always starts at the tail of its
// level.
func (e *Engine) ReplaceOrder(id, newID uint64, newPrice, newQuantity uint64) error {
	if id == 0 || newID == 0 {
		return ErrInvalidOrderID
	}
	if newPrice == 0 {
		return ErrInvalidOrderPrice
	}
	if newQuantity == 0 {
		return ErrInvalidOrderQuantity
	}
	o, ok := e.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	if !o.IsLimit() {
		return ErrInvalidOrderType
	}
	if newID != id {
		if _, exists := e.orders[newID]; exists {
			return ErrOrderDuplicate
		}
	}
	book := e.books[o.SymbolID]

	// Cancel the old order.
	lu := e.removeFromBook(book, o)
	e.handler.OnDeleteOrder(o)
	e.emitLevel(book, o, lu)
	delete(e.orders, o.ID)

	// Reuse the record for the replacement: same side and style, new
	// identity and terms.
	visible := o.VisibleQuantity
	*o = NewLimitOrder(o.SymbolID, newID, o.Side, newPrice, newQuantity)
	if visible != 0 {
		*o = NewIcebergLimitOrder(o.SymbolID, newID, o.Side, newPrice, newQuantity, visible)
	}
	o.seq = e.nextSeq()

	e.handler.OnAddOrder(o)
	e.placeLimit(book, o)
	e.afterCommand(book)
	return nil
}

// DeleteOrder cancels a resting order unconditionally.
func (e *Engine) DeleteOrder(id uint64) error {
	if id == 0 {
		return ErrInvalidOrderID
	}
	o, ok := e.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	book := e.books[o.SymbolID]

	lu := e.removeFromBook(book, o)
	e.handler.OnDeleteOrder(o)
	e.emitLevel(book, o, lu)
	e.discard(o)
	e.afterCommand(book)
	return nil
}

// ---- internals ----

func (e *Engine) nextSeq() uint64 {
	e.seq++
	return e.seq
}

// resliceQuantity sets the remaining quantity, re-splitting an iceberg
// into its visible and hidden parts.
func (e *Engine) resliceQuantity(o *Order, remaining uint64) {
	if o.IsIceberg() && remaining > o.VisibleQuantity {
		o.LeavesQuantity = o.VisibleQuantity
		o.HiddenQuantity = remaining - o.VisibleQuantity
	} else {
		o.LeavesQuantity = remaining
		o.HiddenQuantity = 0
	}
}

// removeFromBook detaches a resting order from its ladder.
func (e *Engine) removeFromBook(book *OrderBook, o *Order) levelUpdate {
	return book.removeOrder(o)
}

// discard drops a completed order from the index and returns its
// record to the allocator.
func (e *Engine) discard(o *Order) {
	delete(e.orders, o.ID)
	e.alloc.PutOrder(o)
}

// emitLevel forwards a ladder mutation to the handler. Only the
// displayed bid and ask ladders produce level and book events.
func (e *Engine) emitLevel(book *OrderBook, o *Order, lu levelUpdate) {
	if !visibleLadder(o) || lu.kind == levelNone {
		return
	}
	switch lu.kind {
	case levelAdded:
		e.handler.OnAddLevel(book, lu.level, lu.top)
	case levelUpdated:
		e.handler.OnUpdateLevel(book, lu.level, lu.top)
	case levelDeleted:
		e.handler.OnDeleteLevel(book, lu.level, lu.top)
	}
	e.handler.OnUpdateOrderBook(book, lu.top)
}

// afterCommand finishes a mutating command: drains any new cross and
// stop cascade when matching is enabled, then resets the in-command
// references and recomputes trailing stops.
func (e *Engine) afterCommand(book *OrderBook) {
	if e.matching {
		e.matchBook(book)
	}
	e.finishMatching(book)
}

func (e *Engine) finishMatching(book *OrderBook) {
	book.resetMatchingPrices()
	e.recalculateTrailingStops(book)
}
