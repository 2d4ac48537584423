package matching

// Handler receives every market event the engine produces. Callbacks
// run synchronously on the command path in a total order; they must be
// fast, must not block, and must not re-enter the engine. Orders and
// levels passed to callbacks are borrowed for the duration of the call.
type Handler interface {
	OnAddSymbol(symbol Symbol)
	OnDeleteSymbol(symbol Symbol)

	OnAddOrderBook(book *OrderBook)
	OnUpdateOrderBook(book *OrderBook, top bool)
	OnDeleteOrderBook(book *OrderBook)

	OnAddLevel(book *OrderBook, level *PriceLevel, top bool)
	OnUpdateLevel(book *OrderBook, level *PriceLevel, top bool)
	OnDeleteLevel(book *OrderBook, level *PriceLevel, top bool)

	OnAddOrder(order *Order)
	OnUpdateOrder(order *Order)
	OnDeleteOrder(order *Order)

	OnExecuteOrder(order *Order, price uint64, quantity uint64)
}

// NopHandler discards all events. Embed it to implement a subset of
// the callbacks, or use it directly for benchmarks.
type NopHandler struct{}

func (NopHandler) OnAddSymbol(Symbol)                          {}
func (NopHandler) OnDeleteSymbol(Symbol)                       {}
func (NopHandler) OnAddOrderBook(*OrderBook)                   {}
func (NopHandler) OnUpdateOrderBook(*OrderBook, bool)          {}
func (NopHandler) OnDeleteOrderBook(*OrderBook)                {}
func (NopHandler) OnAddLevel(*OrderBook, *PriceLevel, bool)    {}
func (NopHandler) OnUpdateLevel(*OrderBook, *PriceLevel, bool) {}
func (NopHandler) OnDeleteLevel(*OrderBook, *PriceLevel, bool) {}
func (NopHandler) OnAddOrder(*Order)                           {}
func (NopHandler) OnUpdateOrder(*Order)                        {}
func (NopHandler) OnDeleteOrder(*Order)                        {}
func (NopHandler) OnExecuteOrder(*Order, uint64, uint64)       {}

// Allocator supplies order records to the engine and takes back
// released ones. A pooled implementation keeps the hot path off the
// general allocator; released records may still be
// referenced by concurrent snapshot readers and must only be reused
// once the owner knows no reader can hold them.
type Allocator interface {
	GetOrder() *Order
	PutOrder(*Order)
}

// heapAllocator is the default allocator: plain allocation, release is
// a no-op and the garbage collector reclaims records.
type heapAllocator struct{}

func (heapAllocator) GetOrder() *Order { return new(Order) }
func (heapAllocator) PutOrder(*Order)  {}
