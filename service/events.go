package service

import "tycho/domain/matching"

// EventType names one engine callback in the outbound event stream.
type EventType string

const (
	EvAddSymbol       EventType = "add_symbol"
	EvDeleteSymbol    EventType = "delete_symbol"
	EvAddOrderBook    EventType = "add_book"
	EvUpdateOrderBook EventType = "update_book"
	EvDeleteOrderBook EventType = "delete_book"
	EvAddLevel        EventType = "add_level"
	EvUpdateLevel     EventType = "update_level"
	EvDeleteLevel     EventType = "delete_level"
	EvAddOrder        EventType = "add_order"
	EvUpdateOrder     EventType = "update_order"
	EvDeleteOrder     EventType = "delete_order"
	EvExecuteOrder    EventType = "execute"
)

// Event is the serializable form of one engine callback. The stream is
// totally ordered by Seq; consumers can rebuild a market view from it.
type Event struct {
	Seq      uint64    `json:"seq"`
	Type     EventType `json:"type"`
	SymbolID uint32    `json:"symbol_id,omitempty"`
	OrderID  uint64    `json:"order_id,omitempty"`
	Side     string    `json:"side,omitempty"`
	Price    uint64    `json:"price,omitempty"`
	Quantity uint64    `json:"qty,omitempty"`
	Leaves   uint64    `json:"leaves,omitempty"`
	Top      bool      `json:"top,omitempty"`
}

// eventSink adapts the engine's handler surface into Event values. It
// buffers per command; the service flushes the buffer once the command
// completes so downstream consumers never observe half a command.
type eventSink struct {
	seq   uint64
	buf   []Event
	muted bool
}

func newEventSink() *eventSink {
	return &eventSink{}
}

func (s *eventSink) push(ev Event) {
	if s.muted {
		return
	}
	s.seq++
	ev.Seq = s.seq
	s.buf = append(s.buf, ev)
}

func (s *eventSink) drain() []Event {
	out := s.buf
	s.buf = nil
	return out
}

func (s *eventSink) OnAddSymbol(symbol matching.Symbol) {
	s.push(Event{Type: EvAddSymbol, SymbolID: symbol.ID})
}

func (s *eventSink) OnDeleteSymbol(symbol matching.Symbol) {
	s.push(Event{Type: EvDeleteSymbol, SymbolID: symbol.ID})
}

func (s *eventSink) OnAddOrderBook(book *matching.OrderBook) {
	s.push(Event{Type: EvAddOrderBook, SymbolID: book.Symbol().ID})
}

func (s *eventSink) OnUpdateOrderBook(book *matching.OrderBook, top bool) {
	s.push(Event{Type: EvUpdateOrderBook, SymbolID: book.Symbol().ID, Top: top})
}

func (s *eventSink) OnDeleteOrderBook(book *matching.OrderBook) {
	s.push(Event{Type: EvDeleteOrderBook, SymbolID: book.Symbol().ID})
}

func (s *eventSink) OnAddLevel(book *matching.OrderBook, lvl *matching.PriceLevel, top bool) {
	s.push(Event{
		Type: EvAddLevel, SymbolID: book.Symbol().ID, Side: lvl.Side.String(),
		Price: lvl.Price, Quantity: lvl.TotalVolume(), Top: top,
	})
}

func (s *eventSink) OnUpdateLevel(book *matching.OrderBook, lvl *matching.PriceLevel, top bool) {
	s.push(Event{
		Type: EvUpdateLevel, SymbolID: book.Symbol().ID, Side: lvl.Side.String(),
		Price: lvl.Price, Quantity: lvl.TotalVolume(), Top: top,
	})
}

func (s *eventSink) OnDeleteLevel(book *matching.OrderBook, lvl *matching.PriceLevel, top bool) {
	s.push(Event{
		Type: EvDeleteLevel, SymbolID: book.Symbol().ID, Side: lvl.Side.String(),
		Price: lvl.Price, Top: top,
	})
}

func (s *eventSink) OnAddOrder(o *matching.Order) {
	s.push(Event{
		Type: EvAddOrder, SymbolID: o.SymbolID, OrderID: o.ID, Side: o.Side.String(),
		Price: o.Price, Quantity: o.Quantity, Leaves: o.LeavesQuantity,
	})
}

func (s *eventSink) OnUpdateOrder(o *matching.Order) {
	s.push(Event{
		Type: EvUpdateOrder, SymbolID: o.SymbolID, OrderID: o.ID, Side: o.Side.String(),
		Price: o.Price, Quantity: o.Quantity, Leaves: o.LeavesQuantity,
	})
}

func (s *eventSink) OnDeleteOrder(o *matching.Order) {
	s.push(Event{
		Type: EvDeleteOrder, SymbolID: o.SymbolID, OrderID: o.ID, Side: o.Side.String(),
	})
}

func (s *eventSink) OnExecuteOrder(o *matching.Order, price, qty uint64) {
	s.push(Event{
		Type: EvExecuteOrder, SymbolID: o.SymbolID, OrderID: o.ID, Side: o.Side.String(),
		Price: price, Quantity: qty,
	})
}
