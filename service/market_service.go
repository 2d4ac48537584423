package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"tycho/domain/matching"
	"tycho/infra/journal"
	"tycho/infra/kafka"
	"tycho/infra/memory"
	"tycho/infra/outbox"
	"tycho/infra/sequence"
	"tycho/snapshot"
)

// command is the journaled form of every mutating call.
type command struct {
	SymbolID   uint32 `json:"symbol_id,omitempty"`
	Name       string `json:"name,omitempty"`
	OrderID    uint64 `json:"order_id,omitempty"`
	NewOrderID uint64 `json:"new_order_id,omitempty"`
	OrderType  uint8  `json:"order_type,omitempty"`
	Side       uint8  `json:"side,omitempty"`
	TIF        uint8  `json:"tif,omitempty"`
	Price      uint64 `json:"price,omitempty"`
	StopPrice  uint64 `json:"stop_price,omitempty"`
	Quantity   uint64 `json:"qty,omitempty"`
	Visible    uint64 `json:"visible,omitempty"`
	Slippage   uint64 `json:"slippage,omitempty"`
	Distance   int64  `json:"distance,omitempty"`
}

// pooledAllocator backs the engine with the shared order pool. Records
// released by the engine park in the retire ring until the epoch
// reclaimer proves no snapshot reader can still touch them.
type pooledAllocator struct {
	pool *memory.Pool[matching.Order]
	ring *memory.RetireRing
}

func (a *pooledAllocator) GetOrder() *matching.Order { return a.pool.Get() }

func (a *pooledAllocator) PutOrder(o *matching.Order) {
	if !a.ring.Enqueue(o) {
		// Ring full: let the garbage collector take this one.
		log.Printf("[service] retire ring full, order %d dropped to GC", o.ID)
	}
}

// MarketService is the single dispatcher in front of the engine. All
// command paths serialize on its mutex; the engine itself assumes
// exclusive access.
type MarketService struct {
	mu sync.Mutex

	engine *matching.Engine
	sink   *eventSink

	journal    *journal.Journal
	serializer journal.Serializer
	seqGen     *sequence.Sequencer

	pool   *memory.Pool[matching.Order]
	ring   *memory.RetireRing
	reader *snapshot.Reader

	outbox *outbox.Outbox
	feed   *kafka.Producer

	notifyMu  sync.RWMutex
	notifiers []func([]Event)

	replaying bool
}

// Config carries the optional collaborators. Only the journal is
// mandatory for a durable command stream; everything else degrades to
// a no-op when absent.
type Config struct {
	Journal *journal.Journal
	Outbox  *outbox.Outbox
	Feed    *kafka.Producer
	SeqGen  *sequence.Sequencer
}

// New wires a MarketService around a fresh engine.
func New(cfg Config) *MarketService {
	pool := memory.NewPool(func() *matching.Order { return &matching.Order{} })
	ring := memory.NewRetireRing(1 << 16)
	sink := newEventSink()

	seqGen := cfg.SeqGen
	if seqGen == nil {
		seqGen = sequence.New(0)
	}

	s := &MarketService{
		sink:       sink,
		journal:    cfg.Journal,
		serializer: journal.JSONSerializer{},
		seqGen:     seqGen,
		pool:       pool,
		ring:       ring,
		reader:     snapshot.NewReader(),
		outbox:     cfg.Outbox,
		feed:       cfg.Feed,
	}
	s.engine = matching.NewEngineWithAllocator(sink, &pooledAllocator{pool: pool, ring: ring})
	return s
}

// Notify registers a callback invoked with each command's event batch.
// Callbacks run on the command path and must be fast.
func (s *MarketService) Notify(fn func([]Event)) {
	s.notifyMu.Lock()
	s.notifiers = append(s.notifiers, fn)
	s.notifyMu.Unlock()
}

// ---- commands ----

func (s *MarketService) AddSymbol(id uint32, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(journal.RecordAddSymbol, command{SymbolID: id, Name: name})
	err := s.engine.AddSymbol(matching.NewSymbol(id, name))
	s.flush()
	return err
}

func (s *MarketService) DeleteSymbol(id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(journal.RecordDeleteSymbol, command{SymbolID: id})
	err := s.engine.DeleteSymbol(id)
	s.flush()
	return err
}

func (s *MarketService) AddOrderBook(id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(journal.RecordAddOrderBook, command{SymbolID: id})
	err := s.engine.AddOrderBook(matching.NewSymbol(id, ""))
	s.flush()
	return err
}

func (s *MarketService) DeleteOrderBook(id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(journal.RecordDeleteOrderBook, command{SymbolID: id})
	err := s.engine.DeleteOrderBook(id)
	s.flush()
	return err
}

func (s *MarketService) AddOrder(order matching.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(journal.RecordAddOrder, command{
		SymbolID:  order.SymbolID,
		OrderID:   order.ID,
		OrderType: uint8(order.Type),
		Side:      uint8(order.Side),
		TIF:       uint8(order.TIF),
		Price:     order.Price,
		StopPrice: order.StopPrice,
		Quantity:  order.Quantity,
		Visible:   order.VisibleQuantity,
		Slippage:  order.Slippage,
		Distance:  order.TrailingDistance,
	})
	err := s.engine.AddOrder(order)
	s.flush()
	return err
}

func (s *MarketService) ReduceOrder(id uint64, quantity uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(journal.RecordReduceOrder, command{OrderID: id, Quantity: quantity})
	err := s.engine.ReduceOrder(id, quantity)
	s.flush()
	return err
}

func (s *MarketService) ModifyOrder(id uint64, newPrice, newQuantity uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(journal.RecordModifyOrder, command{OrderID: id, Price: newPrice, Quantity: newQuantity})
	err := s.engine.ModifyOrder(id, newPrice, newQuantity)
	s.flush()
	return err
}

func (s *MarketService) ReplaceOrder(id, newID uint64, newPrice, newQuantity uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(journal.RecordReplaceOrder, command{
		OrderID: id, NewOrderID: newID, Price: newPrice, Quantity: newQuantity,
	})
	err := s.engine.ReplaceOrder(id, newID, newPrice, newQuantity)
	s.flush()
	return err
}

func (s *MarketService) DeleteOrder(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(journal.RecordDeleteOrder, command{OrderID: id})
	err := s.engine.DeleteOrder(id)
	s.flush()
	return err
}

func (s *MarketService) EnableMatching() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(journal.RecordEnableMatching, command{})
	s.engine.EnableMatching()
	s.flush()
}

func (s *MarketService) DisableMatching() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(journal.RecordDisableMatching, command{})
	s.engine.DisableMatching()
	s.flush()
}

// ---- queries ----

// OrderView is a detached copy of a live order, safe to retain.
type OrderView struct {
	ID       uint64 `json:"id"`
	SymbolID uint32 `json:"symbol_id"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"qty"`
	Leaves   uint64 `json:"leaves"`
	Hidden   uint64 `json:"hidden"`
}

// Snapshot returns every resting order on the displayed ladders of one
// book, best price first per side. Runs under a reader epoch so order
// records cannot be recycled mid-walk.
func (s *MarketService) Snapshot(symbolID uint32) []OrderView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reader.Begin()
	defer s.reader.End()

	book := s.engine.OrderBook(symbolID)
	if book == nil {
		return nil
	}

	out := make([]OrderView, 0, 64)
	collect := func(lvl *matching.PriceLevel) bool {
		for o := lvl.Head(); o != nil; o = o.Next() {
			out = append(out, OrderView{
				ID:       o.ID,
				SymbolID: o.SymbolID,
				Side:     o.Side.String(),
				Type:     o.Type.String(),
				Price:    o.Price,
				Quantity: o.Quantity,
				Leaves:   o.LeavesQuantity,
				Hidden:   o.HiddenQuantity,
			})
		}
		return true
	}
	book.BidsWalk(collect)
	book.AsksWalk(collect)
	return out
}

// TopOfBook reports the current best bid and ask prices and volumes.
func (s *MarketService) TopOfBook(symbolID uint32) (bidPrice, bidQty, askPrice, askQty uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.engine.OrderBook(symbolID)
	if book == nil {
		return 0, 0, 0, 0, false
	}
	if lvl := book.BestBid(); lvl != nil {
		bidPrice, bidQty = lvl.Price, lvl.TotalVisible
	}
	if lvl := book.BestAsk(); lvl != nil {
		askPrice, askQty = lvl.Price, lvl.TotalVisible
	}
	return bidPrice, bidQty, askPrice, askQty, true
}

// LastSeq is the sequence of the last journaled command.
func (s *MarketService) LastSeq() uint64 { return s.seqGen.Current() }

// Orders is the number of live orders.
func (s *MarketService) Orders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Orders()
}

// ---- maintenance ----

// AdvanceEpoch performs safe memory reclamation. Called periodically
// by a background job.
func (s *MarketService) AdvanceEpoch() {
	memory.AdvanceEpochAndReclaim(s.ring, s.pool, s.reader.Epoch())
}

// Dump captures a complete engine image for the snapshotter.
func (s *MarketService) Dump() *snapshot.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reader.Begin()
	defer s.reader.End()

	state := &snapshot.State{
		Seq:             s.seqGen.Current(),
		Created:         time.Now(),
		MatchingEnabled: s.engine.IsMatchingEnabled(),
	}
	s.engine.EachSymbol(func(sym matching.Symbol) {
		state.Symbols = append(state.Symbols, snapshot.SymbolEntry{
			ID:      sym.ID,
			Name:    sym.Name,
			HasBook: s.engine.OrderBook(sym.ID) != nil,
		})
	})
	s.engine.EachOrder(func(o *matching.Order) {
		state.Orders = append(state.Orders, snapshot.OrderEntry{
			ID:        o.ID,
			SymbolID:  o.SymbolID,
			Type:      uint8(o.Type),
			Side:      uint8(o.Side),
			TIF:       uint8(o.TIF),
			Price:     o.Price,
			StopPrice: o.StopPrice,
			Quantity:  o.Quantity,
			Executed:  o.ExecutedQuantity,
			Leaves:    o.LeavesQuantity,
			Visible:   o.VisibleQuantity,
			Hidden:    o.HiddenQuantity,
			Slippage:  o.Slippage,
			Distance:  o.TrailingDistance,
		})
	})
	return state
}

// Restore rebuilds the engine from a snapshot image. It must run on a
// fresh service before the journal suffix replays. Orders re-enter a
// non-matching engine in their resting order; trailing stops re-derive
// their stop price from the restored book. The matching toggle is
// applied last.
func (s *MarketService) Restore(state *snapshot.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaying = true
	s.sink.muted = true
	defer func() {
		s.replaying = false
		s.sink.muted = false
	}()

	for _, sym := range state.Symbols {
		_ = s.engine.AddSymbol(matching.NewSymbol(sym.ID, sym.Name))
		if sym.HasBook {
			_ = s.engine.AddOrderBook(matching.NewSymbol(sym.ID, ""))
		}
	}
	for _, entry := range state.Orders {
		_ = s.engine.AddOrder(matching.Order{
			ID:               entry.ID,
			SymbolID:         entry.SymbolID,
			Type:             matching.OrderType(entry.Type),
			Side:             matching.Side(entry.Side),
			TIF:              matching.TimeInForce(entry.TIF),
			Price:            entry.Price,
			StopPrice:        entry.StopPrice,
			Quantity:         entry.Quantity,
			ExecutedQuantity: entry.Executed,
			LeavesQuantity:   entry.Leaves,
			VisibleQuantity:  entry.Visible,
			HiddenQuantity:   entry.Hidden,
			Slippage:         entry.Slippage,
			TrailingDistance: entry.Distance,
		})
	}
	if state.MatchingEnabled {
		s.engine.EnableMatching()
	}
	s.seqGen.Reset(state.Seq)
}

// ---- internals ----

// record journals the command before it executes. Replay feeds
// commands straight into the engine and must not journal them again.
func (s *MarketService) record(t journal.RecordType, cmd command) {
	if s.replaying || s.journal == nil {
		return
	}
	data, err := s.serializer.Encode(cmd)
	if err != nil {
		log.Printf("[service] journal encode failed: %v", err)
		return
	}
	if err := s.journal.Append(journal.NewRecord(t, s.seqGen.Next(), data)); err != nil {
		log.Printf("[service] journal append failed: %v", err)
	}
}

// flush delivers the command's event batch downstream: outbox first
// for durable publication, then the in-process notifiers, then the
// fire-and-forget trade feed.
func (s *MarketService) flush() {
	events := s.sink.drain()
	if len(events) == 0 {
		return
	}

	if s.outbox != nil {
		for _, ev := range events {
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := s.outbox.Put(ev.Seq, payload); err != nil {
				log.Printf("[service] outbox put failed: %v", err)
			}
		}
	}

	s.notifyMu.RLock()
	for _, fn := range s.notifiers {
		fn(events)
	}
	s.notifyMu.RUnlock()

	if s.feed != nil {
		for _, ev := range events {
			if ev.Type != EvExecuteOrder {
				continue
			}
			key := fmt.Sprintf("%d", ev.SymbolID)
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := s.feed.Send(context.Background(), []byte(key), payload); err != nil {
				log.Printf("[service] feed send failed: %v", err)
			}
		}
	}
}
