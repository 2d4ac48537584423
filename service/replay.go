package service

import (
	"fmt"

	"tycho/domain/matching"
	"tycho/infra/journal"
)

// ReplayJournal rebuilds engine state from the command journal. It
// must run before the service accepts traffic. Events are muted during
// replay: downstream consumers already saw them the first time.
// Commands that failed live fail identically here and are skipped.
func (s *MarketService) ReplayJournal(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaying = true
	s.sink.muted = true
	defer func() {
		s.replaying = false
		s.sink.muted = false
	}()

	// Records at or below the current sequence are already part of a
	// restored snapshot; only the suffix behind it is applied.
	start := s.seqGen.Current()
	lastSeq, err := journal.Replay(dir, func(rec *journal.Record) error {
		if rec.Seq <= start {
			return nil
		}
		var cmd command
		if err := s.serializer.Decode(rec.Data, &cmd); err != nil {
			return fmt.Errorf("decode record %d: %w", rec.Seq, err)
		}
		s.apply(rec.Type, cmd)
		return nil
	})
	if err != nil {
		return err
	}

	// Resume sequencing after the replayed prefix.
	if lastSeq > start {
		s.seqGen.Reset(lastSeq)
	}
	return nil
}

func (s *MarketService) apply(t journal.RecordType, cmd command) {
	switch t {
	case journal.RecordAddSymbol:
		_ = s.engine.AddSymbol(matching.NewSymbol(cmd.SymbolID, cmd.Name))
	case journal.RecordDeleteSymbol:
		_ = s.engine.DeleteSymbol(cmd.SymbolID)
	case journal.RecordAddOrderBook:
		_ = s.engine.AddOrderBook(matching.NewSymbol(cmd.SymbolID, ""))
	case journal.RecordDeleteOrderBook:
		_ = s.engine.DeleteOrderBook(cmd.SymbolID)
	case journal.RecordAddOrder:
		_ = s.engine.AddOrder(orderFromCommand(cmd))
	case journal.RecordReduceOrder:
		_ = s.engine.ReduceOrder(cmd.OrderID, cmd.Quantity)
	case journal.RecordModifyOrder:
		_ = s.engine.ModifyOrder(cmd.OrderID, cmd.Price, cmd.Quantity)
	case journal.RecordReplaceOrder:
		_ = s.engine.ReplaceOrder(cmd.OrderID, cmd.NewOrderID, cmd.Price, cmd.Quantity)
	case journal.RecordDeleteOrder:
		_ = s.engine.DeleteOrder(cmd.OrderID)
	case journal.RecordEnableMatching:
		s.engine.EnableMatching()
	case journal.RecordDisableMatching:
		s.engine.DisableMatching()
	}
}

func orderFromCommand(cmd command) matching.Order {
	o := matching.Order{
		ID:               cmd.OrderID,
		SymbolID:         cmd.SymbolID,
		Type:             matching.OrderType(cmd.OrderType),
		Side:             matching.Side(cmd.Side),
		TIF:              matching.TimeInForce(cmd.TIF),
		Price:            cmd.Price,
		StopPrice:        cmd.StopPrice,
		Quantity:         cmd.Quantity,
		LeavesQuantity:   cmd.Quantity,
		Slippage:         cmd.Slippage,
		TrailingDistance: cmd.Distance,
	}
	if cmd.Visible != 0 && cmd.Visible < cmd.Quantity {
		o.VisibleQuantity = cmd.Visible
		o.LeavesQuantity = cmd.Visible
		o.HiddenQuantity = cmd.Quantity - cmd.Visible
	}
	return o
}
