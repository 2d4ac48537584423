package snapshot

import "time"

// State is a complete, detached image of the engine.
type State struct {
	Seq             uint64
	Created         time.Time
	MatchingEnabled bool
	Symbols         []SymbolEntry
	Orders          []OrderEntry
}

type SymbolEntry struct {
	ID      uint32
	Name    string
	HasBook bool
}

type OrderEntry struct {
	ID        uint64
	SymbolID  uint32
	Type      uint8
	Side      uint8
	TIF       uint8
	Price     uint64
	StopPrice uint64
	Quantity  uint64
	Executed  uint64
	Leaves    uint64
	Visible   uint64
	Hidden    uint64
	Slippage  uint64
	Distance  int64
}
