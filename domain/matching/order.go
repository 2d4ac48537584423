package matching

// Side is the direction of an order.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType selects the matching behaviour of an order.
type OrderType uint8

const (
	TypeLimit OrderType = iota
	TypeMarket
	TypeStop
	TypeStopLimit
	TypeTrailingStop
	TypeTrailingStopLimit
)

func (t OrderType) String() string {
	switch t {
	case TypeLimit:
		return "limit"
	case TypeMarket:
		return "market"
	case TypeStop:
		return "stop"
	case TypeStopLimit:
		return "stop-limit"
	case TypeTrailingStop:
		return "trailing-stop"
	case TypeTrailingStopLimit:
		return "trailing-stop-limit"
	default:
		return "unknown"
	}
}

// TimeInForce controls how long an order stays live. AON is modelled
// as a time-in-force kind: it rests like GTC but only ever fills as a
// single indivisible block.
type TimeInForce uint8

const (
	GTC TimeInForce = iota
	IOC
	FOK
	AON
)

func (tif TimeInForce) String() string {
	switch tif {
	case GTC:
		return "GTC"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	case AON:
		return "AON"
	default:
		return "unknown"
	}
}

// NoSlippage marks a market order without a price excursion cap.
const NoSlippage = ^uint64(0)

// Order is a live order record. Records are pooled: the engine copies
// the caller's value into an allocator-owned record on AddOrder, and
// callers must not retain records passed to handler callbacks.
type Order struct {
	ID       uint64
	SymbolID uint32
	Type     OrderType
	Side     Side
	TIF      TimeInForce

	// Price is the limit price; for stop-limit orders it is the limit
	// price applied after the trigger. Zero for market and stop orders.
	Price uint64

	// StopPrice is the trigger price for stop and trailing variants.
	StopPrice uint64

	// TrailingDistance is the trailing offset in ticks, or a negative
	// basis-points multiplier on the reference price.
	TrailingDistance int64

	// Quantity is the original total quantity.
	Quantity uint64

	// ExecutedQuantity accumulates fills.
	ExecutedQuantity uint64

	// LeavesQuantity is the quantity resting on the book. For iceberg
	// orders it never exceeds VisibleQuantity; the remainder waits in
	// HiddenQuantity and replenishes the visible slice as it depletes.
	LeavesQuantity uint64

	// VisibleQuantity is the configured display slice. Zero means the
	// order is not an iceberg and the whole remainder is displayed.
	VisibleQuantity uint64

	// HiddenQuantity is the undisplayed reserve of an iceberg order.
	HiddenQuantity uint64

	// Slippage caps the price excursion of a market order from its
	// first-match price. NoSlippage disables the cap.
	Slippage uint64

	// seq is the arrival sequence assigned by the engine; it breaks
	// priority ties and decides the aggressor when draining a cross.
	seq uint64

	// Intrusive links inside the owning price level queue.
	next, prev *Order
	level      *PriceLevel
}

// NewLimitOrder returns a GTC limit order.
func NewLimitOrder(symbolID uint32, id uint64, side Side, price, quantity uint64) Order {
	return Order{
		ID:             id,
		SymbolID:       symbolID,
		Type:           TypeLimit,
		Side:           side,
		TIF:            GTC,
		Price:          price,
		Quantity:       quantity,
		LeavesQuantity: quantity,
		Slippage:       NoSlippage,
	}
}

// NewIcebergLimitOrder returns a GTC limit order displaying at most
// visible quantity at a time; the rest waits as hidden reserve.
func NewIcebergLimitOrder(symbolID uint32, id uint64, side Side, price, quantity, visible uint64) Order {
	o := NewLimitOrder(symbolID, id, side, price, quantity)
	if visible == 0 || visible >= quantity {
		return o
	}
	o.VisibleQuantity = visible
	o.LeavesQuantity = visible
	o.HiddenQuantity = quantity - visible
	return o
}

// NewMarketOrder returns a market order without a slippage cap.
func NewMarketOrder(symbolID uint32, id uint64, side Side, quantity uint64) Order {
	return Order{
		ID:             id,
		SymbolID:       symbolID,
		Type:           TypeMarket,
		Side:           side,
		TIF:            IOC,
		Quantity:       quantity,
		LeavesQuantity: quantity,
		Slippage:       NoSlippage,
	}
}

// NewStopOrder returns a stop order that becomes a market order once
// triggered.
func NewStopOrder(symbolID uint32, id uint64, side Side, stopPrice, quantity uint64) Order {
	o := NewMarketOrder(symbolID, id, side, quantity)
	o.Type = TypeStop
	o.StopPrice = stopPrice
	return o
}

// NewStopLimitOrder returns a stop order that becomes a limit order at
// the given price once triggered.
func NewStopLimitOrder(symbolID uint32, id uint64, side Side, stopPrice, price, quantity uint64) Order {
	o := NewLimitOrder(symbolID, id, side, price, quantity)
	o.Type = TypeStopLimit
	o.StopPrice = stopPrice
	return o
}

// NewTrailingStopOrder returns a stop order whose trigger price trails
// the market by distance (ticks, or basis points when negative).
func NewTrailingStopOrder(symbolID uint32, id uint64, side Side, stopPrice, quantity uint64, distance int64) Order {
	o := NewStopOrder(symbolID, id, side, stopPrice, quantity)
	o.Type = TypeTrailingStop
	o.TrailingDistance = distance
	return o
}

// NewTrailingStopLimitOrder returns a trailing stop-limit order.
func NewTrailingStopLimitOrder(symbolID uint32, id uint64, side Side, stopPrice, price, quantity uint64, distance int64) Order {
	o := NewStopLimitOrder(symbolID, id, side, stopPrice, price, quantity)
	o.Type = TypeTrailingStopLimit
	o.TrailingDistance = distance
	return o
}

func (o *Order) IsBuy() bool    { return o.Side == Buy }
func (o *Order) IsLimit() bool  { return o.Type == TypeLimit }
func (o *Order) IsMarket() bool { return o.Type == TypeMarket }

// IsStop reports stop and trailing-stop orders that become market
// orders on trigger.
func (o *Order) IsStop() bool {
	return o.Type == TypeStop || o.Type == TypeTrailingStop
}

// IsStopLimit reports stop and trailing-stop orders that become limit
// orders on trigger.
func (o *Order) IsStopLimit() bool {
	return o.Type == TypeStopLimit || o.Type == TypeTrailingStopLimit
}

// IsTrailing reports both trailing variants.
func (o *Order) IsTrailing() bool {
	return o.Type == TypeTrailingStop || o.Type == TypeTrailingStopLimit
}

func (o *Order) IsAON() bool     { return o.TIF == AON }
func (o *Order) IsIOC() bool     { return o.TIF == IOC }
func (o *Order) IsFOK() bool     { return o.TIF == FOK }
func (o *Order) IsIceberg() bool { return o.VisibleQuantity != 0 }

// RemainingQuantity is the total unexecuted quantity, displayed and
// hidden parts included.
func (o *Order) RemainingQuantity() uint64 {
	return o.LeavesQuantity + o.HiddenQuantity
}

// IsExecuted reports a fully consumed order.
func (o *Order) IsExecuted() bool {
	return o.RemainingQuantity() == 0
}

// replenish refills the visible slice of an iceberg order from its
// hidden reserve. Returns the refilled amount.
func (o *Order) replenish() uint64 {
	if o.HiddenQuantity == 0 {
		return 0
	}
	take := o.VisibleQuantity
	if take > o.HiddenQuantity {
		take = o.HiddenQuantity
	}
	o.HiddenQuantity -= take
	o.LeavesQuantity += take
	return take
}

// Validate checks the static order parameters against the failure
// taxonomy. Book-dependent checks happen inside the engine.
func (o *Order) Validate() error {
	if o.ID == 0 {
		return ErrInvalidOrderID
	}
	if o.Quantity == 0 {
		return ErrInvalidOrderQuantity
	}
	switch o.Type {
	case TypeLimit:
		if o.Price == 0 {
			return ErrInvalidOrderPrice
		}
	case TypeMarket:
	case TypeStop:
		if o.StopPrice == 0 {
			return ErrInvalidOrderPrice
		}
	case TypeStopLimit:
		if o.Price == 0 || o.StopPrice == 0 {
			return ErrInvalidOrderPrice
		}
	case TypeTrailingStop:
		// Stop price is derived from the trailing reference when one
		// exists; a zero seed is allowed.
	case TypeTrailingStopLimit:
		if o.Price == 0 {
			return ErrInvalidOrderPrice
		}
	default:
		return ErrInvalidOrderType
	}
	if o.IsTrailing() && o.TrailingDistance == 0 {
		return ErrInvalidOrderPrice
	}
	if o.TIF == AON && o.VisibleQuantity != 0 {
		// An indivisible order cannot reveal itself in slices.
		return ErrInvalidOrderType
	}
	return nil
}

// Reset clears the record for pool reuse.
func (o *Order) Reset() { *o = Order{} }

// Next returns the next order in the level queue. Read-only traversal
// helper for snapshots.
func (o *Order) Next() *Order { return o.next }
