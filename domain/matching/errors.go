package matching

import "errors"

// Failure kinds returned by engine commands. A nil error means OK.
// All failures are local to the failing command; no partial mutation
// remains behind a non-nil return.
var (
	ErrSymbolDuplicate      = errors.New("symbol duplicate")
	ErrSymbolNotFound       = errors.New("symbol not found")
	ErrOrderBookDuplicate   = errors.New("order book duplicate")
	ErrOrderBookNotFound    = errors.New("order book not found")
	ErrOrderBookExists      = errors.New("order book still exists")
	ErrOrderDuplicate       = errors.New("order duplicate")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidOrderID       = errors.New("invalid order id")
	ErrInvalidOrderQuantity = errors.New("invalid order quantity")
	ErrInvalidOrderPrice    = errors.New("invalid order price")
	ErrInvalidOrderType     = errors.New("invalid order type")
)
