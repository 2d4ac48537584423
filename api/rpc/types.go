package rpc

import "tycho/service"

type AddSymbolRequest struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

type SymbolRequest struct {
	ID uint32 `json:"id"`
}

type SubmitOrderRequest struct {
	SymbolID  uint32 `json:"symbol_id"`
	OrderID   uint64 `json:"order_id"`
	Type      string `json:"type"` // limit, market, stop, stop-limit, trailing-stop, trailing-stop-limit
	Side      string `json:"side"` // buy, sell
	TIF       string `json:"tif"`  // GTC, IOC, FOK, AON
	Price     uint64 `json:"price,omitempty"`
	StopPrice uint64 `json:"stop_price,omitempty"`
	Quantity  uint64 `json:"qty"`
	Visible   uint64 `json:"visible,omitempty"`
	Slippage  uint64 `json:"slippage,omitempty"`
	Distance  int64  `json:"distance,omitempty"`
}

type ReduceOrderRequest struct {
	OrderID  uint64 `json:"order_id"`
	Quantity uint64 `json:"qty"`
}

type ModifyOrderRequest struct {
	OrderID  uint64 `json:"order_id"`
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"qty"`
}

type ReplaceOrderRequest struct {
	OrderID    uint64 `json:"order_id"`
	NewOrderID uint64 `json:"new_order_id"`
	Price      uint64 `json:"price"`
	Quantity   uint64 `json:"qty"`
}

type OrderRequest struct {
	OrderID uint64 `json:"order_id"`
}

type StatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Seq    uint64 `json:"seq,omitempty"`
}

type SnapshotRequest struct {
	SymbolID uint32 `json:"symbol_id"`
}

type SnapshotResponse struct {
	Orders []service.OrderView `json:"orders"`
}

type TopOfBookRequest struct {
	SymbolID uint32 `json:"symbol_id"`
}

type TopOfBookResponse struct {
	BidPrice uint64 `json:"bid_price"`
	BidQty   uint64 `json:"bid_qty"`
	AskPrice uint64 `json:"ask_price"`
	AskQty   uint64 `json:"ask_qty"`
}
