// Package rpc exposes the market service over gRPC. The service is
// registered through a hand-built ServiceDesc with a JSON codec, so
// the build carries no generated stubs; clients dial with
// grpc.CallContentSubtype(rpc.Name).
package rpc

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/grpc"

	"tycho/domain/matching"
	"tycho/service"
)

// Server adapts MarketService to the RPC surface.
type Server struct {
	svc *service.MarketService
}

func NewServer(svc *service.MarketService) *Server {
	return &Server{svc: svc}
}

// Register attaches the service to a grpc.Server.
func (s *Server) Register(g *grpc.Server) {
	g.RegisterService(&serviceDesc, s)
}

// -------------------- Commands --------------------

func (s *Server) AddSymbol(ctx context.Context, req *AddSymbolRequest) (*StatusResponse, error) {
	return status(s.svc.AddSymbol(req.ID, req.Name), s.svc.LastSeq()), nil
}

func (s *Server) DeleteSymbol(ctx context.Context, req *SymbolRequest) (*StatusResponse, error) {
	return status(s.svc.DeleteSymbol(req.ID), s.svc.LastSeq()), nil
}

func (s *Server) AddOrderBook(ctx context.Context, req *SymbolRequest) (*StatusResponse, error) {
	return status(s.svc.AddOrderBook(req.ID), s.svc.LastSeq()), nil
}

func (s *Server) DeleteOrderBook(ctx context.Context, req *SymbolRequest) (*StatusResponse, error) {
	return status(s.svc.DeleteOrderBook(req.ID), s.svc.LastSeq()), nil
}

func (s *Server) SubmitOrder(ctx context.Context, req *SubmitOrderRequest) (*StatusResponse, error) {
	order, err := orderFromRequest(req)
	if err != nil {
		return &StatusResponse{Status: "error", Error: err.Error()}, nil
	}
	log.Printf("[rpc] SubmitOrder id=%d symbol=%d type=%s side=%s price=%d qty=%d",
		req.OrderID, req.SymbolID, req.Type, req.Side, req.Price, req.Quantity)
	return status(s.svc.AddOrder(order), s.svc.LastSeq()), nil
}

func (s *Server) ReduceOrder(ctx context.Context, req *ReduceOrderRequest) (*StatusResponse, error) {
	return status(s.svc.ReduceOrder(req.OrderID, req.Quantity), s.svc.LastSeq()), nil
}

func (s *Server) ModifyOrder(ctx context.Context, req *ModifyOrderRequest) (*StatusResponse, error) {
	return status(s.svc.ModifyOrder(req.OrderID, req.Price, req.Quantity), s.svc.LastSeq()), nil
}

func (s *Server) ReplaceOrder(ctx context.Context, req *ReplaceOrderRequest) (*StatusResponse, error) {
	return status(s.svc.ReplaceOrder(req.OrderID, req.NewOrderID, req.Price, req.Quantity), s.svc.LastSeq()), nil
}

func (s *Server) DeleteOrder(ctx context.Context, req *OrderRequest) (*StatusResponse, error) {
	return status(s.svc.DeleteOrder(req.OrderID), s.svc.LastSeq()), nil
}

// -------------------- Queries --------------------

func (s *Server) GetSnapshot(ctx context.Context, req *SnapshotRequest) (*SnapshotResponse, error) {
	return &SnapshotResponse{Orders: s.svc.Snapshot(req.SymbolID)}, nil
}

func (s *Server) GetTopOfBook(ctx context.Context, req *TopOfBookRequest) (*TopOfBookResponse, error) {
	bid, bidQty, ask, askQty, _ := s.svc.TopOfBook(req.SymbolID)
	return &TopOfBookResponse{BidPrice: bid, BidQty: bidQty, AskPrice: ask, AskQty: askQty}, nil
}

// -------------------- Converters --------------------

func status(err error, seq uint64) *StatusResponse {
	if err != nil {
		return &StatusResponse{Status: "error", Error: err.Error(), Seq: seq}
	}
	return &StatusResponse{Status: "ok", Seq: seq}
}

func orderFromRequest(req *SubmitOrderRequest) (matching.Order, error) {
	var side matching.Side
	switch req.Side {
	case "buy":
		side = matching.Buy
	case "sell":
		side = matching.Sell
	default:
		return matching.Order{}, fmt.Errorf("invalid side %q", req.Side)
	}

	var order matching.Order
	switch req.Type {
	case "limit":
		if req.Visible != 0 {
			order = matching.NewIcebergLimitOrder(req.SymbolID, req.OrderID, side, req.Price, req.Quantity, req.Visible)
		} else {
			order = matching.NewLimitOrder(req.SymbolID, req.OrderID, side, req.Price, req.Quantity)
		}
	case "market":
		order = matching.NewMarketOrder(req.SymbolID, req.OrderID, side, req.Quantity)
		if req.Slippage != 0 {
			order.Slippage = req.Slippage
		}
	case "stop":
		order = matching.NewStopOrder(req.SymbolID, req.OrderID, side, req.StopPrice, req.Quantity)
	case "stop-limit":
		order = matching.NewStopLimitOrder(req.SymbolID, req.OrderID, side, req.StopPrice, req.Price, req.Quantity)
	case "trailing-stop":
		order = matching.NewTrailingStopOrder(req.SymbolID, req.OrderID, side, req.StopPrice, req.Quantity, req.Distance)
	case "trailing-stop-limit":
		order = matching.NewTrailingStopLimitOrder(req.SymbolID, req.OrderID, side, req.StopPrice, req.Price, req.Quantity, req.Distance)
	default:
		return matching.Order{}, fmt.Errorf("invalid order type %q", req.Type)
	}

	switch req.TIF {
	case "", "GTC":
	case "IOC":
		order.TIF = matching.IOC
	case "FOK":
		order.TIF = matching.FOK
	case "AON":
		order.TIF = matching.AON
	default:
		return matching.Order{}, fmt.Errorf("invalid time in force %q", req.TIF)
	}
	return order, nil
}
