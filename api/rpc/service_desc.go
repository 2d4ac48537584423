package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// serviceDesc declares the RPC surface by hand, the JSON codec doing
// the framing. Method handlers all follow the same unary shape.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: "tycho.MarketService",
	HandlerType: (*marketServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddSymbol", Handler: addSymbolHandler},
		{MethodName: "DeleteSymbol", Handler: deleteSymbolHandler},
		{MethodName: "AddOrderBook", Handler: addOrderBookHandler},
		{MethodName: "DeleteOrderBook", Handler: deleteOrderBookHandler},
		{MethodName: "SubmitOrder", Handler: submitOrderHandler},
		{MethodName: "ReduceOrder", Handler: reduceOrderHandler},
		{MethodName: "ModifyOrder", Handler: modifyOrderHandler},
		{MethodName: "ReplaceOrder", Handler: replaceOrderHandler},
		{MethodName: "DeleteOrder", Handler: deleteOrderHandler},
		{MethodName: "GetSnapshot", Handler: getSnapshotHandler},
		{MethodName: "GetTopOfBook", Handler: getTopOfBookHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tycho/api/rpc",
}

// marketServiceServer pins the handler type in the ServiceDesc.
type marketServiceServer interface {
	AddSymbol(context.Context, *AddSymbolRequest) (*StatusResponse, error)
	DeleteSymbol(context.Context, *SymbolRequest) (*StatusResponse, error)
	AddOrderBook(context.Context, *SymbolRequest) (*StatusResponse, error)
	DeleteOrderBook(context.Context, *SymbolRequest) (*StatusResponse, error)
	SubmitOrder(context.Context, *SubmitOrderRequest) (*StatusResponse, error)
	ReduceOrder(context.Context, *ReduceOrderRequest) (*StatusResponse, error)
	ModifyOrder(context.Context, *ModifyOrderRequest) (*StatusResponse, error)
	ReplaceOrder(context.Context, *ReplaceOrderRequest) (*StatusResponse, error)
	DeleteOrder(context.Context, *OrderRequest) (*StatusResponse, error)
	GetSnapshot(context.Context, *SnapshotRequest) (*SnapshotResponse, error)
	GetTopOfBook(context.Context, *TopOfBookRequest) (*TopOfBookResponse, error)
}

func unary[Req any, Resp any](
	method string,
	call func(context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tycho.MarketService/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func addSymbolHandler(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return unary("AddSymbol", srv.(*Server).AddSymbol)(srv, ctx, dec, ic)
}

func deleteSymbolHandler(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return unary("DeleteSymbol", srv.(*Server).DeleteSymbol)(srv, ctx, dec, ic)
}

func addOrderBookHandler(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return unary("AddOrderBook", srv.(*Server).AddOrderBook)(srv, ctx, dec, ic)
}

func deleteOrderBookHandler(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return unary("DeleteOrderBook", srv.(*Server).DeleteOrderBook)(srv, ctx, dec, ic)
}

func submitOrderHandler(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return unary("SubmitOrder", srv.(*Server).SubmitOrder)(srv, ctx, dec, ic)
}

func reduceOrderHandler(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return unary("ReduceOrder", srv.(*Server).ReduceOrder)(srv, ctx, dec, ic)
}

func modifyOrderHandler(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return unary("ModifyOrder", srv.(*Server).ModifyOrder)(srv, ctx, dec, ic)
}

func replaceOrderHandler(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return unary("ReplaceOrder", srv.(*Server).ReplaceOrder)(srv, ctx, dec, ic)
}

func deleteOrderHandler(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return unary("DeleteOrder", srv.(*Server).DeleteOrder)(srv, ctx, dec, ic)
}

func getSnapshotHandler(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return unary("GetSnapshot", srv.(*Server).GetSnapshot)(srv, ctx, dec, ic)
}

func getTopOfBookHandler(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
	return unary("GetTopOfBook", srv.(*Server).GetTopOfBook)(srv, ctx, dec, ic)
}
