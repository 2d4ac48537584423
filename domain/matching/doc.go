// Package matching implements the in-memory limit order book matching
// engine. It maintains one order book per symbol, each built from
// red-black trees of price levels with intrusive FIFO order queues,
// plus stop and trailing-stop ladders, and matches incoming orders in
// strict price-time priority.
//
// The engine is a single-writer deterministic state machine: every
// command runs to completion before the next one, and all market
// events produced by a command are delivered synchronously to the
// injected Handler in a total order.
package matching
