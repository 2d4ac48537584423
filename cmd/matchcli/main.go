// Command matchcli is an interactive text driver over the matching
// engine: commands in, market events out. It exists for exploration
// and scripted scenario files, not production order flow.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"tycho/domain/matching"
	"tycho/pkg/quant"
)

// printHandler writes every market event to stdout.
type printHandler struct {
	scale quant.Scale
}

func (h *printHandler) px(p uint64) string { return h.scale.Price(p) }

func (h *printHandler) OnAddSymbol(s matching.Symbol) {
	fmt.Printf("Add symbol: %d %s\n", s.ID, s.Name)
}

func (h *printHandler) OnDeleteSymbol(s matching.Symbol) {
	fmt.Printf("Delete symbol: %d %s\n", s.ID, s.Name)
}

func (h *printHandler) OnAddOrderBook(b *matching.OrderBook) {
	fmt.Printf("Add order book: %d\n", b.Symbol().ID)
}

func (h *printHandler) OnUpdateOrderBook(b *matching.OrderBook, top bool) {
	if top {
		fmt.Printf("Update order book: %d - Top of the book!\n", b.Symbol().ID)
	} else {
		fmt.Printf("Update order book: %d\n", b.Symbol().ID)
	}
}

func (h *printHandler) OnDeleteOrderBook(b *matching.OrderBook) {
	fmt.Printf("Delete order book: %d\n", b.Symbol().ID)
}

func (h *printHandler) level(kind string, lvl *matching.PriceLevel, top bool) {
	suffix := ""
	if top {
		suffix = " - Top of the book!"
	}
	fmt.Printf("%s level: %s %s x %d%s\n", kind, lvl.Side, h.px(lvl.Price), lvl.TotalVolume(), suffix)
}

func (h *printHandler) OnAddLevel(_ *matching.OrderBook, lvl *matching.PriceLevel, top bool) {
	h.level("Add", lvl, top)
}

func (h *printHandler) OnUpdateLevel(_ *matching.OrderBook, lvl *matching.PriceLevel, top bool) {
	h.level("Update", lvl, top)
}

func (h *printHandler) OnDeleteLevel(_ *matching.OrderBook, lvl *matching.PriceLevel, top bool) {
	h.level("Delete", lvl, top)
}

func (h *printHandler) order(o *matching.Order) string {
	return fmt.Sprintf("#%d %s %s %s x %d", o.ID, o.Type, o.Side, h.px(o.Price), o.LeavesQuantity)
}

func (h *printHandler) OnAddOrder(o *matching.Order) {
	fmt.Printf("Add order: %s\n", h.order(o))
}

func (h *printHandler) OnUpdateOrder(o *matching.Order) {
	fmt.Printf("Update order: %s\n", h.order(o))
}

func (h *printHandler) OnDeleteOrder(o *matching.Order) {
	fmt.Printf("Delete order: %s\n", h.order(o))
}

func (h *printHandler) OnExecuteOrder(o *matching.Order, price, qty uint64) {
	fmt.Printf("Execute order: #%d with price %s and quantity %d\n", o.ID, h.px(price), qty)
}

// command table: pattern plus action over the captured integer groups.
type command struct {
	re  *regexp.Regexp
	run func(e *matching.Engine, args []string) error
}

func side(s string) matching.Side {
	if s == "buy" {
		return matching.Buy
	}
	return matching.Sell
}

func u64(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

func i64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

var commands = []command{
	{regexp.MustCompile(`^add symbol (\d+) (.+)$`), func(e *matching.Engine, a []string) error {
		return e.AddSymbol(matching.NewSymbol(uint32(u64(a[1])), a[2]))
	}},
	{regexp.MustCompile(`^delete symbol (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.DeleteSymbol(uint32(u64(a[1])))
	}},
	{regexp.MustCompile(`^add book (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.AddOrderBook(matching.NewSymbol(uint32(u64(a[1])), ""))
	}},
	{regexp.MustCompile(`^delete book (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.DeleteOrderBook(uint32(u64(a[1])))
	}},
	{regexp.MustCompile(`^add market (buy|sell) (\d+) (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.AddOrder(matching.NewMarketOrder(uint32(u64(a[3])), u64(a[2]), side(a[1]), u64(a[4])))
	}},
	{regexp.MustCompile(`^add slippage market (buy|sell) (\d+) (\d+) (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		o := matching.NewMarketOrder(uint32(u64(a[3])), u64(a[2]), side(a[1]), u64(a[4]))
		o.Slippage = u64(a[5])
		return e.AddOrder(o)
	}},
	{regexp.MustCompile(`^add limit (buy|sell) (\d+) (\d+) (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.AddOrder(matching.NewLimitOrder(uint32(u64(a[3])), u64(a[2]), side(a[1]), u64(a[4]), u64(a[5])))
	}},
	{regexp.MustCompile(`^add aon limit (buy|sell) (\d+) (\d+) (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		o := matching.NewLimitOrder(uint32(u64(a[3])), u64(a[2]), side(a[1]), u64(a[4]), u64(a[5]))
		o.TIF = matching.AON
		return e.AddOrder(o)
	}},
	{regexp.MustCompile(`^add ioc limit (buy|sell) (\d+) (\d+) (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		o := matching.NewLimitOrder(uint32(u64(a[3])), u64(a[2]), side(a[1]), u64(a[4]), u64(a[5]))
		o.TIF = matching.IOC
		return e.AddOrder(o)
	}},
	{regexp.MustCompile(`^add fok limit (buy|sell) (\d+) (\d+) (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		o := matching.NewLimitOrder(uint32(u64(a[3])), u64(a[2]), side(a[1]), u64(a[4]), u64(a[5]))
		o.TIF = matching.FOK
		return e.AddOrder(o)
	}},
	{regexp.MustCompile(`^add iceberg limit (buy|sell) (\d+) (\d+) (\d+) (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.AddOrder(matching.NewIcebergLimitOrder(
			uint32(u64(a[3])), u64(a[2]), side(a[1]), u64(a[4]), u64(a[5]), u64(a[6])))
	}},
	{regexp.MustCompile(`^add stop (buy|sell) (\d+) (\d+) (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.AddOrder(matching.NewStopOrder(uint32(u64(a[3])), u64(a[2]), side(a[1]), u64(a[4]), u64(a[5])))
	}},
	{regexp.MustCompile(`^add stop limit (buy|sell) (\d+) (\d+) (\d+) (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.AddOrder(matching.NewStopLimitOrder(
			uint32(u64(a[3])), u64(a[2]), side(a[1]), u64(a[4]), u64(a[5]), u64(a[6])))
	}},
	{regexp.MustCompile(`^add trailing stop (buy|sell) (\d+) (\d+) (\d+) (-?\d+)$`), func(e *matching.Engine, a []string) error {
		return e.AddOrder(matching.NewTrailingStopOrder(
			uint32(u64(a[3])), u64(a[2]), side(a[1]), 0, u64(a[4]), i64(a[5])))
	}},
	{regexp.MustCompile(`^reduce limit (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.ReduceOrder(u64(a[1]), u64(a[2]))
	}},
	{regexp.MustCompile(`^modify limit (\d+) (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.ModifyOrder(u64(a[1]), u64(a[2]), u64(a[3]))
	}},
	{regexp.MustCompile(`^replace limit (\d+) (\d+) (\d+) (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.ReplaceOrder(u64(a[1]), u64(a[2]), u64(a[3]), u64(a[4]))
	}},
	{regexp.MustCompile(`^delete order (\d+)$`), func(e *matching.Engine, a []string) error {
		return e.DeleteOrder(u64(a[1]))
	}},
}

const helpText = `Supported commands:
add symbol {Id} {Name}
delete symbol {Id}
add book {Id}
delete book {Id}
add market {Side} {Id} {SymbolId} {Quantity}
add slippage market {Side} {Id} {SymbolId} {Quantity} {Slippage}
add limit {Side} {Id} {SymbolId} {Price} {Quantity}
add aon limit {Side} {Id} {SymbolId} {Price} {Quantity}
add ioc limit {Side} {Id} {SymbolId} {Price} {Quantity}
add fok limit {Side} {Id} {SymbolId} {Price} {Quantity}
add iceberg limit {Side} {Id} {SymbolId} {Price} {Quantity} {Visible}
add stop {Side} {Id} {SymbolId} {StopPrice} {Quantity}
add stop limit {Side} {Id} {SymbolId} {StopPrice} {Price} {Quantity}
add trailing stop {Side} {Id} {SymbolId} {Quantity} {Distance}
reduce limit {Id} {Quantity}
modify limit {Id} {NewPrice} {NewQuantity}
replace limit {Id} {NewId} {NewPrice} {NewQuantity}
delete order {Id}
enable matching / disable matching
exit | quit`

func main() {
	tick := flag.String("tick", "1", "tick size used to render prices")
	flag.Parse()

	handler := &printHandler{scale: quant.NewScale(*tick, "1")}
	engine := matching.NewEngine(handler)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case line == "exit" || line == "quit":
			return
		case line == "help":
			fmt.Println(helpText)
			continue
		case line == "enable matching":
			engine.EnableMatching()
			continue
		case line == "disable matching":
			engine.DisableMatching()
			continue
		}

		matched := false
		for _, cmd := range commands {
			if m := cmd.re.FindStringSubmatch(line); m != nil {
				matched = true
				if err := cmd.run(engine, m); err != nil {
					fmt.Fprintf(os.Stderr, "Failed %q: %v\n", line, err)
				}
				break
			}
		}
		if !matched {
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", line)
		}
	}
}
