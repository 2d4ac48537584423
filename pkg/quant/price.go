// Package quant converts between the engine's integer venue units
// (ticks and lots) and human-readable decimal values. The engine never
// touches these: conversions happen only at display and feed edges.
package quant

import "github.com/shopspring/decimal"

// Scale describes one symbol's venue units: how many ticks make one
// currency unit and how many lots make one base unit.
type Scale struct {
	TickSize decimal.Decimal
	LotSize  decimal.Decimal
}

// NewScale builds a Scale from decimal strings, e.g. "0.01" ticks and
// "0.001" lots. Invalid strings fall back to unit scales.
func NewScale(tick, lot string) Scale {
	t, err := decimal.NewFromString(tick)
	if err != nil || t.IsZero() {
		t = decimal.NewFromInt(1)
	}
	l, err := decimal.NewFromString(lot)
	if err != nil || l.IsZero() {
		l = decimal.NewFromInt(1)
	}
	return Scale{TickSize: t, LotSize: l}
}

// Price renders a tick count as a decimal price string.
func (s Scale) Price(ticks uint64) string {
	return decimal.NewFromUint64(ticks).Mul(s.TickSize).String()
}

// Quantity renders a lot count as a decimal quantity string.
func (s Scale) Quantity(lots uint64) string {
	return decimal.NewFromUint64(lots).Mul(s.LotSize).String()
}

// Notional renders price times quantity in currency units.
func (s Scale) Notional(ticks, lots uint64) string {
	p := decimal.NewFromUint64(ticks).Mul(s.TickSize)
	q := decimal.NewFromUint64(lots).Mul(s.LotSize)
	return p.Mul(q).String()
}

// Ticks parses a decimal price string back into ticks, truncating
// toward zero.
func (s Scale) Ticks(price string) (uint64, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0, err
	}
	return uint64(d.Div(s.TickSize).IntPart()), nil
}
