package quant

import "testing"

func TestScaleRendering(t *testing.T) {
	s := NewScale("0.01", "0.001")

	if got := s.Price(12345); got != "123.45" {
		t.Errorf("Price: got %s", got)
	}
	if got := s.Quantity(1500); got != "1.5" {
		t.Errorf("Quantity: got %s", got)
	}
	if got := s.Notional(12345, 1500); got != "185.175" {
		t.Errorf("Notional: got %s", got)
	}
}

func TestScaleTicksRoundTrip(t *testing.T) {
	s := NewScale("0.01", "1")
	ticks, err := s.Ticks("123.45")
	if err != nil {
		t.Fatalf("Ticks: %v", err)
	}
	if ticks != 12345 {
		t.Errorf("got %d want 12345", ticks)
	}
}

func TestScaleFallsBackToUnit(t *testing.T) {
	s := NewScale("bogus", "0")
	if got := s.Price(42); got != "42" {
		t.Errorf("got %s want 42", got)
	}
	if got := s.Quantity(7); got != "7" {
		t.Errorf("got %s want 7", got)
	}
}
