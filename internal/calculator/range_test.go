package calculator

import (
	"testing"

	"DipWatch/internal/model"
)

func TestPriceRange(t *testing.T) {
	bars := []model.OHLCV{
		{High: 12, Low: 8},
		{High: 30, Low: 1},
		{High: 15, Low: 9},
		{High: 14, Low: 10},
	}
	tests := []struct {
		lookback  int
		high, low float64
	}{
		{0, 30, 1},
		{2, 15, 9},
		{3, 30, 1},
		{10, 30, 1},
	}
	for _, tt := range tests {
		h, l, err := PriceRange(bars, tt.lookback)
		if err != nil {
			t.Fatalf("lookback %d: unexpected error: %v", tt.lookback, err)
		}
		if h != tt.high || l != tt.low {
			t.Errorf("lookback %d: expected %.0f/%.0f, got %.0f/%.0f", tt.lookback, tt.high, tt.low, h, l)
		}
	}
	if _, _, err := PriceRange(nil, 5); err == nil {
		t.Error("expected error for empty bars")
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		current, high, low, want float64
	}{
		{15, 20, 10, 0.5},
		{25, 20, 10, 1},
		{5, 20, 10, 0},
		{10, 10, 10, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.current, tt.high, tt.low)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("RangePosition(%.0f, %.0f, %.0f) = %.2f, want %.2f", tt.current, tt.high, tt.low, got, tt.want)
		}
	}
	if _, err := RangePosition(1, 5, 10); err == nil {
		t.Error("expected error when high < low")
	}
}
