package calculator

import (
	"errors"
	"math"

	"DipWatch/internal/model"
)

// PriceRange scans the most recent lookback bars and returns the high and low.
// A lookback <= 0 scans every bar.
func PriceRange(bars []model.OHLCV, lookback int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	n := len(bars)
	start := 0
	if lookback > 0 && n > lookback {
		start = n - lookback
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// RangePosition places current within [low, high] as a fraction, clamped to 0..1.
// A flat range puts every price in the middle.
func RangePosition(current, high, low float64) (float64, error) {
	switch {
	case high < low:
		return 0, errors.New("high must be >= low")
	case high == low:
		return 0.5, nil
	}
	return math.Max(0, math.Min(1, (current-low)/(high-low))), nil
}
