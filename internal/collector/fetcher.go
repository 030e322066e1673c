package collector

import (
	"context"
	"sort"

	"DipWatch/internal/model"
)

// Fetcher defines the interface for fetching market data.
// An unknown symbol or an empty period yields an empty series, not an error.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol, rng, interval string) (*model.PriceSeries, error)
	// Probe fetches the smallest possible range and reports how many bars came back.
	Probe(ctx context.Context, symbol string) (int, error)
	Name() string
}

// normalizeBars sorts bars chronologically and drops repeated timestamps, keeping the latest bar.
func normalizeBars(bars []model.OHLCV) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
