package analysis

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"DipWatch/internal/calculator"
	"DipWatch/internal/model"
)

// RSI zone thresholds.
const (
	OversoldBelow   = 30.0
	OverboughtAbove = 70.0
)

// Options controls what a pass downloads and derives.
type Options struct {
	Range            string
	Interval         string
	RSIPeriod        int
	SMAWindows       []int
	MinRows          int
	RangeBars        int
	Forecast         bool
	ForecastLookback int
	ForecastHorizon  int
	FetchTimeout     time.Duration
	Currency         string
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		Range:            "3mo",
		Interval:         "1d",
		RSIPeriod:        calculator.DefaultRSIPeriod,
		SMAWindows:       []int{20, 50},
		MinRows:          50,
		Forecast:         true,
		ForecastLookback: 30,
		ForecastHorizon:  7,
		FetchTimeout:     15 * time.Second,
		Currency:         "SEK",
	}
}

// Compute derives indicators, forecast and summary from a downloaded series.
// Series shorter than MinRows are rejected before anything is computed.
func Compute(series *model.PriceSeries, opts Options) (*model.Analysis, error) {
	if series == nil || series.Len() == 0 {
		return nil, ErrNoData
	}
	if series.Len() < opts.MinRows {
		return nil, fmt.Errorf("%w: %d bars, need %d", ErrInsufficientData, series.Len(), opts.MinRows)
	}

	closes := series.Closes()
	rsi, err := calculator.RSI(closes, opts.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}

	windows := append([]int(nil), opts.SMAWindows...)
	sort.Ints(windows)
	smas := make(map[int]model.Series, len(windows))
	for _, w := range windows {
		s, err := calculator.SMA(closes, w)
		if err != nil {
			return nil, fmt.Errorf("sma %d: %w", w, err)
		}
		smas[w] = s
	}

	a := &model.Analysis{
		Symbol:     series.Symbol,
		Range:      opts.Range,
		Prices:     series,
		RSIPeriod:  opts.RSIPeriod,
		RSI:        rsi,
		SMAWindows: windows,
		SMA:        smas,
	}

	if opts.Forecast {
		f, err := calculator.LinearForecast(series.Times(), closes, opts.ForecastLookback, opts.ForecastHorizon)
		switch {
		case errors.Is(err, calculator.ErrInsufficientData):
			a.ForecastNote = "insufficient data"
		case err != nil:
			a.ForecastNote = err.Error()
		default:
			a.Forecast = f
		}
	}

	a.Summary = summarize(series, rsi, windows, smas, opts)
	return a, nil
}

func summarize(series *model.PriceSeries, rsi model.Series, windows []int, smas map[int]model.Series, opts Options) model.Summary {
	last := series.Bars[series.Len()-1]
	s := model.Summary{
		LatestTime:  last.Time,
		LatestClose: null.FloatFrom(last.Close),
		Zone:        model.ZoneUnknown,
		Trend:       model.TrendUnknown,
		Currency:    series.Currency,
	}
	if s.Currency == "" {
		s.Currency = opts.Currency
	}

	if latest := rsi[len(rsi)-1]; latest.Valid {
		s.LatestRSI = latest
		s.Zone = Zone(latest.Float64)
	}
	s.Trend = trend(last.Close, windows, smas)

	if h, l, err := calculator.PriceRange(series.Bars, opts.RangeBars); err == nil {
		s.PeriodHigh, s.PeriodLow = h, l
		if pos, err := calculator.RangePosition(last.Close, h, l); err == nil {
			s.RangePosition = null.FloatFrom(pos)
		}
	}
	return s
}

// Zone classifies an RSI value.
func Zone(rsi float64) model.RSIZone {
	switch {
	case rsi < OversoldBelow:
		return model.ZoneOversold
	case rsi > OverboughtAbove:
		return model.ZoneOverbought
	default:
		return model.ZoneNeutral
	}
}

// trend compares the close with the shortest and longest moving averages.
func trend(close float64, windows []int, smas map[int]model.Series) model.Trend {
	if len(windows) == 0 {
		return model.TrendUnknown
	}
	short := smas[windows[0]]
	long := smas[windows[len(windows)-1]]
	if len(short) == 0 || !short[len(short)-1].Valid || !long[len(long)-1].Valid {
		return model.TrendUnknown
	}
	s, l := short[len(short)-1].Float64, long[len(long)-1].Float64
	switch {
	case close > s && s >= l:
		return model.TrendBullish
	case close < s && s <= l:
		return model.TrendBearish
	default:
		return model.TrendSideways
	}
}
