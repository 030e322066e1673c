package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// Series is a derived value per bar, aligned with the PriceSeries it was computed from.
// Invalid entries are undefined (not enough history yet), never zero.
type Series []null.Float

// Defined counts the entries that carry a value.
func (s Series) Defined() int {
	n := 0
	for _, v := range s {
		if v.Valid {
			n++
		}
	}
	return n
}

// ForecastPoint is one extrapolated price.
type ForecastPoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// Forecast is a least-squares line of close price against elapsed days.
type Forecast struct {
	Slope     float64         `json:"slope_per_day"`
	Intercept float64         `json:"intercept"`
	Lookback  int             `json:"lookback"`
	Origin    time.Time       `json:"origin"`
	Points    []ForecastPoint `json:"points"`
}

// RSIZone classifies the latest RSI reading.
type RSIZone string

const (
	ZoneOversold   RSIZone = "oversold"
	ZoneOverbought RSIZone = "overbought"
	ZoneNeutral    RSIZone = "neutral"
	ZoneUnknown    RSIZone = "unknown"
)

// Trend classifies the close against the short and long moving averages.
type Trend string

const (
	TrendBullish  Trend = "bullish"
	TrendBearish  Trend = "bearish"
	TrendSideways Trend = "sideways"
	TrendUnknown  Trend = "unknown"
)

// Summary holds the headline values shown above the chart.
type Summary struct {
	LatestTime    time.Time  `json:"latest_time"`
	LatestClose   null.Float `json:"latest_close"`
	LatestRSI     null.Float `json:"latest_rsi"`
	Zone          RSIZone    `json:"zone"`
	Trend         Trend      `json:"trend"`
	PeriodHigh    float64    `json:"period_high"`
	PeriodLow     float64    `json:"period_low"`
	RangePosition null.Float `json:"range_position"` // 0 at PeriodLow, 1 at PeriodHigh
	Currency      string     `json:"currency"`
}
