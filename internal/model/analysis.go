package model

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// Analysis is the result of one resolve/fetch/compute pass.
type Analysis struct {
	Input        string         `json:"input"`
	Symbol       string         `json:"symbol"`
	Range        string         `json:"range"`
	Prices       *PriceSeries   `json:"prices"`
	RSIPeriod    int            `json:"rsi_period"`
	RSI          Series         `json:"rsi"`
	SMAWindows   []int          `json:"sma_windows"`
	SMA          map[int]Series `json:"sma"`
	Forecast     *Forecast      `json:"forecast,omitempty"`
	ForecastNote string         `json:"forecast_note,omitempty"`
	Summary      Summary        `json:"summary"`
	MarketOpen   bool           `json:"market_open"`
	ComputedAt   time.Time      `json:"computed_at"`
}

// Row is one table line: a bar's open/close with the indicators at that bar.
type Row struct {
	Time  time.Time          `json:"time"`
	Open  decimal.Decimal    `json:"open"`
	Close decimal.Decimal    `json:"close"`
	RSI   null.Float         `json:"rsi"`
	SMA   map[int]null.Float `json:"sma"`
}

// Complete reports whether every indicator is defined on this row.
func (r Row) Complete() bool {
	if !r.RSI.Valid {
		return false
	}
	for _, v := range r.SMA {
		if !v.Valid {
			return false
		}
	}
	return true
}

// Rows returns one row per bar in ascending time order, prices rounded to 2 decimals.
func (a *Analysis) Rows() []Row {
	if a.Prices == nil {
		return nil
	}
	rows := make([]Row, len(a.Prices.Bars))
	for i, b := range a.Prices.Bars {
		r := Row{
			Time:  b.Time,
			Open:  decimal.NewFromFloat(b.Open).Round(2),
			Close: decimal.NewFromFloat(b.Close).Round(2),
			SMA:   make(map[int]null.Float, len(a.SMAWindows)),
		}
		if i < len(a.RSI) {
			r.RSI = a.RSI[i]
		}
		for _, w := range a.SMAWindows {
			s := a.SMA[w]
			if i < len(s) {
				r.SMA[w] = s[i]
			} else {
				r.SMA[w] = null.Float{}
			}
		}
		rows[i] = r
	}
	return rows
}

// CompleteRows returns the rows where every indicator is defined, newest first.
func (a *Analysis) CompleteRows() []Row {
	var out []Row
	for _, r := range a.Rows() {
		if r.Complete() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out
}
