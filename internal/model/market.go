package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the bars of one symbol, ascending by time with no duplicate timestamps.
type PriceSeries struct {
	Symbol    string    `json:"symbol"`
	Interval  string    `json:"interval"`
	Currency  string    `json:"currency,omitempty"`
	Bars      []OHLCV   `json:"bars"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Closes returns the close prices in bar order.
func (p *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Times returns the bar timestamps in order.
func (p *PriceSeries) Times() []time.Time {
	times := make([]time.Time, len(p.Bars))
	for i, b := range p.Bars {
		times[i] = b.Time
	}
	return times
}

// Len returns the number of bars.
func (p *PriceSeries) Len() int { return len(p.Bars) }
