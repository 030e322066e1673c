package analysis

import (
	"errors"
	"testing"
	"time"

	"DipWatch/internal/model"
)

func seriesFromCloses(closes []float64) *model.PriceSeries {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c - 0.5, High: c + 1, Low: c - 1, Close: c}
	}
	return &model.PriceSeries{Symbol: "TEST", Interval: "1d", Bars: bars}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.SMAWindows = []int{3, 5}
	opts.RSIPeriod = 14
	opts.MinRows = 15
	opts.ForecastLookback = 0
	opts.ForecastHorizon = 2
	return opts
}

func TestCompute_FifteenPointScenario(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 15, 14, 16, 18, 17, 19, 21, 20, 22, 24, 23}
	a, err := Compute(seriesFromCloses(closes), testOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.RSI.Defined() != 1 || !a.RSI[14].Valid {
		t.Fatalf("expected RSI defined only at the last index, got %d defined", a.RSI.Defined())
	}
	if a.Summary.Zone != model.ZoneOverbought {
		t.Errorf("expected overbought zone for RSI %.2f, got %s", a.RSI[14].Float64, a.Summary.Zone)
	}
	// close 23 equals SMA3, so the close is not above the short average
	if a.Summary.Trend != model.TrendSideways {
		t.Errorf("expected sideways trend, got %s", a.Summary.Trend)
	}
	if a.Forecast == nil {
		t.Fatalf("expected forecast, note=%q", a.ForecastNote)
	}
	if a.Forecast.Slope <= 0 {
		t.Errorf("expected rising forecast, got slope %.4f", a.Forecast.Slope)
	}
	if len(a.Forecast.Points) != 2 {
		t.Errorf("expected 2 forecast points, got %d", len(a.Forecast.Points))
	}
	if a.Summary.PeriodHigh != 25 || a.Summary.PeriodLow != 9 {
		t.Errorf("unexpected range %.0f/%.0f", a.Summary.PeriodHigh, a.Summary.PeriodLow)
	}
	// close 23 in [9, 25]
	if !a.Summary.RangePosition.Valid || a.Summary.RangePosition.Float64 != 0.875 {
		t.Errorf("expected range position 0.875, got %v", a.Summary.RangePosition)
	}
	if a.Summary.Currency != "SEK" {
		t.Errorf("expected fallback currency SEK, got %q", a.Summary.Currency)
	}
	rows := a.CompleteRows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 complete row, got %d", len(rows))
	}
	if rows[0].Close.String() != "23" {
		t.Errorf("expected close 23, got %s", rows[0].Close.String())
	}
}

func TestCompute_EmptySeries(t *testing.T) {
	if _, err := Compute(&model.PriceSeries{}, testOptions()); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if _, err := Compute(nil, testOptions()); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for nil series, got %v", err)
	}
}

func TestCompute_BelowMinRows(t *testing.T) {
	_, err := Compute(seriesFromCloses([]float64{1, 2, 3, 4, 5}), testOptions())
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if !errors.Is(err, ErrNoData) {
		t.Error("insufficient data should read as no data")
	}
}

func TestCompute_ForecastSkippedOnShortLookback(t *testing.T) {
	opts := testOptions()
	opts.ForecastLookback = 5
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(50 + i%4)
	}
	a, err := Compute(seriesFromCloses(closes), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Forecast != nil {
		t.Error("expected no forecast with a 5-bar lookback")
	}
	if a.ForecastNote != "insufficient data" {
		t.Errorf("expected insufficient data note, got %q", a.ForecastNote)
	}
}

func TestCompute_ForecastDisabled(t *testing.T) {
	opts := testOptions()
	opts.Forecast = false
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(100 - i)
	}
	a, err := Compute(seriesFromCloses(closes), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Forecast != nil || a.ForecastNote != "" {
		t.Error("expected forecast untouched when disabled")
	}
	if a.Summary.Zone != model.ZoneOversold {
		t.Errorf("expected oversold for falling series, got %s", a.Summary.Zone)
	}
	if a.Summary.Trend != model.TrendBearish {
		t.Errorf("expected bearish trend, got %s", a.Summary.Trend)
	}
}

func TestZone(t *testing.T) {
	tests := []struct {
		rsi  float64
		want model.RSIZone
	}{
		{0, model.ZoneOversold},
		{29.99, model.ZoneOversold},
		{30, model.ZoneNeutral},
		{70, model.ZoneNeutral},
		{70.01, model.ZoneOverbought},
		{100, model.ZoneOverbought},
	}
	for _, tt := range tests {
		if got := Zone(tt.rsi); got != tt.want {
			t.Errorf("Zone(%.2f) = %s, want %s", tt.rsi, got, tt.want)
		}
	}
}
