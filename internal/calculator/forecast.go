package calculator

import (
	"errors"
	"fmt"
	"time"

	"DipWatch/internal/model"
)

// MinForecastObservations is the smallest window a forecast line is fitted on.
const MinForecastObservations = 10

// ErrInsufficientData is returned when there are too few observations to fit a forecast.
var ErrInsufficientData = errors.New("insufficient data")

// LinearForecast fits an ordinary least squares line of close price against
// elapsed days over the last lookback observations and extrapolates it
// horizonDays calendar days past the last observation.
// A lookback <= 0 uses every observation.
func LinearForecast(times []time.Time, closes []float64, lookback, horizonDays int) (*model.Forecast, error) {
	if len(times) != len(closes) {
		return nil, fmt.Errorf("times and closes differ in length: %d vs %d", len(times), len(closes))
	}
	n := len(closes)
	start := 0
	if lookback > 0 && n > lookback {
		start = n - lookback
	}
	count := n - start
	if count < MinForecastObservations {
		return nil, ErrInsufficientData
	}

	origin := times[start]
	xs := make([]float64, count)
	var meanX, meanY float64
	for i := 0; i < count; i++ {
		xs[i] = elapsedDays(origin, times[start+i])
		meanX += xs[i]
		meanY += closes[start+i]
	}
	meanX /= float64(count)
	meanY /= float64(count)

	var sxx, sxy float64
	for i := 0; i < count; i++ {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (closes[start+i] - meanY)
	}
	if sxx == 0 {
		// every observation shares one timestamp
		return nil, ErrInsufficientData
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	f := &model.Forecast{
		Slope:     slope,
		Intercept: intercept,
		Lookback:  count,
		Origin:    origin,
	}
	last := times[n-1]
	for d := 1; d <= horizonDays; d++ {
		t := last.AddDate(0, 0, d)
		f.Points = append(f.Points, model.ForecastPoint{
			Time:  t,
			Price: intercept + slope*elapsedDays(origin, t),
		})
	}
	return f, nil
}

func elapsedDays(origin, t time.Time) float64 {
	return t.Sub(origin).Hours() / 24
}
