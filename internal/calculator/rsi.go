package calculator

import (
	"errors"

	"github.com/guregu/null/v6"

	"DipWatch/internal/model"
)

// ErrInvalidPeriod is returned when a window or period is not positive.
var ErrInvalidPeriod = errors.New("period must be positive")

// DefaultRSIPeriod is the conventional RSI lookback.
const DefaultRSIPeriod = 14

// RSI computes the relative strength index of closes over the given period.
//
// Gains and losses are averaged with a plain trailing mean of the last
// `period` price changes (no Wilder or exponential smoothing). The first
// `period` entries are undefined. A window with no losses yields 100.
func RSI(closes []float64, period int) (model.Series, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := make(model.Series, len(closes))
	if len(closes) <= period {
		return out, nil
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	for i := period; i < len(closes); i++ {
		var sumGain, sumLoss float64
		for j := i - period + 1; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}
		avgGain := sumGain / float64(period)
		avgLoss := sumLoss / float64(period)
		out[i] = null.FloatFrom(rsiFromAverages(avgGain, avgLoss))
	}
	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// Latest returns the last defined value of a series.
func Latest(s model.Series) (float64, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Valid {
			return s[i].Float64, true
		}
	}
	return 0, false
}
