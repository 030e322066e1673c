package calculator

import (
	"github.com/guregu/null/v6"

	"DipWatch/internal/model"
)

// SMA computes the trailing simple moving average over window values.
// The first window-1 entries are undefined.
func SMA(values []float64, window int) (model.Series, error) {
	if window <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := make(model.Series, len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = null.FloatFrom(sum / float64(window))
	}
	return out, nil
}
