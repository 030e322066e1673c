package analysis

import (
	"errors"
	"fmt"
	"strings"

	"DipWatch/internal/metrics"
	"DipWatch/internal/resolver"
)

var (
	// ErrEmptyInput means the user submitted nothing to look up.
	ErrEmptyInput = errors.New("empty input")
	// ErrNoData covers empty downloads, provider faults and timeouts.
	ErrNoData = errors.New("no data")
	// ErrInsufficientData means fewer bars came back than the indicators need.
	ErrInsufficientData = fmt.Errorf("%w: insufficient history", ErrNoData)
)

// PassError carries the input and resolved symbol of a failed pass.
type PassError struct {
	Input  string
	Symbol string
	Err    error
}

func (e *PassError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s (%s): %v", e.Input, e.Symbol, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Input, e.Err)
}

func (e *PassError) Unwrap() error { return e.Err }

// Outcome maps a pass error to its metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrEmptyInput):
		return metrics.OutcomeEmptyInput
	case errors.Is(err, resolver.ErrNotRecognized):
		return metrics.OutcomeNotRecognized
	default:
		return metrics.OutcomeNoData
	}
}

// UserMessage renders a pass error as the text shown to the user.
func UserMessage(err error) string {
	var pe *PassError
	input, symbol := "", ""
	if errors.As(err, &pe) {
		input, symbol = strings.TrimSpace(pe.Input), pe.Symbol
	}
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "Enter a company name or ticker (e.g. 'saab', 'tesla', 'AAPL') to see the analysis."
	case errors.Is(err, resolver.ErrNotRecognized):
		return "Could not find a valid ticker for what you typed."
	case errors.Is(err, ErrNoData):
		if symbol != "" {
			return fmt.Sprintf("No data found for %s (%s).", strings.ToUpper(input), symbol)
		}
		return "No data found."
	default:
		return "Something went wrong, please try again."
	}
}
