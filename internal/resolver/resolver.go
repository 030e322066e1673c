// Package resolver turns free-text company names into provider ticker symbols.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrNotRecognized means the input matched neither a known name nor a live symbol.
var ErrNotRecognized = errors.New("company not recognized")

// Prober checks whether the data provider knows a symbol.
type Prober interface {
	Probe(ctx context.Context, symbol string) (int, error)
}

// DefaultNames maps common company names to ticker symbols.
var DefaultNames = map[string]string{
	"saab":      "SAAB-B.ST",
	"evo":       "EVO.ST",
	"evolution": "EVO.ST",
	"betsson":   "BETS-B.ST",
	"kindred":   "KIND-SDB.ST",
	"volvo":     "VOLV-B.ST",
	"tesla":     "TSLA",
	"apple":     "AAPL",
}

// Resolver maps names through a fixed table and falls back to a live probe.
type Resolver struct {
	names        map[string]string
	prober       Prober
	probeTimeout time.Duration
}

// New creates a Resolver over DefaultNames plus extra aliases.
// Alias keys are lower-cased; an alias overrides a default entry of the same name.
func New(prober Prober, aliases map[string]string, probeTimeout time.Duration) *Resolver {
	names := make(map[string]string, len(DefaultNames)+len(aliases))
	for k, v := range DefaultNames {
		names[k] = v
	}
	for k, v := range aliases {
		k = Normalize(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		names[k] = v
	}
	return &Resolver{names: names, prober: prober, probeTimeout: probeTimeout}
}

// Normalize trims and lower-cases user input.
func Normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Lookup consults the name table only.
func (r *Resolver) Lookup(input string) (string, bool) {
	sym, ok := r.names[Normalize(input)]
	return sym, ok
}

// Resolve returns the ticker symbol for input or ErrNotRecognized.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	key := Normalize(input)
	if key == "" {
		return "", ErrNotRecognized
	}
	if sym, ok := r.names[key]; ok {
		return sym, nil
	}

	candidate := strings.ToUpper(key)
	if r.prober == nil {
		return "", ErrNotRecognized
	}
	if r.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.probeTimeout)
		defer cancel()
	}
	n, err := r.prober.Probe(ctx, candidate)
	if err != nil {
		log.Printf("[WARN] probe %s failed: %v", candidate, err)
		return "", fmt.Errorf("%w: %s", ErrNotRecognized, candidate)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotRecognized, candidate)
	}
	return candidate, nil
}
