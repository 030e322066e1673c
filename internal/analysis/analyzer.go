// Package analysis runs one resolve, fetch and compute pass per user interaction.
package analysis

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"DipWatch/internal/collector"
	"DipWatch/internal/markethours"
	"DipWatch/internal/metrics"
	"DipWatch/internal/model"
	"DipWatch/internal/recorder"
	"DipWatch/internal/resolver"
)

// Analyzer wires the resolver, the data provider and the indicator engine.
// A pass blocks until the download returns or FetchTimeout elapses.
type Analyzer struct {
	Fetcher  collector.Fetcher
	Resolver *resolver.Resolver
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Opts     Options
	Now      func() time.Time
}

// NewAnalyzer creates an Analyzer with a noop recorder and fresh metrics.
func NewAnalyzer(fetcher collector.Fetcher, res *resolver.Resolver, opts Options) *Analyzer {
	return &Analyzer{
		Fetcher:  fetcher,
		Resolver: res,
		Recorder: recorder.NewNoopRecorder(),
		Metrics:  metrics.NewMetrics(),
		Opts:     opts,
		Now:      time.Now,
	}
}

// Resolve maps input to a ticker symbol, counting how it was resolved.
func (a *Analyzer) Resolve(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", &PassError{Input: input, Err: ErrEmptyInput}
	}
	if sym, ok := a.Resolver.Lookup(input); ok {
		a.Metrics.ProbesTotal.WithLabelValues("hit").Inc()
		return sym, nil
	}
	sym, err := a.Resolver.Resolve(ctx, input)
	if err != nil {
		a.Metrics.ProbesTotal.WithLabelValues("probe_miss").Inc()
		return "", &PassError{Input: input, Err: err}
	}
	a.Metrics.ProbesTotal.WithLabelValues("probe_ok").Inc()
	return sym, nil
}

// Run executes one pass for input. source tags the audit log ("http", "telegram", ...).
func (a *Analyzer) Run(ctx context.Context, source, input string) (*model.Analysis, error) {
	start := time.Now()
	res, err := a.run(ctx, input)
	return a.finish(source, input, start, res, err)
}

// RunSymbol executes a pass for an already resolved symbol, as auto-refresh does.
func (a *Analyzer) RunSymbol(ctx context.Context, source, input, symbol string) (*model.Analysis, error) {
	start := time.Now()
	res, err := a.runSymbol(ctx, input, symbol)
	return a.finish(source, input, start, res, err)
}

func (a *Analyzer) finish(source, input string, start time.Time, res *model.Analysis, err error) (*model.Analysis, error) {
	a.Metrics.PassDuration.Observe(time.Since(start).Seconds())
	a.Metrics.PassesTotal.WithLabelValues(Outcome(err)).Inc()

	if err != nil {
		var pe *PassError
		evt := &recorder.FailureEvent{Source: source, Input: input, Outcome: Outcome(err), Reason: err.Error()}
		if errors.As(err, &pe) {
			evt.Symbol = pe.Symbol
		}
		if rerr := a.Recorder.RecordFailure(evt); rerr != nil {
			log.Printf("[ERROR] record failure: %v", rerr)
		}
		return nil, err
	}

	if res.Summary.LatestRSI.Valid {
		a.Metrics.LastRSI.WithLabelValues(res.Symbol).Set(res.Summary.LatestRSI.Float64)
	}
	evt := &recorder.AnalysisEvent{
		Time:        res.ComputedAt,
		Source:      source,
		Input:       input,
		Symbol:      res.Symbol,
		Interval:    res.Prices.Interval,
		Bars:        res.Prices.Len(),
		LatestClose: res.Summary.LatestClose,
		LatestRSI:   res.Summary.LatestRSI,
		Zone:        string(res.Summary.Zone),
		Trend:       string(res.Summary.Trend),
	}
	if res.Forecast != nil {
		evt.Slope = null.FloatFrom(res.Forecast.Slope)
	}
	if rerr := a.Recorder.RecordAnalysis(evt); rerr != nil {
		log.Printf("[ERROR] record analysis: %v", rerr)
	}
	return res, nil
}

func (a *Analyzer) run(ctx context.Context, input string) (*model.Analysis, error) {
	symbol, err := a.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	return a.runSymbol(ctx, input, symbol)
}

func (a *Analyzer) runSymbol(ctx context.Context, input, symbol string) (*model.Analysis, error) {
	series, err := a.fetch(ctx, symbol)
	if err != nil {
		return nil, &PassError{Input: input, Symbol: symbol, Err: err}
	}

	res, err := Compute(series, a.Opts)
	if err != nil {
		return nil, &PassError{Input: input, Symbol: symbol, Err: err}
	}
	res.Input = strings.TrimSpace(input)
	res.ComputedAt = a.now()
	res.MarketOpen = markethours.ForSymbol(symbol).IsOpen(res.ComputedAt)
	return res, nil
}

// fetch downloads bars; provider faults and empty results both become ErrNoData.
func (a *Analyzer) fetch(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	if a.Opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Opts.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	series, err := a.Fetcher.FetchBars(ctx, symbol, a.Opts.Range, a.Opts.Interval)
	a.Metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Printf("[WARN] fetch %s from %s failed: %v", symbol, a.Fetcher.Name(), err)
		return nil, ErrNoData
	}
	if series == nil || series.Len() == 0 {
		return nil, ErrNoData
	}
	return series, nil
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
