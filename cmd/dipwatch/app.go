package main

import (
	"fmt"
	"log"
	"strings"

	"DipWatch/internal/analysis"
	"DipWatch/internal/collector"
	"DipWatch/internal/config"
	"DipWatch/internal/recorder"
	"DipWatch/internal/resolver"
)

// app holds the components every command shares.
type app struct {
	cfg      *config.Config
	fetcher  collector.Fetcher
	recorder recorder.Recorder
	analyzer *analysis.Analyzer
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if provider != "" {
		cfg.DataSource.Provider = provider
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch strings.ToLower(cfg.DataSource.Provider) {
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.FetchTimeout)
	case "mock":
		return &collector.MockFetcher{}
	default:
		return collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.FetchTimeout)
	}
}

func analysisOptions(cfg *config.Config) analysis.Options {
	return analysis.Options{
		Range:            cfg.DataSource.Range,
		Interval:         cfg.DataSource.Interval,
		RSIPeriod:        cfg.Indicators.RSIPeriod,
		SMAWindows:       cfg.Indicators.SMAWindows,
		MinRows:          cfg.Indicators.MinRows,
		RangeBars:        cfg.Indicators.RangeBars,
		Forecast:         cfg.Forecast.Enabled,
		ForecastLookback: cfg.Forecast.Lookback,
		ForecastHorizon:  cfg.Forecast.HorizonDays,
		FetchTimeout:     cfg.DataSource.FetchTimeout,
		Currency:         cfg.Display.Currency,
	}
}

// newApp wires the analyzer. withRecorder opens the SQLite audit log, falling back to noop.
func newApp(withRecorder bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	fetcher := newFetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if withRecorder && cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		} else {
			rec = sr
		}
	}

	res := resolver.New(fetcher, cfg.Resolver.Aliases, cfg.DataSource.FetchTimeout)
	an := analysis.NewAnalyzer(fetcher, res, analysisOptions(cfg))
	an.Recorder = rec
	return &app{cfg: cfg, fetcher: fetcher, recorder: rec, analyzer: an}, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Printf("[WARN] close recorder: %v", err)
	}
}
