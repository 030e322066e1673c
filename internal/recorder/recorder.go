package recorder

import (
	"time"

	"github.com/guregu/null/v6"
)

// AnalysisEvent records one successful pass.
type AnalysisEvent struct {
	Time        time.Time  `json:"time"`
	Source      string     `json:"source"` // "http", "ws", "telegram", "refresh", "cli"
	Input       string     `json:"input"`
	Symbol      string     `json:"symbol"`
	Interval    string     `json:"interval"`
	Bars        int        `json:"bars"`
	LatestClose null.Float `json:"latest_close"`
	LatestRSI   null.Float `json:"latest_rsi"`
	Zone        string     `json:"zone"`
	Trend       string     `json:"trend"`
	Slope       null.Float `json:"forecast_slope"`
}

// FailureEvent records a pass that ended in resolution failure or no data.
type FailureEvent struct {
	Source  string
	Input   string
	Symbol  string
	Outcome string // "not_recognized", "no_data", "empty_input"
	Reason  string
}

// AlertEvent records an alert sent for a watched symbol.
type AlertEvent struct {
	ChatID   string
	Symbol   string
	Kind     string // "zone_change", "take_profit", "capitulation"
	FromZone string
	ToZone   string
	RSI      float64
	Price    float64
}

// Recorder keeps an audit log of passes. Price series are never stored.
type Recorder interface {
	RecordAnalysis(evt *AnalysisEvent) error
	RecordFailure(evt *FailureEvent) error
	RecordAlert(evt *AlertEvent) error
	RecentAnalyses(limit int) ([]AnalysisEvent, error)
	Close() error
}
