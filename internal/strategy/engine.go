// Package strategy decides which auto-refresh results are worth an alert.
package strategy

import "DipWatch/internal/model"

// Kind names an alert rule.
type Kind string

const (
	KindZoneChange Kind = "zone_change"
	KindTakeProfit Kind = "take_profit"
	KindCapitulate Kind = "capitulation"
)

// Previous is what was known about a watched symbol before this pass.
type Previous struct {
	Zone model.RSIZone
	RSI  float64
}

// Alert is one notification-worthy change on a watched symbol.
type Alert struct {
	Kind     Kind          `json:"kind"`
	Symbol   string        `json:"symbol"`
	FromZone model.RSIZone `json:"from_zone"`
	ToZone   model.RSIZone `json:"to_zone"`
	RSI      float64       `json:"rsi"`
	Price    float64       `json:"price"`
	Note     string        `json:"note"`
}

// Evaluate compares a fresh analysis with the previous observation and returns the alerts to send.
// The first observation of a symbol only sets the baseline.
func Evaluate(prev Previous, a *model.Analysis) []Alert {
	if a == nil || !a.Summary.LatestRSI.Valid {
		return nil
	}
	if prev.Zone == "" || prev.Zone == model.ZoneUnknown {
		return nil
	}

	var alerts []Alert
	for _, rule := range rules {
		if alert, ok := rule(prev, a); ok {
			alert.Symbol = a.Symbol
			alert.FromZone = prev.Zone
			alert.ToZone = a.Summary.Zone
			alert.RSI = a.Summary.LatestRSI.Float64
			alert.Price = a.Summary.LatestClose.Float64
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

type rule func(prev Previous, a *model.Analysis) (Alert, bool)

var rules = []rule{zoneChange, takeProfit, capitulation}
