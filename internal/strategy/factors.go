package strategy

import (
	"fmt"

	"DipWatch/internal/model"
)

// Extreme RSI levels beyond the zone thresholds.
const (
	TakeProfitAbove = 85.0
	CapitulateBelow = 15.0
)

// zoneChange fires when the RSI zone differs from the one last seen.
func zoneChange(prev Previous, a *model.Analysis) (Alert, bool) {
	cur := a.Summary.Zone
	if cur == prev.Zone || cur == model.ZoneUnknown {
		return Alert{}, false
	}
	var note string
	switch cur {
	case model.ZoneOversold:
		note = fmt.Sprintf("RSI fell below 30 (%.1f)", a.Summary.LatestRSI.Float64)
	case model.ZoneOverbought:
		note = fmt.Sprintf("RSI rose above 70 (%.1f)", a.Summary.LatestRSI.Float64)
	default:
		note = fmt.Sprintf("RSI back to neutral (%.1f)", a.Summary.LatestRSI.Float64)
	}
	return Alert{Kind: KindZoneChange, Note: note}, true
}

// takeProfit fires once when RSI crosses above TakeProfitAbove.
func takeProfit(prev Previous, a *model.Analysis) (Alert, bool) {
	rsi := a.Summary.LatestRSI.Float64
	if rsi <= TakeProfitAbove || prev.RSI > TakeProfitAbove {
		return Alert{}, false
	}
	return Alert{Kind: KindTakeProfit, Note: fmt.Sprintf("RSI > %.0f, consider taking profit", TakeProfitAbove)}, true
}

// capitulation fires once when RSI crosses below CapitulateBelow.
func capitulation(prev Previous, a *model.Analysis) (Alert, bool) {
	rsi := a.Summary.LatestRSI.Float64
	if rsi >= CapitulateBelow || prev.RSI < CapitulateBelow {
		return Alert{}, false
	}
	return Alert{Kind: KindCapitulate, Note: fmt.Sprintf("RSI < %.0f, heavy selling", CapitulateBelow)}, true
}
