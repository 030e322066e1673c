package strategy

import (
	"testing"

	"github.com/guregu/null/v6"

	"DipWatch/internal/model"
)

func analysisWith(rsi float64, zone model.RSIZone) *model.Analysis {
	return &model.Analysis{
		Symbol: "TSLA",
		Summary: model.Summary{
			LatestClose: null.FloatFrom(250),
			LatestRSI:   null.FloatFrom(rsi),
			Zone:        zone,
		},
	}
}

func kinds(alerts []Alert) map[Kind]bool {
	out := make(map[Kind]bool)
	for _, a := range alerts {
		out[a.Kind] = true
	}
	return out
}

func TestEvaluate_FirstObservationIsBaseline(t *testing.T) {
	alerts := Evaluate(Previous{}, analysisWith(10, model.ZoneOversold))
	if len(alerts) != 0 {
		t.Errorf("expected no alerts on first observation, got %d", len(alerts))
	}
}

func TestEvaluate_SameZone(t *testing.T) {
	alerts := Evaluate(Previous{Zone: model.ZoneNeutral, RSI: 50}, analysisWith(55, model.ZoneNeutral))
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %+v", alerts)
	}
}

func TestEvaluate_IntoOversold(t *testing.T) {
	alerts := Evaluate(Previous{Zone: model.ZoneNeutral, RSI: 35}, analysisWith(28, model.ZoneOversold))
	if len(alerts) != 1 || alerts[0].Kind != KindZoneChange {
		t.Fatalf("expected one zone change, got %+v", alerts)
	}
	a := alerts[0]
	if a.Symbol != "TSLA" || a.FromZone != model.ZoneNeutral || a.ToZone != model.ZoneOversold {
		t.Errorf("unexpected alert %+v", a)
	}
	if a.Price != 250 || a.RSI != 28 {
		t.Errorf("unexpected values %+v", a)
	}
}

func TestEvaluate_TakeProfitOnce(t *testing.T) {
	got := kinds(Evaluate(Previous{Zone: model.ZoneNeutral, RSI: 65}, analysisWith(88, model.ZoneOverbought)))
	if !got[KindZoneChange] || !got[KindTakeProfit] {
		t.Errorf("expected zone change and take profit, got %v", got)
	}
	again := Evaluate(Previous{Zone: model.ZoneOverbought, RSI: 88}, analysisWith(90, model.ZoneOverbought))
	if len(again) != 0 {
		t.Errorf("expected no repeat alerts, got %+v", again)
	}
}

func TestEvaluate_Capitulation(t *testing.T) {
	got := kinds(Evaluate(Previous{Zone: model.ZoneOversold, RSI: 22}, analysisWith(12, model.ZoneOversold)))
	if got[KindZoneChange] || !got[KindCapitulate] {
		t.Errorf("expected capitulation only, got %v", got)
	}
	again := Evaluate(Previous{Zone: model.ZoneOversold, RSI: 12}, analysisWith(10, model.ZoneOversold))
	if len(again) != 0 {
		t.Errorf("expected no repeat alerts, got %+v", again)
	}
}

func TestEvaluate_BackToNeutral(t *testing.T) {
	alerts := Evaluate(Previous{Zone: model.ZoneOverbought, RSI: 75}, analysisWith(60, model.ZoneNeutral))
	if len(alerts) != 1 || alerts[0].ToZone != model.ZoneNeutral {
		t.Errorf("expected neutral zone change, got %+v", alerts)
	}
}

func TestEvaluate_UndefinedRSI(t *testing.T) {
	a := &model.Analysis{Symbol: "X", Summary: model.Summary{Zone: model.ZoneUnknown}}
	if alerts := Evaluate(Previous{Zone: model.ZoneNeutral}, a); alerts != nil {
		t.Errorf("expected nil, got %+v", alerts)
	}
}
