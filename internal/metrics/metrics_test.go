package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetrics_Exposed(t *testing.T) {
	m := NewMetrics()
	m.PassesTotal.WithLabelValues(OutcomeOK).Inc()
	m.LastRSI.WithLabelValues("SAAB-B.ST").Set(28.5)
	m.ProbesTotal.WithLabelValues("probe_ok").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`dipwatch_passes_total{outcome="ok"} 1`,
		`dipwatch_last_rsi{symbol="SAAB-B.ST"} 28.5`,
		`dipwatch_probes_total{result="probe_ok"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}

func TestNewMetrics_Independent(t *testing.T) {
	// separate registries, so constructing twice must not panic
	NewMetrics()
	NewMetrics()
}
