package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DipWatch/internal/model"
)

func TestRESTFetcher_WeeklyFallsBackToDaily(t *testing.T) {
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	var daily []restBar
	for i := 0; i < 10; i++ {
		d := monday.AddDate(0, 0, i)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := float64(100 + i)
		daily = append(daily, restBar{Timestamp: d.Unix(), Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 10})
	}

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Query().Get("interval") == "1wk" {
			http.Error(w, "unsupported", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(restBarsResponse{Currency: "USD", Bars: daily})
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "", time.Second)
	series, err := f.FetchBars(context.Background(), "TSLA", "3mo", "1wk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if series.Len() != 2 {
		t.Fatalf("expected 2 weekly bars, got %d", series.Len())
	}
	first := series.Bars[0]
	if first.Open != 100 || first.Close != 104 || first.High != 105 || first.Low != 99 || first.Volume != 50 {
		t.Errorf("unexpected first weekly bar: %+v", first)
	}
}

func TestRESTFetcher_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "", "", time.Second)
	n, err := f.Probe(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no bars, got %d", n)
	}
}

func TestNormalizeBars(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []model.OHLCV{
		{Time: t0.AddDate(0, 0, 2), Close: 3},
		{Time: t0, Close: 1},
		{Time: t0.AddDate(0, 0, 1), Close: 2},
		{Time: t0.AddDate(0, 0, 1), Close: 22},
	}
	got := normalizeBars(bars)
	want := []float64{1, 22, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d bars, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Close != want[i] {
			t.Errorf("bar %d: expected close %.0f, got %.0f", i, want[i], got[i].Close)
		}
	}
}
