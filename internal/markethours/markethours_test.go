package markethours

import (
	"testing"
	"time"
)

func TestMIC(t *testing.T) {
	tests := []struct {
		symbol, want string
	}{
		{"SAAB-B.ST", "xsto"},
		{"KIND-SDB.st", "xsto"},
		{"NOVO-B.CO", "xcse"},
		{"TSLA", "xnys"},
		{"^GSPC", "xnys"},
		{"BRK.B", "xnys"},
		{"7203.T", "xtks"},
	}
	for _, tt := range tests {
		if got := MIC(tt.symbol); got != tt.want {
			t.Errorf("MIC(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func TestForSymbol_Cached(t *testing.T) {
	a := ForSymbol("SAAB-B.ST")
	b := ForSymbol("VOLV-B.ST")
	if a != b {
		t.Error("expected one calendar per exchange")
	}
}

func TestCalendar_WeekendClosed(t *testing.T) {
	sat := time.Date(2025, 3, 8, 14, 0, 0, 0, time.UTC)
	for _, sym := range []string{"SAAB-B.ST", "AAPL"} {
		c := ForSymbol(sym)
		if c.IsTradingDay(sat) {
			t.Errorf("%s: Saturday reported as trading day", sym)
		}
		if c.IsOpen(sat) {
			t.Errorf("%s: Saturday reported open", sym)
		}
	}
}

func TestCalendar_Fallback(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	c := &Calendar{MIC: "test", fallback: true, loc: ny}
	wed := time.Date(2025, 3, 5, 0, 0, 0, 0, ny)
	if !c.IsOpen(wed.Add(10 * time.Hour)) {
		t.Error("expected open at 10:00 on a Wednesday")
	}
	if c.IsOpen(wed.Add(9 * time.Hour)) {
		t.Error("expected closed at 09:00")
	}
	if c.IsOpen(wed.Add(16 * time.Hour)) {
		t.Error("expected closed at 16:00")
	}
}
