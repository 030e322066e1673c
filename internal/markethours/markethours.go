// Package markethours answers whether a symbol's exchange is trading.
package markethours

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/scmhub/calendar"
)

// suffixMIC maps Yahoo exchange suffixes to ISO 10383 MIC codes.
var suffixMIC = map[string]string{
	".ST": "xsto",
	".CO": "xcse",
	".HE": "xhel",
	".OL": "xosl",
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".BR": "xbru",
	".MI": "xmil",
	".MC": "xmad",
	".VI": "xwbo",
	".SW": "xswx",
	".TO": "xtse",
	".V":  "xtsx",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
	".KS": "xkrx",
	".TW": "xtai",
	".SS": "xshg",
	".SZ": "xshe",
}

const defaultMIC = "xnys"

// MIC returns the exchange code for a ticker symbol, NYSE when no suffix matches.
func MIC(symbol string) string {
	if i := strings.LastIndex(symbol, "."); i >= 0 {
		if mic, ok := suffixMIC[strings.ToUpper(symbol[i:])]; ok {
			return mic
		}
	}
	return defaultMIC
}

// Calendar wraps an exchange calendar with a Mon-Fri fallback.
type Calendar struct {
	MIC      string
	cal      *calendar.Calendar
	fallback bool
	loc      *time.Location
}

var (
	mu    sync.Mutex
	cache = map[string]*Calendar{}
)

// ForSymbol returns the (cached) calendar of the symbol's exchange.
func ForSymbol(symbol string) *Calendar {
	mic := MIC(symbol)
	mu.Lock()
	defer mu.Unlock()
	if c, ok := cache[mic]; ok {
		return c
	}
	c := load(mic)
	cache[mic] = c
	return c
}

func load(mic string) *Calendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != defaultMIC {
		log.Printf("[WARN] no calendar for MIC %s, using %s", mic, defaultMIC)
		cal = calendar.GetCalendar(defaultMIC)
	}
	if cal == nil {
		log.Printf("[WARN] no calendar for MIC %s, using Mon-Fri 09:30-16:00 New York", mic)
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			loc = time.UTC
		}
		return &Calendar{MIC: mic, fallback: true, loc: loc}
	}
	return &Calendar{MIC: mic, cal: cal, loc: cal.Loc}
}

// IsTradingDay reports whether the exchange has a session on t's local date.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	if c.loc != nil {
		t = t.In(c.loc)
	}
	if c.fallback {
		wd := t.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return c.cal.IsBusinessDay(t)
}

// IsOpen reports whether the exchange is in its regular session at t.
func (c *Calendar) IsOpen(t time.Time) bool {
	if c.loc != nil {
		t = t.In(c.loc)
	}
	if c.fallback {
		if !c.IsTradingDay(t) {
			return false
		}
		minutes := t.Hour()*60 + t.Minute()
		return minutes >= 9*60+30 && minutes < 16*60
	}
	return c.cal.IsOpen(t)
}
