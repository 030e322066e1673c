package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"DipWatch/internal/analysis"
	"DipWatch/internal/model"
	"DipWatch/internal/strategy"
	"DipWatch/internal/watch"
)

// DigestItem is one watched symbol in the daily digest.
type DigestItem struct {
	Symbol   string
	Analysis *model.Analysis
	Err      error
}

func zoneLabel(z model.RSIZone) string {
	switch z {
	case model.ZoneOversold:
		return "🟢 oversold"
	case model.ZoneOverbought:
		return "🔴 overbought"
	case model.ZoneNeutral:
		return "⚪ neutral"
	default:
		return "n/a"
	}
}

func trendLabel(t model.Trend) string {
	switch t {
	case model.TrendBullish:
		return "📈 bullish"
	case model.TrendBearish:
		return "📉 bearish"
	case model.TrendSideways:
		return "↔️ sideways"
	default:
		return "n/a"
	}
}

func price(v float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

// FormatAnalysis renders one pass as a Telegram HTML message with the newest tableRows complete rows.
func FormatAnalysis(a *model.Analysis, tableRows int) string {
	var b strings.Builder
	s := a.Summary

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(a.Symbol), s.LatestTime.Format("2006-01-02")))
	if s.LatestClose.Valid {
		b.WriteString(fmt.Sprintf("Latest close: %s\n", price(s.LatestClose.Float64, s.Currency)))
	}
	if s.LatestRSI.Valid {
		b.WriteString(fmt.Sprintf("RSI(%d): %.1f %s\n", a.RSIPeriod, s.LatestRSI.Float64, zoneLabel(s.Zone)))
	} else {
		b.WriteString(fmt.Sprintf("RSI(%d): n/a\n", a.RSIPeriod))
	}
	for _, w := range a.SMAWindows {
		series := a.SMA[w]
		if n := len(series); n > 0 && series[n-1].Valid {
			b.WriteString(fmt.Sprintf("SMA%d: %.2f\n", w, series[n-1].Float64))
		}
	}
	b.WriteString(fmt.Sprintf("Trend: %s\n", trendLabel(s.Trend)))
	if s.PeriodHigh > 0 {
		line := fmt.Sprintf("Range: %.2f – %.2f", s.PeriodLow, s.PeriodHigh)
		if s.RangePosition.Valid {
			line += fmt.Sprintf(" (at %.0f%%)", s.RangePosition.Float64*100)
		}
		b.WriteString(line + "\n")
	}

	switch {
	case a.Forecast != nil && len(a.Forecast.Points) > 0:
		last := a.Forecast.Points[len(a.Forecast.Points)-1]
		b.WriteString(fmt.Sprintf("\n🔮 <b>Forecast</b> (%+.2f/day): %s on %s\n",
			a.Forecast.Slope, price(last.Price, s.Currency), last.Time.Format("2006-01-02")))
	case a.ForecastNote != "":
		b.WriteString(fmt.Sprintf("\n🔮 Forecast: %s\n", html.EscapeString(a.ForecastNote)))
	}

	rows := a.CompleteRows()
	if tableRows > 0 && len(rows) > tableRows {
		rows = rows[:tableRows]
	}
	if len(rows) > 0 {
		b.WriteString("\n<pre>")
		b.WriteString(fmt.Sprintf("%-10s %9s %9s %6s\n", "Date", "Open", "Close", "RSI"))
		for _, r := range rows {
			b.WriteString(fmt.Sprintf("%-10s %9s %9s %6.1f\n",
				r.Time.Format("2006-01-02"), r.Open.StringFixed(2), r.Close.StringFixed(2), r.RSI.Float64))
		}
		b.WriteString("</pre>")
	}
	if !a.MarketOpen {
		b.WriteString("\n<i>Market closed</i>")
	}
	return b.String()
}

// FormatFailure renders a failed pass.
func FormatFailure(err error) string {
	return "⚠️ " + html.EscapeString(analysis.UserMessage(err))
}

// FormatAlert renders a watch alert.
func FormatAlert(a strategy.Alert) string {
	return fmt.Sprintf("🔔 <b>%s</b>: %s\n%s → %s | RSI %.1f | close %.2f",
		html.EscapeString(a.Symbol), html.EscapeString(a.Note), zoneLabel(a.FromZone), zoneLabel(a.ToZone), a.RSI, a.Price)
}

// FormatWatches renders a chat's watch list.
func FormatWatches(entries []watch.Entry) string {
	if len(entries) == 0 {
		return "You are not watching anything. Use /watch &lt;name&gt; to start."
	}
	var b strings.Builder
	b.WriteString("👀 <b>Watching</b>\n\n")
	for _, e := range entries {
		line := fmt.Sprintf("• %s (%s)", html.EscapeString(e.Symbol), html.EscapeString(e.Input))
		if e.LastZone != "" {
			line += fmt.Sprintf(" | RSI %.1f %s", e.LastRSI, zoneLabel(model.RSIZone(e.LastZone)))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatDigest renders the daily summary of all watched symbols.
func FormatDigest(items []DigestItem, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>Daily digest</b> | %s\n\n", now.Format("2006-01-02")))
	for _, it := range items {
		if it.Err != nil || it.Analysis == nil {
			b.WriteString(fmt.Sprintf("• %s: no data\n", html.EscapeString(it.Symbol)))
			continue
		}
		s := it.Analysis.Summary
		rsi := "n/a"
		if s.LatestRSI.Valid {
			rsi = fmt.Sprintf("%.1f", s.LatestRSI.Float64)
		}
		b.WriteString(fmt.Sprintf("• %s: %s | RSI %s %s | %s\n",
			html.EscapeString(it.Symbol), price(s.LatestClose.Float64, s.Currency), rsi, zoneLabel(s.Zone), trendLabel(s.Trend)))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Send a company name or ticker (e.g. <code>saab</code>, <code>tesla</code>, <code>AAPL</code>) for RSI, moving averages and a price forecast.\n\n" +
		"/watch &lt;name&gt; - alert on RSI zone changes\n" +
		"/unwatch &lt;name&gt; - stop watching\n" +
		"/watches - list watched symbols\n" +
		"/help - this message"
}
