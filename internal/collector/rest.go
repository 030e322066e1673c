package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"DipWatch/internal/model"
)

// RESTFetcher implements Fetcher against a self-hosted OHLCV REST API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars endpoint.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type restBarsResponse struct {
	Currency string    `json:"currency"`
	Bars     []restBar `json:"bars"`
}

func (f *RESTFetcher) FetchBars(ctx context.Context, symbol, rng, interval string) (*model.PriceSeries, error) {
	series, err := f.fetchBars(ctx, symbol, rng, interval)
	if err == nil || interval != "1wk" {
		return series, err
	}
	// Weekly bars are optional on the server side; build them from daily bars.
	daily, dailyErr := f.fetchBars(ctx, symbol, rng, "1d")
	if dailyErr != nil {
		return nil, fmt.Errorf("weekly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
	}
	daily.Interval = "1wk"
	daily.Bars = aggregateDailyToWeekly(daily.Bars)
	return daily, nil
}

func (f *RESTFetcher) Probe(ctx context.Context, symbol string) (int, error) {
	series, err := f.fetchBars(ctx, symbol, "1d", "1d")
	if err != nil {
		return 0, err
	}
	return series.Len(), nil
}

func (f *RESTFetcher) fetchBars(ctx context.Context, symbol, rng, interval string) (*model.PriceSeries, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("range", rng)
	q.Set("interval", interval)
	endpoint := fmt.Sprintf("%s/api/v1/bars?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()

	series := &model.PriceSeries{Symbol: symbol, Interval: interval, FetchedAt: time.Now()}
	if resp.StatusCode == http.StatusNotFound {
		return series, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var payload restBarsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.OHLCV, len(payload.Bars))
	for i, rb := range payload.Bars {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	series.Currency = payload.Currency
	series.Bars = normalizeBars(bars)
	return series, nil
}

// aggregateDailyToWeekly converts daily bars into ISO-week bars.
func aggregateDailyToWeekly(daily []model.OHLCV) []model.OHLCV {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.OHLCV
	week := daily[0]
	wy, ww := week.Time.ISOWeek()

	for _, d := range daily[1:] {
		y, w := d.Time.ISOWeek()
		if y != wy || w != ww {
			weekly = append(weekly, week)
			week = d
			wy, ww = y, w
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
