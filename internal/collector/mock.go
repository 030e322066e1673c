package collector

import (
	"context"
	"strings"
	"sync"
	"time"

	"DipWatch/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols listed in Unknown come back empty; ProbeErr and FetchErr force failures.
type MockFetcher struct {
	Price    float64
	Count    int
	Bars     map[string][]model.OHLCV
	Unknown  map[string]bool
	FetchErr error
	ProbeErr error

	mu         sync.Mutex
	probeCalls int
	fetchCalls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol, _, interval string) (*model.PriceSeries, error) {
	m.mu.Lock()
	m.fetchCalls++
	m.mu.Unlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	series := &model.PriceSeries{Symbol: symbol, Interval: interval, Currency: "SEK", FetchedAt: time.Now()}
	if m.Unknown[strings.ToUpper(symbol)] {
		return series, nil
	}
	if bars, ok := m.Bars[symbol]; ok {
		series.Bars = append([]model.OHLCV(nil), bars...)
		return series, nil
	}
	count := m.Count
	if count == 0 {
		count = 63
	}
	series.Bars = GenerateMockBars(m.Price, count)
	return series, nil
}

func (m *MockFetcher) Probe(ctx context.Context, symbol string) (int, error) {
	m.mu.Lock()
	m.probeCalls++
	m.mu.Unlock()

	if m.ProbeErr != nil {
		return 0, m.ProbeErr
	}
	if m.Unknown[strings.ToUpper(symbol)] {
		return 0, nil
	}
	return 1, nil
}

// ProbeCalls reports how many probes were made.
func (m *MockFetcher) ProbeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeCalls
}

// FetchCalls reports how many bar downloads were made.
func (m *MockFetcher) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

// GenerateMockBars builds count daily bars ending today around basePrice.
func GenerateMockBars(basePrice float64, count int) []model.OHLCV {
	if basePrice == 0 {
		basePrice = 100
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		// gentle uptrend with a zig-zag so RSI stays inside (0, 100)
		p := basePrice * (1 + float64(i-count/2)*0.001)
		if i%3 == 0 {
			p *= 0.995
		}
		bars[i] = model.OHLCV{
			Time:   today.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
