package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"DipWatch/internal/analysis"
	"DipWatch/internal/collector"
	"DipWatch/internal/model"
	"DipWatch/internal/recorder"
	"DipWatch/internal/resolver"
	"DipWatch/internal/session"
)

func newTestServer(t *testing.T, f *collector.MockFetcher) *Server {
	t.Helper()
	an := analysis.NewAnalyzer(f, resolver.New(f, nil, time.Second), analysis.DefaultOptions())
	return New(an, recorder.NewNoopRecorder(), session.NewStore(time.Hour), time.Second, false)
}

func get(t *testing.T, s *Server, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	w := get(t, s, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"provider":"mock"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
	if w.Header().Get(sessionHeader) == "" {
		t.Error("expected session header")
	}
}

func TestAnalysis_OK(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{Price: 300})
	w := get(t, s, "/api/analysis?q=saab&complete=true&rows=5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		SessionID string `json:"session_id"`
		Analysis  struct {
			Symbol string `json:"symbol"`
			RSI    []*float64
		} `json:"analysis"`
		Rows []model.Row `json:"rows"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Analysis.Symbol != "SAAB-B.ST" {
		t.Errorf("expected SAAB-B.ST, got %s", resp.Analysis.Symbol)
	}
	if len(resp.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(resp.Rows))
	}
	if !resp.Rows[0].Time.After(resp.Rows[1].Time) {
		t.Error("expected newest row first")
	}
	sess, ok := s.Sessions.Get(resp.SessionID)
	if !ok || sess.LastSymbol != "SAAB-B.ST" {
		t.Errorf("expected session touched, got %+v", sess)
	}
}

func TestAnalysis_UndefinedRSIIsNull(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	w := get(t, s, "/api/analysis?q=tesla", nil)
	if !strings.Contains(w.Body.String(), `"rsi":[null,`) {
		t.Errorf("expected leading null RSI entries")
	}
}

func TestAnalysis_Errors(t *testing.T) {
	f := &collector.MockFetcher{
		Unknown: map[string]bool{"ZZZZNOTREAL": true},
		Bars:    map[string][]model.OHLCV{"AAPL": {}},
	}
	s := newTestServer(t, f)
	tests := []struct {
		query string
		code  int
		kind  string
	}{
		{"", http.StatusBadRequest, "empty_input"},
		{"zzzznotreal", http.StatusNotFound, "not_recognized"},
		{"apple", http.StatusUnprocessableEntity, "no_data"},
	}
	for _, tt := range tests {
		w := get(t, s, "/api/analysis?q="+tt.query, nil)
		if w.Code != tt.code {
			t.Errorf("q=%q: expected %d, got %d", tt.query, tt.code, w.Code)
		}
		var body errorResponse
		json.Unmarshal(w.Body.Bytes(), &body)
		if body.Kind != tt.kind || body.Error == "" {
			t.Errorf("q=%q: unexpected body %+v", tt.query, body)
		}
	}
}

func TestResolve(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	w := get(t, s, "/api/resolve?q=Volvo", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"symbol":"VOLV-B.ST"`) {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestSession_HeaderReused(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	first := get(t, s, "/api/health", nil).Header().Get(sessionHeader)
	second := get(t, s, "/api/health", http.Header{sessionHeader: {first}}).Header().Get(sessionHeader)
	if first != second {
		t.Errorf("expected session %s reused, got %s", first, second)
	}
}

func TestHistoryAndMetrics(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	if w := get(t, s, "/api/history", nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"analyses":[]`) {
		t.Errorf("unexpected history %d %s", w.Code, w.Body.String())
	}
	get(t, s, "/api/analysis?q=saab", nil)
	w := get(t, s, "/metrics", nil)
	if !strings.Contains(w.Body.String(), `dipwatch_passes_total{outcome="ok"} 1`) {
		t.Errorf("expected pass counter in metrics output")
	}
}

func TestWebSocket_StreamAndSwitch(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{Unknown: map[string]bool{"NOPE": true}})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?q=saab&interval=1s"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg streamMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read first frame: %v", err)
	}
	if msg.Type != "analysis" || msg.Analysis == nil || msg.Analysis.Symbol != "SAAB-B.ST" {
		t.Fatalf("unexpected first frame %+v", msg)
	}

	if err := conn.WriteJSON(clientRequest{Q: "nope"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	// a tick may already be queued for saab; wait for the switch
	for i := 0; i < 3; i++ {
		msg = streamMessage{}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Input == "nope" {
			break
		}
	}
	if msg.Type != "error" || msg.Kind != "not_recognized" {
		t.Errorf("unexpected frame after switch %+v", msg)
	}
}
