package watch

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestManager_AddRemove(t *testing.T) {
	m, err := NewManager("")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := m.Add("1", "saab", "SAAB-B.ST"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Add("1", "Saab", "SAAB-B.ST"); !errors.Is(err, ErrAlreadyWatched) {
		t.Errorf("expected ErrAlreadyWatched, got %v", err)
	}
	if got := m.List("1"); len(got) != 1 || got[0].Input != "saab" {
		t.Errorf("unexpected list %+v", got)
	}
	if err := m.Remove("1", "TSLA"); !errors.Is(err, ErrNotWatched) {
		t.Errorf("expected ErrNotWatched, got %v", err)
	}
	if err := m.Remove("1", "SAAB-B.ST"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(m.Chats()) != 0 {
		t.Error("expected empty chat list after removing the last watch")
	}
}

func TestManager_Limit(t *testing.T) {
	m, _ := NewManager("")
	for i := 0; i < MaxPerChat; i++ {
		if err := m.Add("1", "x", string(rune('A'+i))); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if err := m.Add("1", "x", "OVER"); !errors.Is(err, ErrLimitReached) {
		t.Errorf("expected ErrLimitReached, got %v", err)
	}
}

func TestManager_Symbols(t *testing.T) {
	m, _ := NewManager("")
	m.Add("2", "tesla", "TSLA")
	m.Add("1", "tesla", "TSLA")
	m.Add("1", "apple", "AAPL")

	symbols, chats := m.Symbols()
	if len(symbols) != 2 || symbols[0] != "AAPL" || symbols[1] != "TSLA" {
		t.Fatalf("unexpected symbols %v", symbols)
	}
	if got := chats["TSLA"]; len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("unexpected chats for TSLA: %v", got)
	}
}

func TestManager_Observe(t *testing.T) {
	m, _ := NewManager("")
	m.Add("1", "volvo", "VOLV-B.ST")

	prev, ok := m.Observe("1", "VOLV-B.ST", "neutral", 50)
	if !ok || prev.LastZone != "" {
		t.Fatalf("unexpected first observation %+v ok=%v", prev, ok)
	}
	prev, _ = m.Observe("1", "VOLV-B.ST", "oversold", 25)
	if prev.LastZone != "neutral" {
		t.Errorf("expected previous zone neutral, got %q", prev.LastZone)
	}
	if _, ok := m.Observe("2", "VOLV-B.ST", "oversold", 25); ok {
		t.Error("expected no entry for an unknown chat")
	}
}

func TestManager_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "watches.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	m.Add("42", "apple", "AAPL")
	m.Observe("42", "AAPL", "overbought", 75)

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := reloaded.List("42")
	if len(got) != 1 || got[0].Symbol != "AAPL" || got[0].LastZone != "overbought" {
		t.Errorf("unexpected reloaded list %+v", got)
	}
}

func TestManager_PersistsRSIWithinZone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watches.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	m.Add("7", "saab", "SAAB-B.ST")
	m.Observe("7", "SAAB-B.ST", "overbought", 72)
	m.Observe("7", "SAAB-B.ST", "overbought", 86)

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := reloaded.List("7")
	if len(got) != 1 || got[0].LastRSI != 86 {
		t.Errorf("expected last RSI 86 after reload, got %+v", got)
	}
}
