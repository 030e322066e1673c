// Package watch tracks which symbols each chat follows for auto-refresh alerts.
package watch

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

// MaxPerChat caps the watch list of a single chat.
const MaxPerChat = 20

var (
	ErrAlreadyWatched = errors.New("already watched")
	ErrNotWatched     = errors.New("not watched")
	ErrLimitReached   = errors.New("watch limit reached")
)

// Manager handles watch lists with concurrency safety.
// An empty file path keeps the state in memory only.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewManager creates a Manager, loading state from disk.
func NewManager(filePath string) (*Manager, error) {
	state := &State{Chats: map[string][]Entry{}}
	if filePath != "" {
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, err
		}
		state = loaded
	}
	return &Manager{state: state, filePath: filePath}, nil
}

// Add starts watching symbol for chatID.
func (m *Manager) Add(chatID, input, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.state.Chats[chatID]
	for _, e := range entries {
		if e.Symbol == symbol {
			return ErrAlreadyWatched
		}
	}
	if len(entries) >= MaxPerChat {
		return ErrLimitReached
	}
	m.state.Chats[chatID] = append(entries, Entry{Input: input, Symbol: symbol, AddedAt: time.Now()})
	m.save()
	return nil
}

// Remove stops watching symbol for chatID.
func (m *Manager) Remove(chatID, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.state.Chats[chatID]
	for i, e := range entries {
		if e.Symbol == symbol {
			entries = append(entries[:i], entries[i+1:]...)
			if len(entries) == 0 {
				delete(m.state.Chats, chatID)
			} else {
				m.state.Chats[chatID] = entries
			}
			m.save()
			return nil
		}
	}
	return ErrNotWatched
}

// List returns a copy of the watch list of chatID.
func (m *Manager) List(chatID string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.state.Chats[chatID]...)
}

// Symbols returns every watched symbol once, sorted, with the chats watching it.
func (m *Manager) Symbols() ([]string, map[string][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chats := make(map[string][]string)
	for chatID, entries := range m.state.Chats {
		for _, e := range entries {
			chats[e.Symbol] = append(chats[e.Symbol], chatID)
		}
	}
	symbols := make([]string, 0, len(chats))
	for sym := range chats {
		symbols = append(symbols, sym)
		sort.Strings(chats[sym])
	}
	sort.Strings(symbols)
	return symbols, chats
}

// Chats returns every chat id with at least one watch, sorted.
func (m *Manager) Chats() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.state.Chats))
	for id := range m.state.Chats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Observe stores the zone and RSI just seen for symbol in chatID and returns the previous entry.
// Every observation is written through so alert rules see the latest RSI after a restart.
func (m *Manager) Observe(chatID, symbol, zone string, rsi float64) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.state.Chats[chatID]
	for i := range entries {
		if entries[i].Symbol != symbol {
			continue
		}
		prev := entries[i]
		entries[i].LastZone = zone
		entries[i].LastRSI = rsi
		entries[i].SeenAt = time.Now()
		m.save()
		return prev, true
	}
	return Entry{}, false
}

// save must be called with mu held.
func (m *Manager) save() {
	if m.filePath == "" {
		return
	}
	if err := SaveState(m.filePath, m.state); err != nil {
		log.Printf("[ERROR] save watch state: %v", err)
	}
}
