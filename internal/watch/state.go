package watch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Entry is one symbol a chat follows, with the zone it was last seen in.
type Entry struct {
	Input    string    `json:"input"`
	Symbol   string    `json:"symbol"`
	LastZone string    `json:"last_zone,omitempty"`
	LastRSI  float64   `json:"last_rsi,omitempty"`
	AddedAt  time.Time `json:"added_at"`
	SeenAt   time.Time `json:"seen_at,omitempty"`
}

// State is every chat's watch list.
type State struct {
	Chats     map[string][]Entry `json:"chats"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// LoadState reads the watch state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Chats: map[string][]Entry{}}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Chats == nil {
		state.Chats = map[string][]Entry{}
	}
	return &state, nil
}

// SaveState writes the watch state to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
