// Package session keeps the per-viewer context of the dashboard surfaces.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the state one viewer carries between passes.
type Session struct {
	ID          string    `json:"id"`
	LastInput   string    `json:"last_input"`
	LastSymbol  string    `json:"last_symbol"`
	LastRefresh time.Time `json:"last_refresh"`
	CreatedAt   time.Time `json:"created_at"`
}

// chatNamespace derives stable session ids from Telegram chat ids.
var chatNamespace = uuid.MustParse("6f1c2a0e-8c1d-4e57-9a43-2f7d1b0c5e91")

// ChatID returns the session id used for a Telegram chat.
func ChatID(chatID string) string {
	return uuid.NewSHA1(chatNamespace, []byte(chatID)).String()
}

// Store holds sessions keyed by id. Entries idle for longer than ttl are evicted by Sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore(ttl time.Duration) *Store {
	return &Store{sessions: make(map[string]*Session), ttl: ttl, now: time.Now}
}

// New creates and stores a session with a random id.
func (s *Store) New() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{ID: uuid.NewString(), CreatedAt: s.now()}
	s.sessions[sess.ID] = sess
	return *sess
}

// Get returns a copy of the session with id.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Ensure returns the session for id, creating it when unknown or malformed.
// Ids that are not UUIDs are replaced with a fresh one.
func (s *Store) Ensure(id string) Session {
	if _, err := uuid.Parse(id); err != nil {
		return s.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id, CreatedAt: s.now()}
		s.sessions[id] = sess
	}
	return *sess
}

// Touch records the input and symbol of a completed pass.
func (s *Store) Touch(id, input, symbol string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id, CreatedAt: s.now()}
		s.sessions[id] = sess
	}
	sess.LastInput = input
	sess.LastSymbol = symbol
	sess.LastRefresh = s.now()
	return *sess
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the store's ttl and returns how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.sessions {
		last := sess.LastRefresh
		if last.IsZero() {
			last = sess.CreatedAt
		}
		if last.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
