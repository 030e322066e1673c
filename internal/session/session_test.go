package session

import (
	"testing"
	"time"
)

func TestStore_TouchAndGet(t *testing.T) {
	s := NewStore(time.Hour)
	sess := s.New()
	if sess.ID == "" {
		t.Fatal("expected session id")
	}
	s.Touch(sess.ID, "saab", "SAAB-B.ST")
	got, ok := s.Get(sess.ID)
	if !ok {
		t.Fatal("expected session")
	}
	if got.LastInput != "saab" || got.LastSymbol != "SAAB-B.ST" {
		t.Errorf("unexpected session %+v", got)
	}
	if got.LastRefresh.IsZero() {
		t.Error("expected refresh time")
	}
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	s := NewStore(time.Hour)
	a, b := s.New(), s.New()
	s.Touch(a.ID, "tesla", "TSLA")
	got, _ := s.Get(b.ID)
	if got.LastInput != "" {
		t.Errorf("session %s leaked into %s", a.ID, b.ID)
	}
}

func TestStore_EnsureRejectsMalformedID(t *testing.T) {
	s := NewStore(time.Hour)
	sess := s.Ensure("not-a-uuid")
	if sess.ID == "not-a-uuid" {
		t.Error("expected a fresh id for malformed input")
	}
	again := s.Ensure(sess.ID)
	if again.ID != sess.ID {
		t.Errorf("expected same session, got %s", again.ID)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 session, got %d", s.Len())
	}
}

func TestStore_Sweep(t *testing.T) {
	now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	s := NewStore(time.Minute)
	s.now = func() time.Time { return now }
	old := s.New()
	now = now.Add(2 * time.Minute)
	fresh := s.New()

	if n := s.Sweep(); n != 1 {
		t.Fatalf("expected 1 evicted, got %d", n)
	}
	if _, ok := s.Get(old.ID); ok {
		t.Error("expected idle session evicted")
	}
	if _, ok := s.Get(fresh.ID); !ok {
		t.Error("expected fresh session kept")
	}
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(0)
	sess := s.New()
	s.Delete(sess.ID)
	if _, ok := s.Get(sess.ID); ok {
		t.Error("expected session deleted")
	}
	if s.Sweep() != 0 {
		t.Error("zero ttl never sweeps")
	}
}

func TestChatID_Stable(t *testing.T) {
	if ChatID("12345") != ChatID("12345") {
		t.Error("expected stable chat session id")
	}
	if ChatID("1") == ChatID("2") {
		t.Error("expected distinct ids per chat")
	}
}
