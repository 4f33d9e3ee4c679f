package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"coffeechat-scheduler/internal/schedule"
)

func TestSessionStoreOwnership(t *testing.T) {
	s := NewSessionStore(time.Hour, nil)
	view := s.Create("u-1", "", schedule.FromAvailabilities(nil))

	if _, err := s.Get(view.ID, "u-2"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Get by another user: err = %v, want ErrForbidden", err)
	}
	if _, err := s.Get("missing", "u-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get missing: err = %v, want ErrSessionNotFound", err)
	}

	got, err := s.With(view.ID, "u-1", func(sess *Session) error {
		return sess.Selection.Add(schedule.Monday, "9:00")
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if got.NumberSelected != 1 || !got.CanConfirm {
		t.Errorf("view = %+v", got)
	}

	s.Delete(view.ID)
	if s.Len() != 0 {
		t.Errorf("Len = %d after delete", s.Len())
	}
}

func TestSessionStoreSweep(t *testing.T) {
	now := time.Date(2026, time.October, 21, 14, 0, 0, 0, time.UTC)
	s := NewSessionStore(30*time.Minute, nil)
	s.now = func() time.Time { return now }

	stale := s.Create("u-1", "", schedule.Empty())
	now = now.Add(20 * time.Minute)
	fresh := s.Create("u-2", "", schedule.Empty())

	now = now.Add(15 * time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if _, err := s.Get(stale.ID, "u-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stale session survived: %v", err)
	}

	// Get touches the session, so it outlives the next sweep
	now = now.Add(20 * time.Minute)
	if _, err := s.Get(fresh.ID, "u-2"); err != nil {
		t.Fatalf("fresh session: %v", err)
	}
	now = now.Add(20 * time.Minute)
	if n := s.Sweep(); n != 0 {
		t.Errorf("Sweep removed %d, want 0", n)
	}
}

func TestSessionStoreNoTTL(t *testing.T) {
	s := NewSessionStore(0, nil)
	s.Create("u-1", "", schedule.Empty())
	if n := s.Sweep(); n != 0 {
		t.Errorf("Sweep with no TTL removed %d", n)
	}
}

func TestSessionStoreRunStops(t *testing.T) {
	s := NewSessionStore(time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
