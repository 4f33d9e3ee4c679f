package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"coffeechat-scheduler/internal/schedule"
)

var (
	ErrSessionNotFound = errors.New("selection session not found")
	ErrForbidden       = errors.New("forbidden")
)

// Session is one scheduling session: a selection owned by a viewer,
// optionally tied to a match.
type Session struct {
	ID        string
	OwnerID   string
	MatchID   string
	Selection *schedule.Selection
	touched   time.Time
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	ID             string                 `json:"id"`
	Mode           schedule.Mode          `json:"mode"`
	MatchID        string                 `json:"match_id,omitempty"`
	Schedules      []schedule.DaySchedule `json:"schedules"`
	NumberSelected int                    `json:"number_selected"`
	CanConfirm     bool                   `json:"can_confirm"`
}

func (s *Session) View() SessionView {
	return SessionView{
		ID:             s.ID,
		Mode:           s.Selection.Mode(),
		MatchID:        s.MatchID,
		Schedules:      s.Selection.Schedules(),
		NumberSelected: s.Selection.NumberSelected(),
		CanConfirm:     s.Selection.CanConfirm(),
	}
}

// SessionStore keeps selection sessions in memory. Selections are not safe
// for concurrent use, so every access goes through the store's lock.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   hclog.Logger
}

func NewSessionStore(ttl time.Duration, logger hclog.Logger) *SessionStore {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SessionStore{
		sessions: map[string]*Session{},
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *SessionStore) Create(ownerID, matchID string, sel *schedule.Selection) SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		MatchID:   matchID,
		Selection: sel,
		touched:   s.now(),
	}
	s.sessions[sess.ID] = sess
	return sess.View()
}

// With runs fn on the session while holding the lock.
func (s *SessionStore) With(id, ownerID string, fn func(*Session) error) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return SessionView{}, ErrSessionNotFound
	}
	if sess.OwnerID != ownerID {
		return SessionView{}, ErrForbidden
	}
	sess.touched = s.now()
	if err := fn(sess); err != nil {
		return sess.View(), err
	}
	return sess.View(), nil
}

func (s *SessionStore) Get(id, ownerID string) (SessionView, error) {
	return s.With(id, ownerID, func(*Session) error { return nil })
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.touched.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("session sweeper started", "interval", interval.String(), "ttl", s.ttl.String())

	for {
		select {
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired selection sessions", "count", n)
			}
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		}
	}
}
