package app

import (
	"context"
	"slices"
	"sync"

	"coffeechat-scheduler/internal/match"
	"coffeechat-scheduler/internal/schedule"
)

type memStore struct {
	mu           sync.Mutex
	users        map[string]match.User
	availability map[string][]schedule.DaySchedule
	matches      map[string]match.Match
	reachOuts    map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[string]match.User{},
		availability: map[string][]schedule.DaySchedule{},
		matches:      map[string]match.Match{},
		reachOuts:    map[string]string{},
	}
}

func (s *memStore) GetUser(_ context.Context, id string) (*match.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *memStore) GetAvailability(_ context.Context, userID string) ([]schedule.DaySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schedule.Normalize(s.availability[userID]), nil
}

func (s *memStore) SaveAvailability(_ context.Context, userID string, list []schedule.DaySchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.availability[userID] = schedule.Normalize(list)
	return nil
}

func (s *memStore) ListMatches(_ context.Context, userID string) ([]match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []match.Match{}
	for _, m := range s.matches {
		if m.HasUser(userID) {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b match.Match) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *memStore) GetMatch(_ context.Context, id string) (*match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *memStore) UpdateMatch(_ context.Context, id string, fn func(*match.Match) error) (*match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.Availabilities = slices.Clone(m.Availabilities)
	if err := fn(&m); err != nil {
		return nil, err
	}
	s.matches[id] = m
	return &m, nil
}

func (s *memStore) LastReachedOut(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reachOuts[userID], nil
}

func (s *memStore) SetLastReachedOut(_ context.Context, userID, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reachOuts[userID] = matchID
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}
