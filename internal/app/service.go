package app

import (
	"context"
	"errors"
	"fmt"

	"coffeechat-scheduler/internal/match"
	"coffeechat-scheduler/internal/schedule"
)

var (
	ErrConflict       = errors.New("conflict")
	ErrEmptySelection = errors.New("nothing selected")
	ErrSlotNotOffered = errors.New("slot was not offered")
	ErrInvalidInput   = errors.New("invalid input")
)

// validateSchedules checks client-supplied availability and returns it
// normalized.
func validateSchedules(list []schedule.DaySchedule) ([]schedule.DaySchedule, error) {
	for _, ds := range list {
		if err := ds.Validate(true); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	return schedule.Normalize(list), nil
}

func (a *App) SaveAvailability(ctx context.Context, userID string, list []schedule.DaySchedule) ([]schedule.DaySchedule, error) {
	list, err := validateSchedules(list)
	if err != nil {
		return nil, err
	}
	if err := a.Store.SaveAvailability(ctx, userID, list); err != nil {
		return nil, fmt.Errorf("saving availability: %w", err)
	}
	a.publish(ctx, Event{Type: EventAvailabilitySaved, UserID: userID, Availabilities: list})
	return list, nil
}

// participantMatch loads a match and checks the viewer belongs to it.
func (a *App) participantMatch(ctx context.Context, viewer, matchID string) (*match.Match, error) {
	m, err := a.Store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasUser(viewer) {
		return nil, fmt.Errorf("%w: not a participant of match %s", ErrForbidden, matchID)
	}
	return m, nil
}

// StartSelection opens a scheduling session. Multiple sessions are seeded
// from the viewer's saved availability for the rest of this week; when tied
// to a match, saving one also reaches out. Single sessions pick one slot
// from a proposal the partner made.
func (a *App) StartSelection(ctx context.Context, viewer string, mode schedule.Mode, matchID string) (SessionView, error) {
	switch mode {
	case schedule.Multiple:
		if matchID != "" {
			m, err := a.participantMatch(ctx, viewer, matchID)
			if err != nil {
				return SessionView{}, err
			}
			if m.Status != match.StatusCreated {
				return SessionView{}, fmt.Errorf("%w: cannot reach out on a %s match", ErrConflict, m.Status)
			}
		}
		saved, err := a.Store.GetAvailability(ctx, viewer)
		if err != nil {
			return SessionView{}, err
		}
		sel := schedule.FromAvailabilities(schedule.Upcoming(saved, a.Now()))
		return a.Sessions.Create(viewer, matchID, sel), nil
	case schedule.Single:
		if matchID == "" {
			return SessionView{}, fmt.Errorf("%w: match_id required for single selection", ErrInvalidInput)
		}
		if _, err := a.pickableMatch(ctx, viewer, matchID); err != nil {
			return SessionView{}, err
		}
		return a.Sessions.Create(viewer, matchID, schedule.Empty()), nil
	default:
		return SessionView{}, fmt.Errorf("%w: unknown mode %s", ErrInvalidInput, mode)
	}
}

// pickableMatch checks the viewer may choose a slot on matchID: it must be
// proposed, and by the partner.
func (a *App) pickableMatch(ctx context.Context, viewer, matchID string) (*match.Match, error) {
	m, err := a.participantMatch(ctx, viewer, matchID)
	if err != nil {
		return nil, err
	}
	if err := canPick(m, viewer); err != nil {
		return nil, err
	}
	return m, nil
}

// canPick rejects picks on anything but a partner's open proposal.
func canPick(m *match.Match, viewer string) error {
	if m.Status != match.StatusProposed {
		return fmt.Errorf("%w: match is %s, not proposed", ErrConflict, m.Status)
	}
	if m.ProposedBy == viewer {
		return fmt.Errorf("%w: waiting on the other participant", ErrConflict)
	}
	return nil
}

// SaveSelection commits a session and discards it.
func (a *App) SaveSelection(ctx context.Context, viewer, sessionID string) (saveResult, error) {
	var mode schedule.Mode
	snapshot, err := a.Sessions.With(sessionID, viewer, func(s *Session) error {
		mode = s.Selection.Mode()
		if !s.Selection.CanConfirm() {
			return ErrEmptySelection
		}
		return nil
	})
	if err != nil {
		return saveResult{}, err
	}

	res := saveResult{Session: snapshot}
	switch mode {
	case schedule.Single:
		m, err := a.ConfirmSlot(ctx, viewer, snapshot.MatchID, snapshot.Schedules[0])
		if err != nil {
			return saveResult{}, err
		}
		view, err := a.View(ctx, viewer, *m)
		if err != nil {
			return saveResult{}, err
		}
		res.Match = &view
	case schedule.Multiple:
		// Reach out before touching saved availability: a match that moved
		// on leaves nothing written and the session is dropped.
		if snapshot.MatchID != "" {
			m, err := a.ReachOut(ctx, viewer, snapshot.MatchID, snapshot.Schedules)
			if errors.Is(err, ErrConflict) {
				a.Sessions.Delete(sessionID)
			}
			if err != nil {
				return saveResult{}, err
			}
			view, err := a.View(ctx, viewer, *m)
			if err != nil {
				return saveResult{}, err
			}
			res.Match = &view
		}

		// the session only covered the rest of this week; keep earlier days
		saved, err := a.Store.GetAvailability(ctx, viewer)
		if err != nil {
			return saveResult{}, err
		}
		today := schedule.DayOf(a.Now())
		merged := snapshot.Schedules
		for _, ds := range saved {
			if ds.Day < today {
				merged = append(merged, ds)
			}
		}
		if _, err := a.SaveAvailability(ctx, viewer, merged); err != nil {
			return saveResult{}, err
		}
		res.Saved = true
	}

	a.Sessions.Delete(sessionID)
	return res, nil
}

// ConfirmSlot turns a proposed match into a scheduled chat at picked, which
// must be one of the slots the partner offered.
func (a *App) ConfirmSlot(ctx context.Context, viewer, matchID string, picked schedule.DaySchedule) (*match.Match, error) {
	clocks := picked.Clocks()
	if len(clocks) != 1 {
		return nil, fmt.Errorf("%w: exactly one slot must be picked", ErrInvalidInput)
	}
	if _, err := a.pickableMatch(ctx, viewer, matchID); err != nil {
		return nil, err
	}

	now := a.Now()
	m, err := a.Store.UpdateMatch(ctx, matchID, func(m *match.Match) error {
		if err := canPick(m, viewer); err != nil {
			return err
		}
		if !schedule.Contains(m.Availabilities, picked.Day, clocks[0]) {
			return fmt.Errorf("%w: %s %s", ErrSlotNotOffered, picked.Day, clocks[0])
		}
		at := schedule.NextOccurrence(now, picked.Day, clocks[0])
		m.Status = match.StatusActive
		m.MeetingTime = &at
		m.Availabilities = []schedule.DaySchedule{{Day: picked.Day, Times: []float64{clocks[0].Hours()}}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.Logger.Info("chat scheduled", "match_id", m.ID, "meeting_time", m.MeetingTime)
	a.publish(ctx, Event{
		Type:           EventMatchScheduled,
		MatchID:        m.ID,
		UserID:         viewer,
		Status:         m.Status,
		MeetingTime:    m.MeetingTime,
		Availabilities: m.Availabilities,
	})
	return m, nil
}

// ReachOut proposes availability on a created match. With no availability
// given, the viewer's saved availability for the rest of the week is used.
func (a *App) ReachOut(ctx context.Context, viewer, matchID string, offered []schedule.DaySchedule) (*match.Match, error) {
	if _, err := a.participantMatch(ctx, viewer, matchID); err != nil {
		return nil, err
	}

	if len(offered) == 0 {
		saved, err := a.Store.GetAvailability(ctx, viewer)
		if err != nil {
			return nil, err
		}
		offered = schedule.Upcoming(saved, a.Now())
	}
	offered, err := validateSchedules(offered)
	if err != nil {
		return nil, err
	}
	if len(offered) == 0 {
		return nil, fmt.Errorf("%w: no availability to offer", ErrEmptySelection)
	}

	m, err := a.Store.UpdateMatch(ctx, matchID, func(m *match.Match) error {
		if m.Status != match.StatusCreated {
			return fmt.Errorf("%w: cannot reach out on a %s match", ErrConflict, m.Status)
		}
		m.Status = match.StatusProposed
		m.ProposedBy = viewer
		m.Availabilities = offered
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := a.Store.SetLastReachedOut(ctx, viewer, matchID); err != nil {
		return nil, fmt.Errorf("recording reach out: %w", err)
	}

	a.publish(ctx, Event{
		Type:           EventMatchProposed,
		MatchID:        m.ID,
		UserID:         viewer,
		Status:         m.Status,
		Availabilities: m.Availabilities,
	})
	return m, nil
}

func (a *App) Cancel(ctx context.Context, viewer, matchID string) (*match.Match, error) {
	if _, err := a.participantMatch(ctx, viewer, matchID); err != nil {
		return nil, err
	}
	m, err := a.Store.UpdateMatch(ctx, matchID, func(m *match.Match) error {
		switch m.Status {
		case match.StatusCreated, match.StatusProposed, match.StatusActive:
			m.Status = match.StatusCancelled
			return nil
		default:
			return fmt.Errorf("%w: cannot cancel a %s match", ErrConflict, m.Status)
		}
	})
	if err != nil {
		return nil, err
	}
	a.publish(ctx, Event{Type: EventMatchCancelled, MatchID: m.ID, UserID: viewer, Status: m.Status})
	return m, nil
}

// View resolves what viewer sees for m.
func (a *App) View(ctx context.Context, viewer string, m match.Match) (MatchView, error) {
	last, err := a.Store.LastReachedOut(ctx, viewer)
	if err != nil {
		return MatchView{}, err
	}
	return a.view(ctx, viewer, m, last)
}

func (a *App) view(ctx context.Context, viewer string, m match.Match, lastReachedOut string) (MatchView, error) {
	var pair *match.User
	if pairID, ok := m.Pair(viewer); ok {
		u, err := a.Store.GetUser(ctx, pairID)
		switch {
		case errors.Is(err, ErrNotFound):
			a.Logger.Warn("pair user missing", "match_id", m.ID, "user_id", pairID)
			pair = &match.User{ID: pairID}
		case err != nil:
			return MatchView{}, err
		default:
			pair = u
		}
	}

	now := a.Now()
	status := a.Resolver.Resolve(m, pair, match.HasReachedOut(lastReachedOut, m.ID), now)
	return MatchView{
		Match:      m,
		Pair:       pair,
		ChatStatus: status,
		Action:     match.ActionFor(status),
		Slots:      schedule.Occurrences(m.Availabilities, now),
	}, nil
}

func (a *App) ListMatches(ctx context.Context, viewer string) ([]MatchView, error) {
	matches, err := a.Store.ListMatches(ctx, viewer)
	if err != nil {
		return nil, err
	}
	last, err := a.Store.LastReachedOut(ctx, viewer)
	if err != nil {
		return nil, err
	}
	out := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		v, err := a.view(ctx, viewer, m, last)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (a *App) GetMatch(ctx context.Context, viewer, matchID string) (MatchView, error) {
	m, err := a.participantMatch(ctx, viewer, matchID)
	if err != nil {
		return MatchView{}, err
	}
	return a.View(ctx, viewer, *m)
}

// publish is best effort: state has already been committed.
func (a *App) publish(ctx context.Context, ev Event) {
	ev.Timestamp = a.Now().UTC()
	if err := a.Events.Publish(ctx, ev); err != nil {
		a.Logger.Error("failed to publish event", "type", ev.Type, "error", err)
	}
}
