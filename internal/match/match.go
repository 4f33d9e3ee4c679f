package match

import (
	"time"

	"coffeechat-scheduler/internal/schedule"
)

// LifecycleStatus is the persisted state of a pairing. Values outside the
// declared constants are kept verbatim so they can be reported.
type LifecycleStatus string

const (
	StatusCreated   LifecycleStatus = "created"
	StatusProposed  LifecycleStatus = "proposed"
	StatusCancelled LifecycleStatus = "cancelled"
	StatusActive    LifecycleStatus = "active"
	StatusInactive  LifecycleStatus = "inactive"
)

var Lifecycle = []LifecycleStatus{StatusCreated, StatusProposed, StatusCancelled, StatusActive, StatusInactive}

func (s LifecycleStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusProposed, StatusCancelled, StatusActive, StatusInactive:
		return true
	}
	return false
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Match struct {
	ID             string                 `json:"match_id"`
	Status         LifecycleStatus        `json:"status"`
	ProposedBy     string                 `json:"proposed_by,omitempty"`
	MeetingTime    *time.Time             `json:"meeting_time,omitempty"`
	Users          []string               `json:"users"`
	Availabilities []schedule.DaySchedule `json:"availabilities"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// Equal compares identity and lifecycle status only, so two snapshots of
// the same evolving match are equal.
func (m Match) Equal(o Match) bool {
	return m.ID == o.ID && m.Status == o.Status
}

// Pair returns the participant that is not viewerID.
func (m Match) Pair(viewerID string) (string, bool) {
	for _, id := range m.Users {
		if id != viewerID {
			return id, true
		}
	}
	return "", false
}

func (m Match) HasUser(userID string) bool {
	for _, id := range m.Users {
		if id == userID {
			return true
		}
	}
	return false
}

// HasReachedOut reports whether the viewer's last reach-out was on matchID.
func HasReachedOut(lastReachedOutID, matchID string) bool {
	return lastReachedOutID != "" && lastReachedOutID == matchID
}
