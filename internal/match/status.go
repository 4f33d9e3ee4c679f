package match

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"coffeechat-scheduler/internal/schedule"
)

// DefaultNoResponseAfter is how long a created match waits before it counts
// as unanswered.
const DefaultNoResponseAfter = 72 * time.Hour

var (
	ErrUnknownStatus  = errors.New("unknown lifecycle status")
	ErrNoAvailability = errors.New("active match has no availability")
)

type Kind string

const (
	KindPlanning      Kind = "planning"
	KindNoResponses   Kind = "no_responses"
	KindWaitingOn     Kind = "waiting_on"
	KindRespondingTo  Kind = "responding_to"
	KindFinished      Kind = "finished"
	KindCancelled     Kind = "cancelled"
	KindChatScheduled Kind = "chat_scheduled"
)

// ChatStatus is what the viewer sees for a match. Peer is set for
// waiting_on, responding_to, cancelled and chat_scheduled; MeetingDate only
// for chat_scheduled.
type ChatStatus struct {
	Kind        Kind       `json:"kind"`
	Peer        *User      `json:"peer,omitempty"`
	MeetingDate *time.Time `json:"meeting_date,omitempty"`
}

func (s ChatStatus) String() string {
	if s.Peer == nil {
		return string(s.Kind)
	}
	return fmt.Sprintf("%s(%s)", s.Kind, s.Peer.ID)
}

func Planning() ChatStatus    { return ChatStatus{Kind: KindPlanning} }
func NoResponses() ChatStatus { return ChatStatus{Kind: KindNoResponses} }
func Finished() ChatStatus    { return ChatStatus{Kind: KindFinished} }

func WaitingOn(peer *User) ChatStatus    { return ChatStatus{Kind: KindWaitingOn, Peer: peer} }
func RespondingTo(peer *User) ChatStatus { return ChatStatus{Kind: KindRespondingTo, Peer: peer} }
func Cancelled(peer *User) ChatStatus    { return ChatStatus{Kind: KindCancelled, Peer: peer} }

func ChatScheduled(peer *User, at time.Time) ChatStatus {
	return ChatStatus{Kind: KindChatScheduled, Peer: peer, MeetingDate: &at}
}

type Input struct {
	Match           Match
	Pair            *User
	HasReachedOut   bool
	Now             time.Time
	NoResponseAfter time.Duration
}

// Result carries the status and, when the input was inconsistent, the
// anomaly that forced a fallback.
type Result struct {
	Status  ChatStatus
	Anomaly error
}

// Resolve derives the chat status. It never fails: inconsistent input
// degrades to planning or finished with Anomaly set.
func Resolve(in Input) Result {
	m := in.Match

	if elapsed(m, in.Now) {
		return Result{Status: Finished()}
	}

	switch m.Status {
	case StatusCreated:
		wait := in.NoResponseAfter
		if wait <= 0 {
			wait = DefaultNoResponseAfter
		}
		if in.Now.Sub(m.CreatedAt) >= wait {
			return Result{Status: NoResponses()}
		}
		return Result{Status: Planning()}
	case StatusProposed:
		if in.HasReachedOut {
			return Result{Status: WaitingOn(in.Pair)}
		}
		return Result{Status: RespondingTo(in.Pair)}
	case StatusCancelled:
		return Result{Status: Cancelled(in.Pair)}
	case StatusActive:
		at, ok := meetingDate(m, in.Now)
		if !ok {
			return Result{Status: Finished(), Anomaly: fmt.Errorf("match %s: %w", m.ID, ErrNoAvailability)}
		}
		if at.Before(in.Now) {
			return Result{Status: Finished()}
		}
		return Result{Status: ChatScheduled(in.Pair, at)}
	case StatusInactive:
		return Result{Status: Finished()}
	default:
		return Result{Status: Planning(), Anomaly: fmt.Errorf("match %s: %w %q", m.ID, ErrUnknownStatus, m.Status)}
	}
}

// elapsed uses the confirmed meeting time when there is one; otherwise the
// offered availability placed in now's week.
func elapsed(m Match, now time.Time) bool {
	if m.MeetingTime != nil {
		return m.MeetingTime.Before(now)
	}
	return schedule.Elapsed(m.Availabilities, now)
}

func meetingDate(m Match, now time.Time) (time.Time, bool) {
	if m.MeetingTime != nil {
		return *m.MeetingTime, true
	}
	list := m.Availabilities
	if len(list) == 0 {
		return time.Time{}, false
	}
	clocks := list[0].Clocks()
	if len(clocks) == 0 {
		return time.Time{}, false
	}
	return schedule.DateInWeek(now, list[0].Day, clocks[0]), true
}

// Resolver runs Resolve and reports anomalies through its logger.
type Resolver struct {
	Logger          hclog.Logger
	NoResponseAfter time.Duration
}

func NewResolver(logger hclog.Logger, noResponseAfter time.Duration) *Resolver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Resolver{Logger: logger, NoResponseAfter: noResponseAfter}
}

func (r *Resolver) Resolve(m Match, pair *User, hasReachedOut bool, now time.Time) ChatStatus {
	res := Resolve(Input{
		Match:           m,
		Pair:            pair,
		HasReachedOut:   hasReachedOut,
		Now:             now,
		NoResponseAfter: r.NoResponseAfter,
	})
	if res.Anomaly != nil {
		r.Logger.Warn("match status fell back", "match_id", m.ID, "status", string(m.Status),
			"resolved", string(res.Status.Kind), "error", res.Anomaly)
	}
	return res.Status
}
