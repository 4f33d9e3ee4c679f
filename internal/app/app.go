package app

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"coffeechat-scheduler/internal/match"
)

type App struct {
	Store    Store
	Sessions *SessionStore
	Events   Publisher
	Resolver *match.Resolver
	Calendar *GoogleCalendarConfig
	Logger   hclog.Logger

	// Now is the clock weekdays are evaluated against; it carries the
	// configured location.
	Now           func() time.Time
	MeetingLength time.Duration
}

type Options struct {
	Store           Store
	Events          Publisher
	Calendar        *GoogleCalendarConfig
	Logger          hclog.Logger
	Location        *time.Location
	NoResponseAfter time.Duration
	SessionTTL      time.Duration
	MeetingLength   time.Duration
}

func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	events := opts.Events
	if events == nil {
		events = NopPublisher{}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	meeting := opts.MeetingLength
	if meeting <= 0 {
		meeting = 30 * time.Minute
	}
	return &App{
		Store:         opts.Store,
		Sessions:      NewSessionStore(opts.SessionTTL, logger.Named("sessions")),
		Events:        events,
		Resolver:      match.NewResolver(logger.Named("resolver"), opts.NoResponseAfter),
		Calendar:      opts.Calendar,
		Logger:        logger,
		Now:           func() time.Time { return time.Now().In(loc) },
		MeetingLength: meeting,
	}
}
