package app

import (
	"context"
	"errors"

	"coffeechat-scheduler/internal/match"
	"coffeechat-scheduler/internal/schedule"
)

var ErrNotFound = errors.New("not found")

// Store persists saved availability, matches and reach-out flags.
type Store interface {
	GetUser(ctx context.Context, id string) (*match.User, error)

	// GetAvailability returns an empty list for users who never saved one.
	GetAvailability(ctx context.Context, userID string) ([]schedule.DaySchedule, error)
	SaveAvailability(ctx context.Context, userID string, list []schedule.DaySchedule) error

	ListMatches(ctx context.Context, userID string) ([]match.Match, error)
	GetMatch(ctx context.Context, id string) (*match.Match, error)
	// UpdateMatch loads the match under a row lock, applies fn and writes the
	// result back. Nothing is written when fn returns an error.
	UpdateMatch(ctx context.Context, id string, fn func(*match.Match) error) (*match.Match, error)

	// LastReachedOut returns "" when the user never reached out.
	LastReachedOut(ctx context.Context, userID string) (string, error)
	SetLastReachedOut(ctx context.Context, userID, matchID string) error
}
