package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coffeechat-scheduler/internal/match"
	"coffeechat-scheduler/internal/schedule"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS user_availability (
	user_id    TEXT PRIMARY KEY,
	schedules  JSONB NOT NULL DEFAULT '[]',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS matches (
	id             TEXT PRIMARY KEY,
	status         TEXT NOT NULL,
	proposed_by    TEXT NOT NULL DEFAULT '',
	meeting_time   TIMESTAMPTZ,
	user_ids       TEXT[] NOT NULL,
	availabilities JSONB NOT NULL DEFAULT '[]',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

ALTER TABLE matches ADD COLUMN IF NOT EXISTS proposed_by TEXT NOT NULL DEFAULT '';

CREATE INDEX IF NOT EXISTS matches_user_ids_idx ON matches USING GIN (user_ids);

CREATE TABLE IF NOT EXISTS reach_outs (
	user_id    TEXT PRIMARY KEY,
	match_id   TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{DB: pool}
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PGStore) GetUser(ctx context.Context, id string) (*match.User, error) {
	var u match.User
	err := s.DB.QueryRow(ctx, `SELECT id,name,email FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PGStore) GetAvailability(ctx context.Context, userID string) ([]schedule.DaySchedule, error) {
	var raw []byte
	err := s.DB.QueryRow(ctx, `SELECT schedules FROM user_availability WHERE user_id=$1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []schedule.DaySchedule{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSchedules(raw)
}

func (s *PGStore) SaveAvailability(ctx context.Context, userID string, list []schedule.DaySchedule) error {
	raw, err := json.Marshal(schedule.Normalize(list))
	if err != nil {
		return err
	}
	q := `INSERT INTO user_availability (user_id, schedules, updated_at)
	      VALUES ($1,$2,$3)
	      ON CONFLICT (user_id) DO UPDATE SET schedules=EXCLUDED.schedules, updated_at=EXCLUDED.updated_at`
	_, err = s.DB.Exec(ctx, q, userID, raw, time.Now().UTC())
	return err
}

const matchColumns = `id,status,proposed_by,meeting_time,user_ids,availabilities,created_at,updated_at`

func (s *PGStore) ListMatches(ctx context.Context, userID string) ([]match.Match, error) {
	q := `SELECT ` + matchColumns + ` FROM matches WHERE $1 = ANY(user_ids) ORDER BY created_at DESC`
	rows, err := s.DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []match.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *PGStore) GetMatch(ctx context.Context, id string) (*match.Match, error) {
	q := `SELECT ` + matchColumns + ` FROM matches WHERE id=$1`
	m, err := scanMatch(s.DB.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *PGStore) UpdateMatch(ctx context.Context, id string, fn func(*match.Match) error) (*match.Match, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `SELECT ` + matchColumns + ` FROM matches WHERE id=$1 FOR UPDATE`
	m, err := scanMatch(tx.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := fn(m); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(m.Availabilities)
	if err != nil {
		return nil, err
	}
	m.UpdatedAt = time.Now().UTC()

	updateQ := `UPDATE matches SET status=$1, proposed_by=$2, meeting_time=$3, availabilities=$4, updated_at=$5 WHERE id=$6`
	if _, err := tx.Exec(ctx, updateQ, string(m.Status), m.ProposedBy, m.MeetingTime, raw, m.UpdatedAt, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *PGStore) LastReachedOut(ctx context.Context, userID string) (string, error) {
	var matchID string
	err := s.DB.QueryRow(ctx, `SELECT match_id FROM reach_outs WHERE user_id=$1`, userID).Scan(&matchID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return matchID, err
}

func (s *PGStore) SetLastReachedOut(ctx context.Context, userID, matchID string) error {
	q := `INSERT INTO reach_outs (user_id, match_id, updated_at) VALUES ($1,$2,$3)
	      ON CONFLICT (user_id) DO UPDATE SET match_id=EXCLUDED.match_id, updated_at=EXCLUDED.updated_at`
	_, err := s.DB.Exec(ctx, q, userID, matchID, time.Now().UTC())
	return err
}

func scanMatch(row pgx.Row) (*match.Match, error) {
	var (
		m      match.Match
		status string
		raw    []byte
	)
	if err := row.Scan(&m.ID, &status, &m.ProposedBy, &m.MeetingTime, &m.Users, &raw, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Status = match.LifecycleStatus(status)
	list, err := decodeSchedules(raw)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", m.ID, err)
	}
	m.Availabilities = list
	return &m, nil
}

func decodeSchedules(raw []byte) ([]schedule.DaySchedule, error) {
	list := []schedule.DaySchedule{}
	if len(raw) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}
	return list, nil
}
