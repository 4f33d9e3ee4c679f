package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/nats-io/nats.go"

	"coffeechat-scheduler/internal/match"
	"coffeechat-scheduler/internal/schedule"
)

const (
	EventMatchProposed     = "match.proposed"
	EventMatchScheduled    = "match.scheduled"
	EventMatchCancelled    = "match.cancelled"
	EventAvailabilitySaved = "availability.saved"
)

type Event struct {
	Type           string                 `json:"type"`
	MatchID        string                 `json:"match_id,omitempty"`
	UserID         string                 `json:"user_id,omitempty"`
	Status         match.LifecycleStatus  `json:"status,omitempty"`
	MeetingTime    *time.Time             `json:"meeting_time,omitempty"`
	Availabilities []schedule.DaySchedule `json:"availabilities,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close()
}

type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	logger hclog.Logger
}

func NewNATSPublisher(url, prefix string, logger hclog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("coffeechat-scheduler"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("connected to NATS", "url", url)
	return &NATSPublisher{nc: nc, prefix: prefix, logger: logger}, nil
}

func (p *NATSPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *NATSPublisher) Publish(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := p.Subject(ev.Type)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	p.logger.Debug("published event", "subject", subject, "match_id", ev.MatchID, "user_id", ev.UserID)
	return nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			p.nc.Close()
		}
	}
}

// NopPublisher drops events; used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close()                                {}
