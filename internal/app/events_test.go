package app

import (
	"context"
	"testing"
)

func TestNATSSubject(t *testing.T) {
	tests := []struct {
		prefix string
		event  string
		want   string
	}{
		{"coffeechat", EventMatchProposed, "coffeechat.match.proposed"},
		{"coffeechat", EventAvailabilitySaved, "coffeechat.availability.saved"},
		{"", EventMatchCancelled, "match.cancelled"},
	}
	for _, tt := range tests {
		p := &NATSPublisher{prefix: tt.prefix}
		if got := p.Subject(tt.event); got != tt.want {
			t.Errorf("Subject(%q) with prefix %q = %q, want %q", tt.event, tt.prefix, got, tt.want)
		}
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), Event{Type: EventMatchScheduled}); err != nil {
		t.Errorf("Publish: %v", err)
	}
	p.Close()
}
