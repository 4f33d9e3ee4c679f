package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"

	"coffeechat-scheduler/internal/config"
	"coffeechat-scheduler/internal/match"
	"coffeechat-scheduler/internal/schedule"
)

func exportRequest(f *fixture, matchID, viewer, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/matches/"+matchID+"/calendar", nil)
	req.Header.Set("Authorization", "Bearer "+testStatic)
	req.Header.Set("X-User-ID", viewer)
	if token != "" {
		req.Header.Set("X-Google-Token", token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func googleToken(t *testing.T) string {
	t.Helper()
	b, err := json.Marshal(&oauth2.Token{AccessToken: "access", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestNewGoogleCalendarConfig(t *testing.T) {
	partial := config.Config{Google: config.GoogleConfig{ClientID: "id"}}
	if partial.GoogleEnabled() || NewGoogleCalendarConfig(partial.Google) != nil {
		t.Error("partial credentials should disable the calendar")
	}
	full := config.Config{Google: config.GoogleConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/oauth2callback"}}
	if !full.GoogleEnabled() {
		t.Error("full credentials should enable the calendar")
	}
	cal := NewGoogleCalendarConfig(full.Google)
	if cal == nil || cal.Insert == nil {
		t.Fatal("expected calendar config")
	}
	if len(cal.Config.Scopes) != 1 || cal.Config.Scopes[0] != calendar.CalendarEventsScope {
		t.Errorf("scopes = %v", cal.Config.Scopes)
	}
}

func TestExportMatch(t *testing.T) {
	f := newFixture(t)
	meeting := time.Date(2026, time.October, 22, 18, 0, 0, 0, time.UTC)
	f.addMatch(match.Match{
		ID:             "scheduled",
		Status:         match.StatusActive,
		MeetingTime:    &meeting,
		Availabilities: []schedule.DaySchedule{{Day: schedule.Thursday, Times: []float64{18}}},
	})
	f.addMatch(match.Match{ID: "planning", Status: match.StatusCreated, CreatedAt: testNow})

	expectStatus(t, exportRequest(f, "scheduled", "u-1", googleToken(t)), http.StatusServiceUnavailable)

	var (
		inserted  *calendar.Event
		insertErr error
	)
	f.app.Calendar = &GoogleCalendarConfig{
		Config: &oauth2.Config{ClientID: "id"},
		Insert: func(_ context.Context, client *http.Client, ev *calendar.Event) (*calendar.Event, error) {
			if client == nil {
				t.Error("expected an authorized client")
			}
			if insertErr != nil {
				return nil, insertErr
			}
			inserted = ev
			return &calendar.Event{Id: "evt-1", HtmlLink: "https://calendar.example/evt-1"}, nil
		},
	}

	expectStatus(t, exportRequest(f, "scheduled", "u-1", ""), http.StatusBadRequest)
	expectStatus(t, exportRequest(f, "scheduled", "u-1", "not json"), http.StatusBadRequest)
	expectStatus(t, exportRequest(f, "planning", "u-1", googleToken(t)), http.StatusConflict)
	expectStatus(t, exportRequest(f, "scheduled", "u-3", googleToken(t)), http.StatusForbidden)

	rr := exportRequest(f, "scheduled", "u-1", googleToken(t))
	expectStatus(t, rr, http.StatusCreated)
	if inserted == nil {
		t.Fatal("event was not inserted")
	}
	if inserted.Summary != "Coffee chat with Ada" {
		t.Errorf("summary = %q", inserted.Summary)
	}
	if inserted.Start.DateTime != "2026-10-22T18:00:00Z" || inserted.End.DateTime != "2026-10-22T18:30:00Z" {
		t.Errorf("start/end = %s/%s", inserted.Start.DateTime, inserted.End.DateTime)
	}
	if len(inserted.Attendees) != 1 || inserted.Attendees[0].Email != "ada@example.com" {
		t.Errorf("attendees = %+v", inserted.Attendees)
	}
	body := decode[map[string]string](t, rr)
	if body["event_id"] != "evt-1" {
		t.Errorf("body = %v", body)
	}

	insertErr = errors.New("quota exceeded")
	expectStatus(t, exportRequest(f, "scheduled", "u-1", googleToken(t)), http.StatusBadGateway)
}

func TestMeetingEventUsesServiceZone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	a := New(Options{Location: berlin})
	a.Now = func() time.Time { return testNow.In(berlin) }

	// as scanned from the database: an anonymous host zone
	stored := time.Date(2026, time.October, 22, 18, 0, 0, 0, time.UTC).In(time.FixedZone("", 3600))
	ev := a.meetingEvent(MatchView{
		Match:      match.Match{ID: "m1"},
		ChatStatus: match.ChatScheduled(&match.User{ID: "u-2", Name: "Ada"}, stored),
	})

	if ev.Start.TimeZone != "Europe/Berlin" || ev.End.TimeZone != "Europe/Berlin" {
		t.Errorf("time zones = %q/%q", ev.Start.TimeZone, ev.End.TimeZone)
	}
	if ev.Start.DateTime != "2026-10-22T20:00:00+02:00" {
		t.Errorf("start = %s", ev.Start.DateTime)
	}
	if ev.Summary != "Coffee chat with Ada" || ev.Attendees != nil {
		t.Errorf("event = %+v", ev)
	}
}
