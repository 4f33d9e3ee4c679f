package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"coffeechat-scheduler/internal/config"
	"coffeechat-scheduler/internal/match"
)

// EventInserter creates an event on the primary calendar of the token's owner.
type EventInserter func(ctx context.Context, client *http.Client, ev *calendar.Event) (*calendar.Event, error)

// GoogleCalendarConfig holds OAuth2 configuration
type GoogleCalendarConfig struct {
	Config *oauth2.Config
	Insert EventInserter
}

// NewGoogleCalendarConfig returns nil when credentials are not configured.
func NewGoogleCalendarConfig(cfg config.GoogleConfig) *GoogleCalendarConfig {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil
	}

	return &GoogleCalendarConfig{
		Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
		Insert: insertPrimaryEvent,
	}
}

func insertPrimaryEvent(ctx context.Context, client *http.Client, ev *calendar.Event) (*calendar.Event, error) {
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return srv.Events.Insert("primary", ev).Context(ctx).Do()
}

// GET /calendar/auth
func (a *App) GoogleAuthHandler(c *gin.Context) {
	if a.Calendar == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google Calendar not configured"})
		return
	}

	state := fmt.Sprintf("user_%s_%d", viewerID(c), time.Now().Unix())
	url := a.Calendar.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.JSON(http.StatusOK, gin.H{
		"auth_url": url,
		"state":    state,
	})
}

// GET /oauth2callback
func (a *App) GoogleOAuth2CallbackHandler(c *gin.Context) {
	if a.Calendar == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google Calendar not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}

	token, err := a.Calendar.Config.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to exchange code for token"})
		return
	}

	// The client keeps the token and sends it back in X-Google-Token.
	tokenJSON, _ := json.Marshal(token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Authorization successful",
		"state":   c.Query("state"),
		"token":   string(tokenJSON),
	})
}

// POST /matches/:id/calendar
// Adds a scheduled chat to the viewer's Google Calendar.
func (a *App) ExportMatchHandler(c *gin.Context) {
	if a.Calendar == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google Calendar not configured"})
		return
	}

	tokenStr := c.GetHeader("X-Google-Token")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Google token required in X-Google-Token header"})
		return
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(tokenStr), &token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token format"})
		return
	}

	ctx := c.Request.Context()
	view, err := a.GetMatch(ctx, viewerID(c), c.Param("id"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	if view.ChatStatus.Kind != match.KindChatScheduled || view.ChatStatus.MeetingDate == nil {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("match is %s, no chat scheduled", view.ChatStatus.Kind)})
		return
	}

	ev := a.meetingEvent(view)
	client := a.Calendar.Config.Client(ctx, &token)
	created, err := a.Calendar.Insert(ctx, client, ev)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("failed to create event: %v", err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"event_id":  created.Id,
		"html_link": created.HtmlLink,
		"start":     ev.Start.DateTime,
		"end":       ev.End.DateTime,
	})
}

func (a *App) meetingEvent(view MatchView) *calendar.Event {
	// stored times may come back in the host zone; name the service's zone instead
	start := view.ChatStatus.MeetingDate.In(a.Now().Location())
	end := start.Add(a.MeetingLength)

	summary := "Coffee chat"
	ev := &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: start.Location().String()},
		End:   &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: end.Location().String()},
	}
	if peer := view.ChatStatus.Peer; peer != nil {
		if peer.Name != "" {
			summary = "Coffee chat with " + peer.Name
		}
		if peer.Email != "" {
			ev.Attendees = []*calendar.EventAttendee{{Email: peer.Email, DisplayName: peer.Name}}
		}
	}
	ev.Summary = summary
	ev.Description = fmt.Sprintf("Scheduled through coffee chat (match %s).", view.ID)
	return ev
}
