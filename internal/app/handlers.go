package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coffeechat-scheduler/internal/schedule"
)

// writeError maps service errors to status codes.
func (a *App) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, schedule.ErrInvalidDay), errors.Is(err, schedule.ErrInvalidTime):
		status = http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrEmptySelection), errors.Is(err, ErrSlotNotOffered):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		a.Logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// GET /users/:id/availability
func (a *App) ListAvailabilityHandler(c *gin.Context) {
	userID := c.Param("id")
	list, err := a.Store.GetAvailability(c.Request.Context(), userID)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule.Normalize(list))
}

// PUT /users/:id/availability
// Replaces the saved availability with the posted list.
func (a *App) SetAvailabilityHandler(c *gin.Context) {
	userID := c.Param("id")
	if userID != viewerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "can only edit your own availability"})
		return
	}
	var payload []schedule.DaySchedule
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := a.SaveAvailability(c.Request.Context(), userID, payload)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// POST /selections
func (a *App) CreateSelectionHandler(c *gin.Context) {
	var req createSelectionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode, err := schedule.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := a.StartSelection(c.Request.Context(), viewerID(c), mode, req.MatchID)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GET /selections/:id
func (a *App) GetSelectionHandler(c *gin.Context) {
	view, err := a.Sessions.Get(c.Param("id"), viewerID(c))
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /selections/:id/slots
func (a *App) AddSlotHandler(c *gin.Context) {
	var req slotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a.updateSelection(c, req, (*schedule.Selection).Add)
}

// DELETE /selections/:id/slots?day=&time=
func (a *App) RemoveSlotHandler(c *gin.Context) {
	var req slotReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a.updateSelection(c, req, (*schedule.Selection).Remove)
}

func (a *App) updateSelection(c *gin.Context, req slotReq, op func(*schedule.Selection, schedule.Day, string) error) {
	day, err := schedule.ParseDay(req.Day)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := a.Sessions.With(c.Param("id"), viewerID(c), func(s *Session) error {
		return op(s.Selection, day, req.Time)
	})
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /selections/:id/save
func (a *App) SaveSelectionHandler(c *gin.Context) {
	res, err := a.SaveSelection(c.Request.Context(), viewerID(c), c.Param("id"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /matches
func (a *App) ListMatchesHandler(c *gin.Context) {
	views, err := a.ListMatches(c.Request.Context(), viewerID(c))
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GET /matches/:id
func (a *App) GetMatchHandler(c *gin.Context) {
	view, err := a.GetMatch(c.Request.Context(), viewerID(c), c.Param("id"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /matches/:id/reach-out
// The body is optional; without one the viewer's saved availability is offered.
func (a *App) ReachOutHandler(c *gin.Context) {
	var req reachOutReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	ctx := c.Request.Context()
	viewer := viewerID(c)
	m, err := a.ReachOut(ctx, viewer, c.Param("id"), req.Availabilities)
	if err != nil {
		a.writeError(c, err)
		return
	}
	view, err := a.View(ctx, viewer, *m)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /matches/:id/cancel
func (a *App) CancelMatchHandler(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := viewerID(c)
	m, err := a.Cancel(ctx, viewer, c.Param("id"))
	if err != nil {
		a.writeError(c, err)
		return
	}
	view, err := a.View(ctx, viewer, *m)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
