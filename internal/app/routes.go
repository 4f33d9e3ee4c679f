package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func NewRouter(a *App, auth gin.HandlerFunc) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// OAuth2 callback (must be before auth middleware)
	router.GET("/oauth2callback", a.GoogleOAuth2CallbackHandler)

	api := router.Group("/api", auth)
	{
		users := api.Group("/users")
		{
			users.GET("/:id/availability", a.ListAvailabilityHandler)
			users.PUT("/:id/availability", a.SetAvailabilityHandler)
		}

		selections := api.Group("/selections")
		{
			selections.POST("", a.CreateSelectionHandler)
			selections.GET("/:id", a.GetSelectionHandler)
			selections.POST("/:id/slots", a.AddSlotHandler)
			selections.DELETE("/:id/slots", a.RemoveSlotHandler)
			selections.POST("/:id/save", a.SaveSelectionHandler)
		}

		matches := api.Group("/matches")
		{
			matches.GET("", a.ListMatchesHandler)
			matches.GET("/:id", a.GetMatchHandler)
			matches.POST("/:id/reach-out", a.ReachOutHandler)
			matches.POST("/:id/cancel", a.CancelMatchHandler)
			matches.POST("/:id/calendar", a.ExportMatchHandler)
		}

		api.GET("/calendar/auth", a.GoogleAuthHandler)
	}

	return router, nil
}
