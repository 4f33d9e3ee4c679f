package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const viewerKey = "viewer_id"

// AuthMiddleware accepts HMAC-signed JWTs (viewer from the sub claim) or
// static tokens (viewer from the X-User-ID header).
func AuthMiddleware(jwtSecret string, staticTokens []string) gin.HandlerFunc {
	jwtSecret = strings.TrimSpace(jwtSecret)

	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		tokenStr := parts[1]

		// JWT path
		if jwtSecret != "" {
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenMalformed
				}
				return []byte(jwtSecret), nil
			}, jwt.WithLeeway(5*time.Second))
			if err == nil {
				sub, err := token.Claims.GetSubject()
				if err != nil || sub == "" {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
					return
				}
				c.Set(viewerKey, sub)
				c.Next()
				return
			}
		}

		// static tokens
		for _, t := range staticTokens {
			if t != "" && tokenStr == strings.TrimSpace(t) {
				viewer := strings.TrimSpace(c.GetHeader("X-User-ID"))
				if viewer == "" {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID required with static token"})
					return
				}
				c.Set(viewerKey, viewer)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	}
}

func viewerID(c *gin.Context) string {
	return c.GetString(viewerKey)
}
