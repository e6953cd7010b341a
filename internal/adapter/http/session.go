package http

import (
	"net/http"
	"strings"

	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Cart-Session"
	SessionCookie = "cart_session"
	sessionKey    = "cart_session"
	sessionMaxAge = 30 * 24 * 60 * 60 // seconds
)

// Session resolves the cart session from header or cookie and issues a new
// one when the client has none. A malformed header is rejected; a malformed
// cookie is replaced.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(SessionHeader))
		if id != "" && !usecase.ValidSessionID(id) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "session_required"})
			return
		}
		if id == "" {
			if v, err := c.Cookie(SessionCookie); err == nil && usecase.ValidSessionID(strings.TrimSpace(v)) {
				id = strings.TrimSpace(v)
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, sessionMaxAge, "/", "", false, true)
		c.Header(SessionHeader, id)
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) string {
	return c.GetString(sessionKey)
}
