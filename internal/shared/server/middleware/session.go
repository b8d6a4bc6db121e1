package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"career-mentor/internal/shared/util"
)

const sessionIDKey = "sessionId"

// SessionConfig controls the session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session issues a random session id cookie when the browser has none, and
// stores the id in the gin context. Ids that are not UUIDs are replaced.
func Session(cfg SessionConfig) gin.HandlerFunc {
	name := strings.TrimSpace(cfg.CookieName)
	if name == "" {
		name = "cm_session"
	}
	maxAge := int(cfg.TTL / time.Second)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		id, err := c.Cookie(name)
		if err != nil || !validSessionID(id) {
			id = uuid.NewString()
		}
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    id,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID stored by Session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(sessionIDKey)
}

// SessionKey is the hashed session id safe to put in logs.
func SessionKey(c *gin.Context) string {
	return util.ShortHash(SessionIDFromContext(c))
}

func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
