package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/shared/server/respond"
)

const (
	userIDKey  = "userId"
	isGuestKey = "isGuest"

	// UserIDHeader carries the identity resolved by the upstream auth layer.
	UserIDHeader = "X-User-Id"
	// GuestIDHeader carries an anonymous client identifier.
	GuestIDHeader = "X-Guest-Id"

	guestPrefix = "guest:"
)

// Auth resolves the caller from identity headers and stores it in context.
// Tokens are verified upstream; this layer only requires that one is present.
// Paths in public pass through without identity.
func Auth(public ...string) gin.HandlerFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		if open[c.Request.URL.Path] {
			c.Next()
			return
		}

		if userID := strings.TrimSpace(c.GetHeader(UserIDHeader)); userID != "" {
			if strings.HasPrefix(userID, guestPrefix) {
				respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid user id", nil)
				return
			}
			c.Set(userIDKey, userID)
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader(GuestIDHeader))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "Missing identity", nil)
			return
		}

		c.Set(userIDKey, guestPrefix+guestID)
		c.Set(isGuestKey, true)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// IsGuest reports whether the caller identified with a guest header.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(isGuestKey)
}
