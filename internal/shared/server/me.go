package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/shared/server/middleware"
	"resume-ats/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

// meHandler echoes the identity the auth middleware resolved.
func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "Missing identity", nil)
		return
	}
	respond.OK(c, gin.H{
		"userId":  userID,
		"isGuest": middleware.IsGuest(c),
	})
}
