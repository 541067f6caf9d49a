package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/puttparty/backend/internal/config"
	"github.com/puttparty/backend/internal/game"
	"github.com/puttparty/backend/internal/middleware"
)

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
	case errors.Is(err, game.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrInvalidConfiguration):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrInvalidPasscode):
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid passcode"})
	case errors.Is(err, game.ErrTooManySessions):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Printf("[API] internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// joinLink is the spectator link encoded in the QR code
func joinLink(cfg *config.Config, token string) string {
	return strings.TrimRight(cfg.FrontendURL, "/") + "/g/" + token
}

// isHost reports whether the request carries a host session token
func isHost(c *gin.Context) bool {
	return c.GetString(middleware.ContextRole) == middleware.RoleHost
}
