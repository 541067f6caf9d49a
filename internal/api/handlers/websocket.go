package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/puttparty/backend/internal/config"
	"github.com/puttparty/backend/internal/ws"
)

// HandleGameWebSocket handles real-time game communication
func HandleGameWebSocket(h *ws.Hub, cfg *config.Config) gin.HandlerFunc {
	return ws.HandleWebSocket(h, cfg)
}
