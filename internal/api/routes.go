package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/puttparty/backend/internal/api/handlers"
	"github.com/puttparty/backend/internal/config"
	"github.com/puttparty/backend/internal/game"
	"github.com/puttparty/backend/internal/middleware"
	"github.com/puttparty/backend/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, m *game.Manager, hub *ws.Hub, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(m))
		v1.GET("/config", handlers.GetConfig(cfg))

		courses := v1.Group("/courses")
		{
			courses.GET("", handlers.ListCourses(m))
			courses.GET("/:name", handlers.GetCourse(m))
			courses.GET("/:name/leaderboard", handlers.GetLeaderboard(m))
		}

		g := v1.Group("/game")
		{
			g.POST("", handlers.CreateGame(m, cfg))
			g.GET("/:token", handlers.GetGameState(m))
			g.GET("/:token/scoreboard", handlers.GetScoreboard(m))
			g.POST("/:token/join", handlers.JoinGame(m, cfg))
			g.GET("/:token/qr", handlers.GetJoinQR(m, cfg))
			g.DELETE("/:token", middleware.SessionAuth(cfg), handlers.EndGame(m))
			g.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), middleware.SessionAuth(cfg), handlers.HandleGameWebSocket(hub, cfg))
		}
	}
}
