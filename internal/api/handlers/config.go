package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/puttparty/backend/internal/config"
	"github.com/puttparty/backend/internal/game"
)

// GetConfig returns the game settings a client needs to build its lobby
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tick_rate":              cfg.TickRate,
			"min_players":            game.MinPlayers,
			"max_players":            game.MaxPlayers,
			"menu_max_players":       game.MenuPlayerLimit(cfg.MenuMaxPlayers),
			"default_course":         cfg.DefaultCourse,
			"game_start_delay_secs":  cfg.GameStartDelaySecs,
			"turn_change_delay_secs": cfg.TurnChangeDelaySecs,
			"hole_finish_delay_secs": cfg.HoleFinishDelaySecs,
			"end_game_delay_secs":    cfg.EndGameDelaySecs,
			"force_min":              game.ForceMin,
			"force_max":              game.ForceMax,
			"debug_controls":         cfg.DebugControls,
		})
	}
}
