package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/puttparty/backend/internal/config"
	"github.com/puttparty/backend/internal/game"
	"github.com/puttparty/backend/internal/middleware"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

func tokenTTL(cfg *config.Config) time.Duration {
	if cfg.SessionTimeoutMin <= 0 {
		return 3 * time.Hour
	}
	return time.Duration(cfg.SessionTimeoutMin) * time.Minute
}

// CreateGame starts a new session and returns its host token
func CreateGame(m *game.Manager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayersCount int    `json:"players_count"`
			Course       string `json:"course"`
			Mode         string `json:"mode"`
			Passcode     string `json:"passcode"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		s, err := m.CreateSession(game.CreateRequest{
			PlayersCount: req.PlayersCount,
			Course:       req.Course,
			Mode:         req.Mode,
			Passcode:     req.Passcode,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		hostToken, err := middleware.IssueSessionToken(cfg.JWTSecret, s.Token, middleware.RoleHost, tokenTTL(cfg))
		if err != nil {
			log.Printf("Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Header("X-Game-Token", s.Token)
		c.JSON(http.StatusCreated, gin.H{
			"game":       s.Info(),
			"host_token": hostToken,
			"join_url":   joinLink(cfg, s.Token),
			"ws_path":    "/api/v1/game/" + s.Token + "/ws",
		})
	}
}

// GetGameState returns session info and the latest frame
func GetGameState(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		stored, err := m.GetStoredSession(c.Param("token"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stored)
	}
}

// GetScoreboard returns the stroke table of a running or finished game
func GetScoreboard(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		stored, err := m.GetStoredSession(token)
		if err == nil {
			var pars []int
			if course, cerr := m.Courses().Get(stored.Info.Course); cerr == nil {
				for _, h := range course.Holes {
					pars = append(pars, h.Par)
				}
			}
			c.JSON(http.StatusOK, gin.H{
				"token":   token,
				"status":  stored.Info.Status,
				"pars":    pars,
				"players": stored.Frame.Game.Players,
				"strokes": stored.Frame.Game.Strokes,
			})
			return
		}

		scores, err := m.SessionScores(token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":  token,
			"status": game.StatusCompleted,
			"scores": scores,
		})
	}
}

// JoinGame checks the passcode and issues a spectator token
func JoinGame(m *game.Manager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.GetSession(c.Param("token"))
		if err != nil {
			respondError(c, err)
			return
		}

		var req struct {
			Passcode string `json:"passcode"`
		}
		// empty body is fine for games without a passcode
		_ = c.ShouldBindJSON(&req)

		if err := s.CheckPasscode(req.Passcode); err != nil {
			respondError(c, err)
			return
		}

		token, err := middleware.IssueSessionToken(cfg.JWTSecret, s.Token, middleware.RoleSpectator, tokenTTL(cfg))
		if err != nil {
			log.Printf("Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"game":            s.Info(),
			"spectator_token": token,
			"ws_path":         "/api/v1/game/" + s.Token + "/ws",
		})
	}
}

// GetJoinQR renders the spectator join link as a PNG QR code
func GetJoinQR(m *game.Manager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.GetSession(c.Param("token"))
		if err != nil {
			respondError(c, err)
			return
		}
		png, err := qrcode.Encode(joinLink(cfg, s.Token), qrcode.Medium, qrSize)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}

// EndGame cancels a running game. Host only.
func EndGame(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isHost(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "host token required"})
			return
		}
		token := c.Param("token")
		if err := m.EndSession(token); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "status": game.StatusCancelled})
	}
}
