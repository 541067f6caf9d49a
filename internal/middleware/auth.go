package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/puttparty/backend/internal/config"
)

// Session roles carried in tokens.
const (
	RoleHost      = "host"
	RoleSpectator = "spectator"
)

// Context keys set by SessionAuth.
const (
	ContextRole      = "session_role"
	ContextGameToken = "game_token"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims identify a client of one game session.
type SessionClaims struct {
	GameToken string
	Role      string
	ExpiresAt time.Time
}

// IssueSessionToken signs a token granting role on the game with gameToken.
func IssueSessionToken(secret, gameToken, role string, ttl time.Duration) (string, error) {
	exp := time.Now().Add(ttl)
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	custom := jwt.MapClaims{"game_token": gameToken, "role": role, "exp": claims.ExpiresAt.Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, custom)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates a signed session token.
func ParseSessionToken(secret, token string) (*SessionClaims, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	gameToken, _ := claims["game_token"].(string)
	role, _ := claims["role"].(string)
	if gameToken == "" || (role != RoleHost && role != RoleSpectator) {
		return nil, ErrInvalidToken
	}
	out := &SessionClaims{GameToken: gameToken, Role: role}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}

// SessionAuth validates the session token from the Authorization header or the
// t query parameter against the :token route parameter.
func SessionAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("t")
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := ParseSessionToken(cfg.JWTSecret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.GameToken != c.Param("token") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token not valid for this game"})
			return
		}

		c.Set(ContextRole, claims.Role)
		c.Set(ContextGameToken, claims.GameToken)
		c.Next()
	}
}
