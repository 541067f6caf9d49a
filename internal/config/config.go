package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseDriver string
	DatabaseURL    string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Game Settings
	TickRate               int
	GameStartDelaySecs     float64
	TurnChangeDelaySecs    float64
	HoleFinishDelaySecs    float64
	EndGameDelaySecs       float64
	DebugControls          bool
	CoursesDir             string
	DefaultCourse          string
	MenuMaxPlayers         int
	MaxSessions            int
	SessionIdleMinutes     int
	IdleWorkerPollInterval int

	// Security
	JWTSecret         string
	SessionTimeoutMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/puttparty?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Game Settings
		TickRate:               getEnvInt("TICK_RATE", 60),
		GameStartDelaySecs:     getEnvFloat("GAME_START_DELAY_SECONDS", 4),
		TurnChangeDelaySecs:    getEnvFloat("TURN_CHANGE_DELAY_SECONDS", 3),
		HoleFinishDelaySecs:    getEnvFloat("HOLE_FINISH_DELAY_SECONDS", 4),
		EndGameDelaySecs:       getEnvFloat("END_GAME_DELAY_SECONDS", 15),
		DebugControls:          getEnvBool("DEBUG_CONTROLS", false),
		CoursesDir:             getEnv("COURSES_DIR", "courses"),
		DefaultCourse:          getEnv("DEFAULT_COURSE", "classic"),
		MenuMaxPlayers:         getEnvInt("MENU_MAX_PLAYERS", 4),
		MaxSessions:            getEnvInt("MAX_SESSIONS", 200),
		SessionIdleMinutes:     getEnvInt("SESSION_IDLE_MINUTES", 30),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_INTERVAL", 30),

		// Security
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTimeoutMin: getEnvInt("SESSION_TIMEOUT_MINUTES", 180),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
