package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/puttparty/backend/internal/api"
	"github.com/puttparty/backend/internal/config"
	"github.com/puttparty/backend/internal/database"
	"github.com/puttparty/backend/internal/game"
	"github.com/puttparty/backend/internal/migrations"
	"github.com/puttparty/backend/internal/redis"
	"github.com/puttparty/backend/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Initialize configuration (loads .env when present)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		// Run migrations on start if requested
		if os.Getenv("MIGRATE_ON_START") == "true" {
			log.Println("Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseDriver, cfg.DatabaseURL, "migrations"); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		var err error
		db, err = database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
	} else {
		log.Println("[DB] DATABASE_URL empty; results will not be stored")
	}

	// Initialize Redis
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	} else {
		log.Println("[REDIS] REDIS_URL empty; running without snapshots or pub/sub")
	}

	// Load courses
	courses := game.NewCourseRegistry()
	if err := courses.Register(game.StandardCourse()); err != nil {
		log.Fatalf("Built-in course invalid: %v", err)
	}
	if n, err := courses.LoadDir(cfg.CoursesDir); err != nil {
		log.Printf("[COURSE] Could not read %s: %v", cfg.CoursesDir, err)
	} else {
		log.Printf("[COURSE] %d course(s) loaded from %s", n, cfg.CoursesDir)
	}
	if _, err := courses.Get(cfg.DefaultCourse); err != nil {
		log.Fatalf("Default course: %v", err)
	}

	// Initialize game manager and websocket hub
	manager := game.NewManager(db, rdb, cfg, courses)
	hub := ws.NewHub(manager)
	manager.SetBroadcaster(hub)
	go hub.Run(ctx)

	ws.StartEventSubscriber(ctx, rdb, hub)
	game.StartIdleReaper(ctx, manager)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, manager, hub, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting PuttParty server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	manager.Shutdown()
}
