package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Optional .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/admin-portal/internal/config"     // Internal config loader
	"github.com/iliyamo/admin-portal/internal/database"   // MySQL connection
	"github.com/iliyamo/admin-portal/internal/handler"    // HTTP handlers
	"github.com/iliyamo/admin-portal/internal/middleware" // Response cache middleware
	"github.com/iliyamo/admin-portal/internal/queue"      // Audit event consumer
	"github.com/iliyamo/admin-portal/internal/repository" // Database repositories
	"github.com/iliyamo/admin-portal/internal/router"     // Route registration
	"github.com/iliyamo/admin-portal/internal/service"    // Auth core + audit recorder
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Repositories over the shared connection pool.
	users := repository.NewUserRepo(db)
	keys := repository.NewKeyRepo(db)
	logs := repository.NewLogRepo(db)

	// The audit recorder writes to the audit_logs table and mirrors each
	// entry onto the audit.recorded queue.
	audit := service.NewRecorder(logs)

	// The auth service is constructed once and handed to the handlers
	// that need it; nothing reaches it through a global.
	auth := service.NewAuthService(cfg, db, users, keys, audit)

	// Background consumer mirrors audit events into logs/audit.log.  It
	// reconnects on broker failures and never takes the API down with it.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	// Response cache for the hot listings; degrades to a no-op when Redis
	// is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache disabled")
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))

	router.RegisterRoutes(e) // Health check
	router.RegisterAuth(e, handler.NewAuthHandler(auth), cfg.JWTSecret)
	router.RegisterAdmin(e,
		handler.NewUserHandler(cfg, users, audit),
		handler.NewKeyHandler(keys, audit),
		handler.NewLogHandler(logs, audit),
		cfg.JWTSecret, cache)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
