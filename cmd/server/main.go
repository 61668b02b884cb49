package main

import (
	"context" // context package is needed for Redis operations

	"course_registration/internal/api"     // Custom package for HTTP handlers
	"course_registration/internal/config"  // Custom package for configuration
	"course_registration/internal/db"      // Custom package for database setup
	"course_registration/internal/service" // Custom package for registration services
	"course_registration/internal/utils"   // Custom package for cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database and make sure the schema is current
	database, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(database); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}

	// Setup Redis client, optional
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set, caching and logout revocation are disabled")
	}
	cache := utils.NewCache(redisClient)

	// Services share the one database handle
	accounts := service.NewAccountStore(database, cache)
	catalog := service.NewCatalog(database, cache)
	ledger := service.NewLedger(database)
	grading := service.NewGrading(database, ledger)

	// Ensure an admin exists on first run
	if err := db.Bootstrap(context.Background(), cfg, accounts, catalog); err != nil {
		logrus.Fatalf("failed to bootstrap accounts: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	err = api.RegisterRoutes(r, api.Deps{
		Accounts:     accounts,       // Account store
		Catalog:      catalog,        // Course catalog
		Ledger:       ledger,         // Enrollment ledger
		Grading:      grading,        // Grading service
		Cache:        cache,          // Redis cache
		JWTSecret:    cfg.JWTSecret,  // Session signing key
		SessionTTL:   cfg.SessionTTL, // Session lifetime
		SecureCookie: cfg.IsProd,     // HTTPS only cookies in production
	})
	if err != nil {
		logrus.Fatalf("failed to register routes: %v", err)
	}

	logrus.Info("Server running on " + cfg.AppPort)  // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
