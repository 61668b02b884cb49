package main

import (
	"context" // Bootstrap context

	"course_registration/internal/config"  // Custom import path (Config)
	"course_registration/internal/db"      // Custom import path (Database)
	"course_registration/internal/service" // Custom import path (Services)
	"course_registration/internal/utils"   // Custom import path (Cache)

	"github.com/sirupsen/logrus" // Logging
)

// Main entry point for migration and first-run seeding
func main() {
	cfg := config.LoadConfig() // Load configuration

	database, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		logrus.Fatalf("%v", err)
	}
	cache := utils.NewCache(nil) // Cached lists held by a running server expire on their own TTL
	accounts := service.NewAccountStore(database, cache)
	catalog := service.NewCatalog(database, cache)
	if err := db.Bootstrap(context.Background(), cfg, accounts, catalog); err != nil {
		logrus.Fatalf("bootstrap failed: %v", err)
	}
}
