package db

import (
	"course_registration/internal/domain" // Importing domain models

	"github.com/pkg/errors"      // Error wrapping
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.Account{}, &domain.Course{}, &domain.Enrollment{}); err != nil {
		return errors.Wrap(err, "migration failed")
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
