// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"io"
	"testing"

	"course_registration/internal/db"
	"course_registration/internal/domain"
	"course_registration/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the schema migrated.
// A single connection serializes transactions the way row locks do on MySQL or Postgres.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	logrus.SetOutput(io.Discard)
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(database))
	return database
}

// Account creates an account whose password is username + "-pw"
func Account(t *testing.T, store *service.AccountStore, username string, role domain.Role) *domain.Account {
	t.Helper()
	account, err := store.Create(context.Background(), service.AccountInput{
		Username: username,
		Email:    username + "@example.com",
		Password: username + "-pw",
		Role:     role,
	})
	require.NoError(t, err)
	return account
}

// Course creates a course
func Course(t *testing.T, catalog *service.Catalog, title, teacher string, capacity int) *domain.Course {
	t.Helper()
	course, err := catalog.Create(context.Background(), service.CourseInput{
		Title:    title,
		Teacher:  teacher,
		Schedule: "Mon 09:00",
		Capacity: capacity,
	})
	require.NoError(t, err)
	return course
}
