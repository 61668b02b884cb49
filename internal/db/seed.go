package db

import (
	"context" // Request scoped operations

	"course_registration/internal/config"  // Application configuration
	"course_registration/internal/domain"  // Importing domain models
	"course_registration/internal/service" // Account and course services

	"github.com/pkg/errors"      // Error wrapping
	"github.com/sirupsen/logrus" // Logging
)

// sampleCourses are created when sample seeding is enabled
var sampleCourses = []service.CourseInput{
	{Title: "Math 101", Teacher: "instructor", Schedule: "Mon/Wed 09:00", Capacity: 30},
	{Title: "Physics 101", Teacher: "instructor", Schedule: "Tue/Thu 11:00", Capacity: 25},
	{Title: "History 201", Teacher: "instructor", Schedule: "Fri 14:00", Capacity: 2},
}

// Bootstrap makes sure an admin account exists and optionally seeds sample data
func Bootstrap(ctx context.Context, cfg *config.Config, accounts *service.AccountStore, catalog *service.Catalog) error {
	admins, err := accounts.Count(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if admins == 0 {
		_, err := accounts.Create(ctx, service.AccountInput{
			Username: cfg.AdminUsername, // Bootstrap admin username
			Email:    cfg.AdminEmail,    // Bootstrap admin email
			Password: cfg.AdminPassword, // Bootstrap admin password
			Role:     domain.RoleAdmin,  // Admin role
		})
		if err != nil {
			return errors.Wrap(err, "create bootstrap admin")
		}
		logrus.WithField("username", cfg.AdminUsername).Warn("Created bootstrap admin account, change its password")
	}
	if !cfg.SeedSampleData {
		return nil
	}
	samples := []service.AccountInput{
		{Username: "instructor", Email: "instructor@example.com", Password: "instructor123", Role: domain.RoleInstructor},
		{Username: "student", Email: "student@example.com", Password: "student123", Role: domain.RoleStudent},
	}
	for _, in := range samples {
		if _, err := accounts.Create(ctx, in); err != nil && !errors.Is(err, domain.ErrDuplicateIdentity) {
			return errors.Wrapf(err, "seed account %s", in.Username)
		}
	}
	for _, in := range sampleCourses {
		if _, err := catalog.Create(ctx, in); err != nil && !errors.Is(err, domain.ErrDuplicateIdentity) {
			return errors.Wrapf(err, "seed course %s", in.Title)
		}
	}
	logrus.Info("Sample data seeded.")
	return nil
}
