package service

import (
	"context" // Request scoped operations

	"course_registration/internal/domain" // Importing domain models

	"github.com/pkg/errors"      // Error wrapping
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// GradeSheet is a course roster with grades plus the students who could still be added
type GradeSheet struct {
	Course    domain.Course        `json:"course"`
	Roster    []domain.RosterEntry `json:"roster"`
	Available []domain.Account     `json:"available"`
}

// Grading reads and writes the grade held on each ledger row
type Grading struct {
	db     *gorm.DB
	ledger *Ledger
}

// NewGrading creates a grading service over the ledger
func NewGrading(db *gorm.DB, ledger *Ledger) *Grading {
	return &Grading{db: db, ledger: ledger}
}

// GetGrade returns the student's grade in the course, or 0 when there is no enrollment row
func (g *Grading) GetGrade(ctx context.Context, studentID, courseID uint) (int, error) {
	var rows []domain.Enrollment
	err := g.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return 0, errors.Wrap(err, "get grade")
	}
	if len(rows) == 0 {
		return 0, nil // No grade yet
	}
	return rows[0].Grade, nil
}

// SetGrade overwrites the grade on an existing enrollment. Any integer is accepted.
func (g *Grading) SetGrade(ctx context.Context, studentID, courseID uint, grade int) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Enrollment{}).
			Where("student_id = ? AND course_id = ?", studentID, courseID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotEnrolled
		}
		return tx.Model(&domain.Enrollment{}).
			Where("student_id = ? AND course_id = ?", studentID, courseID).
			Update("grade", grade).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotEnrolled) {
			return err
		}
		return errors.Wrap(err, "set grade")
	}
	logrus.WithFields(logrus.Fields{
		"student_id": studentID, // Student account ID
		"course_id":  courseID,  // Course ID
		"grade":      grade,     // New grade
	}).Info("Grade set")
	return nil
}

// Sheet returns the roster with grades and the students not yet enrolled
func (g *Grading) Sheet(ctx context.Context, course domain.Course) (*GradeSheet, error) {
	roster, err := g.ledger.Roster(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	available, err := g.ledger.AvailableStudents(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	return &GradeSheet{Course: course, Roster: roster, Available: available}, nil
}
