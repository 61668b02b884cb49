package service

import (
	"context" // Request scoped operations

	"course_registration/internal/domain" // Importing domain models

	"github.com/pkg/errors"      // Error wrapping
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // Row locking
)

// errorKinds are returned to callers as-is, never wrapped
var errorKinds = []error{
	domain.ErrUnauthorized,
	domain.ErrAlreadyEnrolled,
	domain.ErrCourseFull,
	domain.ErrNotEnrolled,
	domain.ErrNotFound,
	domain.ErrDuplicateIdentity,
	domain.ErrCapacityBelowEnrollment,
	domain.ErrInvalidRole,
	domain.ErrNotStudent,
	domain.ErrInvalidCapacity,
	domain.ErrBlankField,
}

func isKind(err error) bool {
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Ledger records which students are enrolled in which courses.
// Seat counts are always derived from the ledger rows themselves.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates an enrollment ledger
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Enroll registers a student in a course with a zero grade
func (l *Ledger) Enroll(ctx context.Context, studentID, courseID uint) error {
	return l.add(ctx, studentID, courseID, "enroll")
}

// AdminAdd puts a student on a course roster on their behalf. Capacity and
// duplicate rules are the same as for Enroll.
func (l *Ledger) AdminAdd(ctx context.Context, studentID, courseID uint) error {
	return l.add(ctx, studentID, courseID, "admin_add")
}

// Drop removes a student's own enrollment
func (l *Ledger) Drop(ctx context.Context, studentID, courseID uint) error {
	return l.remove(ctx, studentID, courseID, "drop")
}

// AdminRemove takes a student off a course roster
func (l *Ledger) AdminRemove(ctx context.Context, studentID, courseID uint) error {
	return l.remove(ctx, studentID, courseID, "admin_remove")
}

// add checks the pair and the live seat count and inserts the row in one transaction.
// The course row is locked first so concurrent adds for the same course serialize.
func (l *Ledger) add(ctx context.Context, studentID, courseID uint, op string) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course domain.Course
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&course, courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		var student domain.Account
		if err := tx.First(&student, studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if student.Role != domain.RoleStudent {
			return domain.ErrNotStudent
		}
		var existing int64
		if err := tx.Model(&domain.Enrollment{}).
			Where("student_id = ? AND course_id = ?", studentID, courseID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return domain.ErrAlreadyEnrolled
		}
		var enrolled int64
		if err := tx.Model(&domain.Enrollment{}).Where("course_id = ?", courseID).Count(&enrolled).Error; err != nil {
			return err
		}
		if enrolled >= int64(course.Capacity) {
			return domain.ErrCourseFull
		}
		row := domain.Enrollment{StudentID: studentID, CourseID: courseID, Grade: 0}
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrAlreadyEnrolled
			}
			return err
		}
		return nil
	})
	fields := logrus.Fields{
		"op":         op,        // enroll or admin_add
		"student_id": studentID, // Student account ID
		"course_id":  courseID,  // Course ID
	}
	if err != nil {
		if isKind(err) {
			logrus.WithFields(fields).WithField("reason", err.Error()).Info("Enrollment rejected")
			return err
		}
		logrus.WithFields(fields).WithError(err).Error("Enrollment failed")
		return errors.Wrap(err, "enroll")
	}
	logrus.WithFields(fields).Info("Enrollment created")
	return nil
}

func (l *Ledger) remove(ctx context.Context, studentID, courseID uint, op string) error {
	res := l.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Delete(&domain.Enrollment{})
	fields := logrus.Fields{
		"op":         op,        // drop or admin_remove
		"student_id": studentID, // Student account ID
		"course_id":  courseID,  // Course ID
	}
	if res.Error != nil {
		logrus.WithFields(fields).WithError(res.Error).Error("Enrollment removal failed")
		return errors.Wrap(res.Error, "drop")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotEnrolled
	}
	logrus.WithFields(fields).Info("Enrollment removed")
	return nil
}

// Roster returns the course's enrollments joined with student identity, in insertion order
func (l *Ledger) Roster(ctx context.Context, courseID uint) ([]domain.RosterEntry, error) {
	entries := []domain.RosterEntry{}
	err := l.db.WithContext(ctx).Table("enrollments").
		Select("enrollments.student_id, accounts.username, accounts.email, enrollments.grade").
		Joins("JOIN accounts ON accounts.id = enrollments.student_id").
		Where("enrollments.course_id = ?", courseID).
		Order("enrollments.created_at, enrollments.student_id").
		Scan(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "roster")
	}
	return entries, nil
}

// AvailableStudents returns the students not on the course roster, ordered by username
func (l *Ledger) AvailableStudents(ctx context.Context, courseID uint) ([]domain.Account, error) {
	enrolled := l.db.Model(&domain.Enrollment{}).Select("student_id").Where("course_id = ?", courseID)
	students := []domain.Account{}
	err := l.db.WithContext(ctx).
		Where("role = ? AND id NOT IN (?)", domain.RoleStudent, enrolled).
		Order("username").
		Find(&students).Error
	if err != nil {
		return nil, errors.Wrap(err, "available students")
	}
	return students, nil
}

// Count returns the number of students enrolled in a course
func (l *Ledger) Count(ctx context.Context, courseID uint) (int64, error) {
	var n int64
	if err := l.db.WithContext(ctx).Model(&domain.Enrollment{}).Where("course_id = ?", courseID).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "count enrollments")
	}
	return n, nil
}

// CoursesOf returns a student's enrolled courses with grades, in enrollment order
func (l *Ledger) CoursesOf(ctx context.Context, studentID uint) ([]domain.StudentCourse, error) {
	rows := []domain.StudentCourse{}
	err := l.db.WithContext(ctx).Table("enrollments").
		Select("courses.id, courses.title, courses.teacher, courses.schedule, courses.capacity, enrollments.grade").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.student_id = ?", studentID).
		Order("enrollments.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "student courses")
	}
	return rows, nil
}

// EnrolledCourseIDs returns the set of course IDs a student is enrolled in
func (l *Ledger) EnrolledCourseIDs(ctx context.Context, studentID uint) (map[uint]bool, error) {
	var ids []uint
	if err := l.db.WithContext(ctx).Model(&domain.Enrollment{}).
		Where("student_id = ?", studentID).
		Pluck("course_id", &ids).Error; err != nil {
		return nil, errors.Wrap(err, "enrolled course ids")
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
