package service

import (
	"context" // Request scoped operations
	"strings" // Title normalisation
	"time"    // Cache TTL

	"course_registration/internal/domain" // Importing domain models
	"course_registration/internal/utils"  // Cache helpers

	"github.com/pkg/errors"      // Error wrapping
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // Row locking
)

// CourseInput carries the fields of a new course
type CourseInput struct {
	Title    string
	Teacher  string
	Schedule string
	Capacity int
}

// CourseUpdate is a partial course edit; nil fields are left unchanged
type CourseUpdate struct {
	Title    *string `json:"title"`
	Teacher  *string `json:"teacher"`
	Schedule *string `json:"schedule"`
	Capacity *int    `json:"capacity"`
}

// Catalog holds course metadata
type Catalog struct {
	db    *gorm.DB
	cache *utils.Cache
}

// NewCatalog creates a course catalog
func NewCatalog(db *gorm.DB, cache *utils.Cache) *Catalog {
	return &Catalog{db: db, cache: cache}
}

// Create adds a course with a unique title
func (s *Catalog) Create(ctx context.Context, in CourseInput) (*domain.Course, error) {
	if in.Capacity < 0 {
		return nil, domain.ErrInvalidCapacity
	}
	course := domain.Course{
		Title:    strings.TrimSpace(in.Title),    // Unique title
		Teacher:  strings.TrimSpace(in.Teacher),  // Instructor username
		Schedule: strings.TrimSpace(in.Schedule), // Schedule descriptor
		Capacity: in.Capacity,                    // Seats
	}
	if course.Title == "" || course.Teacher == "" || course.Schedule == "" {
		return nil, domain.ErrBlankField
	}
	if err := s.checkTitle(ctx, 0, course.Title); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, errors.Wrap(err, "create course")
	}
	s.invalidate(ctx)
	logrus.WithFields(logrus.Fields{
		"course_id": course.ID,       // New course ID
		"title":     course.Title,    // Title
		"teacher":   course.Teacher,  // Instructor
		"capacity":  course.Capacity, // Seats
	}).Info("Course created")
	return &course, nil
}

// Update applies a partial edit. Capacity may not drop below the current enrollment count.
func (s *Catalog) Update(ctx context.Context, id uint, in CourseUpdate) (*domain.Course, error) {
	for _, field := range []*string{in.Title, in.Teacher, in.Schedule} {
		if field != nil && strings.TrimSpace(*field) == "" {
			return nil, domain.ErrBlankField // Fields present in the edit must carry a value
		}
	}
	var course domain.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the course so concurrent enrollments wait for the capacity check
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&course, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		updates := map[string]any{}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title != course.Title {
				var n int64
				if err := tx.Model(&domain.Course{}).Where("title = ? AND id <> ?", title, id).Count(&n).Error; err != nil {
					return err
				}
				if n > 0 {
					return domain.ErrDuplicateIdentity
				}
				updates["title"] = title
			}
		}
		if in.Teacher != nil {
			updates["teacher"] = strings.TrimSpace(*in.Teacher)
		}
		if in.Schedule != nil {
			updates["schedule"] = strings.TrimSpace(*in.Schedule)
		}
		if in.Capacity != nil && *in.Capacity != course.Capacity {
			if *in.Capacity < 0 {
				return domain.ErrInvalidCapacity
			}
			var enrolled int64
			if err := tx.Model(&domain.Enrollment{}).Where("course_id = ?", id).Count(&enrolled).Error; err != nil {
				return err
			}
			if int64(*in.Capacity) < enrolled {
				return domain.ErrCapacityBelowEnrollment
			}
			updates["capacity"] = *in.Capacity
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&domain.Course{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&course, id).Error // Reload
	})
	if err != nil {
		if isKind(err) {
			return nil, err
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, errors.Wrap(err, "update course")
	}
	s.invalidate(ctx)
	logrus.WithFields(logrus.Fields{
		"course_id": course.ID,       // Edited course
		"title":     course.Title,    // Title after edit
		"capacity":  course.Capacity, // Seats after edit
	}).Info("Course updated")
	return &course, nil
}

// Delete removes a course together with its ledger rows
func (s *Catalog) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&domain.Enrollment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Course{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if isKind(err) {
			return err
		}
		return errors.Wrap(err, "delete course")
	}
	s.invalidate(ctx)
	logrus.WithField("course_id", id).Info("Course deleted")
	return nil
}

// Get returns a course by ID
func (s *Catalog) Get(ctx context.Context, id uint) (*domain.Course, error) {
	var course domain.Course
	if err := s.db.WithContext(ctx).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "get course")
	}
	return &course, nil
}

// List returns every course ordered by title, served from cache when available
func (s *Catalog) List(ctx context.Context) ([]domain.Course, error) {
	var courses []domain.Course
	if found, err := s.cache.Get(ctx, utils.CourseListKey, &courses); err == nil && found {
		return courses, nil
	}
	courses = []domain.Course{}
	if err := s.db.WithContext(ctx).Order("title").Find(&courses).Error; err != nil {
		return nil, errors.Wrap(err, "list courses")
	}
	_ = s.cache.Set(ctx, utils.CourseListKey, courses, 60*time.Second)
	return courses, nil
}

// ListWithSeats returns every course with its live enrollment count
func (s *Catalog) ListWithSeats(ctx context.Context) ([]domain.CourseSeats, error) {
	courses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var counts []struct {
		CourseID uint
		Total    int64
	}
	err = s.db.WithContext(ctx).Model(&domain.Enrollment{}).
		Select("course_id, COUNT(*) AS total").
		Group("course_id").
		Scan(&counts).Error
	if err != nil {
		return nil, errors.Wrap(err, "count enrollments")
	}
	byCourse := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byCourse[c.CourseID] = c.Total
	}
	seats := make([]domain.CourseSeats, len(courses))
	for i, c := range courses {
		seats[i] = domain.CourseSeats{Course: c, Enrolled: byCourse[c.ID]}
	}
	return seats, nil
}

// ListTaught returns the courses whose teacher field equals username exactly
func (s *Catalog) ListTaught(ctx context.Context, username string) ([]domain.Course, error) {
	courses := []domain.Course{}
	if err := s.db.WithContext(ctx).Where("teacher = ?", username).Order("title").Find(&courses).Error; err != nil {
		return nil, errors.Wrap(err, "list taught courses")
	}
	return courses, nil
}

// Count returns the number of courses
func (s *Catalog) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Course{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "count courses")
	}
	return n, nil
}

func (s *Catalog) checkTitle(ctx context.Context, exceptID uint, title string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Course{}).Where("title = ? AND id <> ?", title, exceptID).Count(&n).Error; err != nil {
		return errors.Wrap(err, "check course title")
	}
	if n > 0 {
		return domain.ErrDuplicateIdentity
	}
	return nil
}

func (s *Catalog) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, utils.CourseListKey); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate course cache")
	}
}
