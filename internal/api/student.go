package api

import (
	"net/http" // HTTP status codes

	"course_registration/internal/domain"  // Importing domain models
	"course_registration/internal/service" // Registration services
	"course_registration/internal/utils"   // Flash helpers

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/pkg/errors"    // Error kinds
)

// loadCourse resolves a course path parameter, stopping the request with 404 when missing
func loadCourse(c *gin.Context, catalog *service.Catalog, param string) (*domain.Course, bool) {
	id, ok := paramID(c, param)
	if !ok {
		notFound(c)
		return nil, false
	}
	course, err := catalog.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c)
		} else {
			serverError(c, err)
		}
		return nil, false
	}
	return course, true
}

// CoursesHandler lists every course with its live seat count
func CoursesHandler(catalog *service.Catalog, ledger *service.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		account := mustAccount(c)
		courses, err := catalog.ListWithSeats(ctx)
		if err != nil {
			serverError(c, err)
			return
		}
		enrolled, err := ledger.EnrolledCourseIDs(ctx, account.ID)
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "courses.html", gin.H{"Courses": courses, "Enrolled": enrolled})
	}
}

// EnrollHandler enrolls the caller in a course
func EnrollHandler(catalog *service.Catalog, ledger *service.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadCourse(c, catalog, "course_id")
		if !ok {
			return
		}
		account := mustAccount(c)
		if err := ledger.Enroll(c.Request.Context(), account.ID, course.ID); err != nil {
			switch {
			case errors.Is(err, domain.ErrAlreadyEnrolled):
				utils.SetFlash(c, utils.FlashWarning, "You are already enrolled in "+course.Title+".")
				c.Redirect(http.StatusFound, "/courses")
			case errors.Is(err, domain.ErrCourseFull):
				utils.SetFlash(c, utils.FlashDanger, course.Title+" is full.")
				c.Redirect(http.StatusFound, "/courses")
			default:
				failAndRedirect(c, err, "/courses")
			}
			return
		}
		utils.SetFlash(c, utils.FlashSuccess, "Enrolled in "+course.Title+".")
		c.Redirect(http.StatusFound, "/courses")
	}
}

// DropHandler removes the caller from a course
func DropHandler(catalog *service.Catalog, ledger *service.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadCourse(c, catalog, "course_id")
		if !ok {
			return
		}
		account := mustAccount(c)
		if err := ledger.Drop(c.Request.Context(), account.ID, course.ID); err != nil {
			if errors.Is(err, domain.ErrNotEnrolled) {
				utils.SetFlash(c, utils.FlashWarning, "You are not enrolled in "+course.Title+".")
				c.Redirect(http.StatusFound, "/courses")
				return
			}
			failAndRedirect(c, err, "/courses")
			return
		}
		utils.SetFlash(c, utils.FlashInfo, "Dropped "+course.Title+".")
		c.Redirect(http.StatusFound, "/courses")
	}
}
