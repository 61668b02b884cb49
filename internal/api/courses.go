package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Redirect paths

	"course_registration/internal/domain"  // Importing domain models
	"course_registration/internal/service" // Registration services
	"course_registration/internal/utils"   // Flash helpers

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/pkg/errors"    // Error kinds
)

// CourseRequest is the create and edit course form
type CourseRequest struct {
	Title    string `form:"title" binding:"required"`    // Unique title
	Teacher  string `form:"teacher" binding:"required"`  // Instructor username
	Schedule string `form:"schedule" binding:"required"` // Schedule descriptor
	Capacity *int   `form:"capacity" binding:"required,gte=0"`
}

// ListCoursesHandler shows the catalog with seat counts and the create form
func ListCoursesHandler(catalog *service.Catalog, accounts *service.AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		courses, err := catalog.ListWithSeats(ctx)
		if err != nil {
			serverError(c, err)
			return
		}
		instructors, err := accounts.InstructorUsernames(ctx)
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "admin_courses.html", gin.H{"Courses": courses, "Instructors": instructors})
	}
}

// CreateCourseHandler adds a course
func CreateCourseHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CourseRequest
		if err := c.ShouldBind(&req); err != nil {
			utils.SetFlash(c, utils.FlashDanger, formError(err))
			c.Redirect(http.StatusFound, "/admin/courses")
			return
		}
		course, err := catalog.Create(c.Request.Context(), service.CourseInput{
			Title:    req.Title,     // Title
			Teacher:  req.Teacher,   // Instructor username
			Schedule: req.Schedule,  // Schedule
			Capacity: *req.Capacity, // Seats
		})
		if err != nil {
			failAndRedirect(c, err, "/admin/courses")
			return
		}
		utils.SetFlash(c, utils.FlashSuccess, "Course '"+course.Title+"' created successfully.")
		c.Redirect(http.StatusFound, "/admin/courses")
	}
}

// EditCoursePageHandler shows the edit form for one course
func EditCoursePageHandler(catalog *service.Catalog, accounts *service.AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadCourse(c, catalog, "id")
		if !ok {
			return
		}
		instructors, err := accounts.InstructorUsernames(c.Request.Context())
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "course_edit.html", gin.H{"Course": course, "Instructors": instructors})
	}
}

// EditCourseHandler applies a full course edit from the form
func EditCourseHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadCourse(c, catalog, "id")
		if !ok {
			return
		}
		back := "/admin/edit_course/" + strconv.FormatUint(uint64(course.ID), 10)
		var req CourseRequest
		if err := c.ShouldBind(&req); err != nil {
			utils.SetFlash(c, utils.FlashDanger, formError(err))
			c.Redirect(http.StatusFound, back)
			return
		}
		_, err := catalog.Update(c.Request.Context(), course.ID, service.CourseUpdate{
			Title:    &req.Title,    // New title
			Teacher:  &req.Teacher,  // New instructor
			Schedule: &req.Schedule, // New schedule
			Capacity: req.Capacity,  // New capacity
		})
		if err != nil {
			failAndRedirect(c, err, back)
			return
		}
		utils.SetFlash(c, utils.FlashSuccess, "Course updated successfully.")
		c.Redirect(http.StatusFound, "/admin/courses")
	}
}

// DeleteCourseHandler removes a course and its roster
func DeleteCourseHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			notFound(c)
			return
		}
		if err := catalog.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				notFound(c)
				return
			}
			failAndRedirect(c, err, "/admin/courses")
			return
		}
		utils.SetFlash(c, utils.FlashInfo, "Course deleted.")
		c.Redirect(http.StatusFound, "/admin/courses")
	}
}

// InstructorsHandler returns instructor usernames as JSON
func InstructorsHandler(accounts *service.AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := accounts.InstructorUsernames(c.Request.Context())
		if err != nil {
			jsonError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"instructors": names})
	}
}

// UpdateCourseJSONHandler applies a partial course update from a JSON body
func UpdateCourseJSONHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		var req service.CourseUpdate // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		course, err := catalog.Update(c.Request.Context(), id, req)
		if err != nil {
			jsonError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Course updated", "course": course})
	}
}
