package api

import (
	"net/http" // HTTP status codes

	"course_registration/internal/service" // Registration services
	"course_registration/internal/utils"   // Flash helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// InstructorCoursesHandler lists the courses the instructor teaches
func InstructorCoursesHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		courses, err := catalog.ListTaught(c.Request.Context(), mustAccount(c).Username)
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "instructor_courses.html", gin.H{"Courses": courses})
	}
}

// InstructorSelectCourseHandler opens the grade sheet of one of the instructor's courses
func InstructorSelectCourseHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CourseID uint `form:"course_id" binding:"required"`
		}
		if err := c.ShouldBind(&req); err != nil {
			utils.SetFlash(c, utils.FlashWarning, "Select a course.")
			c.Redirect(http.StatusFound, "/instructor/courses")
			return
		}
		courses, err := catalog.ListTaught(c.Request.Context(), mustAccount(c).Username)
		if err != nil {
			serverError(c, err)
			return
		}
		for _, course := range courses {
			if course.ID == req.CourseID {
				c.Redirect(http.StatusFound, gradesPath(course.ID))
				return
			}
		}
		utils.SetFlash(c, utils.FlashWarning, "You do not teach that course.")
		c.Redirect(http.StatusFound, "/instructor/courses")
	}
}
