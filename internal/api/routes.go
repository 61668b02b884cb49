package api

import (
	"net/http" // HTTP status codes
	"time"     // Session lifetime

	"course_registration/internal/domain"     // Importing domain models
	"course_registration/internal/middleware" // Session and role gates
	"course_registration/internal/service"    // Registration services
	"course_registration/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// Deps are the services the handlers run against
type Deps struct {
	Accounts     *service.AccountStore // Account store
	Catalog      *service.Catalog      // Course catalog
	Ledger       *service.Ledger       // Enrollment ledger
	Grading      *service.Grading      // Grading service
	Cache        *utils.Cache          // Redis cache, may be disabled
	JWTSecret    string                // Session signing key
	SessionTTL   time.Duration         // Session lifetime
	SecureCookie bool                  // Send the session cookie over HTTPS only
}

// RegisterRoutes installs templates, the session middleware and every route on r
func RegisterRoutes(r *gin.Engine, d Deps) error {
	if err := LoadTemplates(r); err != nil {
		return err
	}
	r.Use(middleware.SessionMiddleware(d.JWTSecret, d.Accounts, d.Cache)) // Resolve the caller on every request

	admin := middleware.RequireRole(domain.RoleAdmin)
	instructor := middleware.RequireRole(domain.RoleInstructor)
	student := middleware.RequireRole(domain.RoleStudent)
	staff := middleware.RequireRole(domain.RoleAdmin, domain.RoleInstructor)

	// Auth routes
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/login") })
	r.GET("/login", LoginPageHandler())                                                   // Login form
	r.POST("/login", LoginHandler(d.Accounts, d.JWTSecret, d.SessionTTL, d.SecureCookie)) // Credential check
	r.GET("/logout", LogoutHandler(d.Cache))                                              // End session

	// Dashboards
	r.GET("/dashboard/student", student, StudentDashboardHandler(d.Ledger))
	r.GET("/dashboard/instructor", instructor, InstructorDashboardHandler(d.Catalog))
	r.GET("/dashboard/admin", admin, AdminDashboardHandler(d.Accounts, d.Catalog))

	// Student routes
	r.GET("/courses", student, CoursesHandler(d.Catalog, d.Ledger))          // Browse courses
	r.GET("/enroll/:course_id", student, EnrollHandler(d.Catalog, d.Ledger)) // Enroll in a course
	r.GET("/drop/:course_id", student, DropHandler(d.Catalog, d.Ledger))     // Drop a course

	// Account administration
	r.GET("/admin/users", admin, ListUsersHandler(d.Accounts))
	r.POST("/admin/users", admin, CreateUserHandler(d.Accounts))
	r.GET("/admin/users/edit/:id", admin, EditUserPageHandler(d.Accounts))
	r.POST("/admin/users/edit/:id", admin, EditUserHandler(d.Accounts))
	r.GET("/admin/users/delete/:id", admin, DeleteUserHandler(d.Accounts))

	// Course administration
	r.GET("/admin/courses", admin, ListCoursesHandler(d.Catalog, d.Accounts))
	r.POST("/admin/courses", admin, CreateCourseHandler(d.Catalog))
	r.GET("/admin/edit_course/:id", admin, EditCoursePageHandler(d.Catalog, d.Accounts))
	r.POST("/admin/edit_course/:id", admin, EditCourseHandler(d.Catalog))
	r.POST("/admin/delete_course/:id", admin, DeleteCourseHandler(d.Catalog))

	// JSON routes
	jsonAdmin := middleware.RequireRoleJSON(domain.RoleAdmin)
	r.GET("/api/instructors", jsonAdmin, InstructorsHandler(d.Accounts))               // Instructor usernames
	r.POST("/admin/courses/:id/update", jsonAdmin, UpdateCourseJSONHandler(d.Catalog)) // Partial course update

	// Rosters and grades
	r.GET("/admin/courses/:id/grades", staff, RosterHandler(d.Catalog, d.Grading))
	r.POST("/admin/courses/:id/grades", staff, RosterUpdateHandler(d.Catalog, d.Ledger))
	r.GET("/admin/courses/:id/grades/export", staff, ExportRosterHandler(d.Catalog, d.Ledger))
	r.POST("/admin/courses/:id/grades/import", staff, ImportRosterHandler(d.Catalog, d.Accounts, d.Ledger))
	r.GET("/courses/:course_id/grade/:student_id", staff, GradePageHandler(d.Catalog, d.Accounts, d.Grading))
	r.POST("/courses/:course_id/grade/:student_id", staff, SetGradeHandler(d.Catalog, d.Accounts, d.Grading))

	// Instructor routes
	r.GET("/instructor/courses", instructor, InstructorCoursesHandler(d.Catalog))
	r.POST("/instructor/courses", instructor, InstructorSelectCourseHandler(d.Catalog))
	return nil
}
