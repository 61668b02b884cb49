package domain

import "strings"

// Role is the closed set of account roles
type Role string

const (
	RoleAdmin      Role = "admin"      // Manages accounts and the course catalog
	RoleInstructor Role = "instructor" // Grades students of taught courses
	RoleStudent    Role = "student"    // Enrolls in and drops courses
)

// Roles lists every valid role in display order
var Roles = []Role{RoleStudent, RoleInstructor, RoleAdmin}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

// ParseRole converts user input into a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s))) // Normalise case and whitespace
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// DashboardPath returns the landing page for the role
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/dashboard/admin"
	case RoleInstructor:
		return "/dashboard/instructor"
	case RoleStudent:
		return "/dashboard/student"
	}
	return "/login"
}

// Authorize checks the caller's role against the roles an operation requires.
// An unknown caller role is always denied.
func Authorize(caller Role, required ...Role) error {
	if !caller.Valid() {
		return ErrUnauthorized
	}
	for _, r := range required {
		if r == caller {
			return nil
		}
	}
	return ErrUnauthorized
}

// CanManageCourse reports whether an account may change a course's roster and grades.
// Instructors are matched on the course's teacher username.
func CanManageCourse(a Account, c Course) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleInstructor:
		return c.Teacher == a.Username
	case RoleStudent:
		return false
	}
	return false
}
