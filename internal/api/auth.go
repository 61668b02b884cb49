package api

import (
	"net/http" // HTTP status codes
	"time"     // Cookie and revocation lifetimes

	"course_registration/internal/domain"     // Importing domain models
	"course_registration/internal/middleware" // Session helpers
	"course_registration/internal/service"    // Registration services
	"course_registration/internal/utils"      // JWT, cache and flash helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/pkg/errors"      // Error kinds
	"github.com/sirupsen/logrus" // Logging
)

// LoginRequest is the login form, also accepted as JSON
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"` // Username must be provided
	Password string `form:"password" json:"password" binding:"required"` // Password must be provided
}

// AuthResponse is returned to JSON login clients
type AuthResponse struct {
	Token string      `json:"token"` // Session token
	Role  domain.Role `json:"role"`  // Role of the account
}

// LoginPageHandler shows the login form, or sends signed-in callers to their dashboard
func LoginPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if account, ok := middleware.CurrentAccount(c); ok {
			c.Redirect(http.StatusFound, account.Role.DashboardPath())
			return
		}
		render(c, http.StatusOK, "login.html", nil)
	}
}

// LoginHandler checks credentials and starts a session
func LoginHandler(accounts *service.AccountStore, secret string, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		asJSON := c.ContentType() == gin.MIMEJSON
		var req LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			if asJSON {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			render(c, http.StatusOK, "login.html", gin.H{"Error": formError(err), "Username": req.Username})
			return
		}
		account, err := accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				logrus.WithError(err).Error("Login failed")
			}
			logrus.WithField("username", req.Username).Warn("Invalid login attempt")
			if asJSON {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			render(c, http.StatusOK, "login.html", gin.H{"Error": "Invalid username or password.", "Username": req.Username})
			return
		}
		token, err := utils.GenerateJWT(account.ID, account.Role, secret, ttl)
		if err != nil {
			if asJSON {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
				return
			}
			serverError(c, errors.Wrap(err, "generate session token"))
			return
		}
		logrus.WithFields(logrus.Fields{
			"account_id": account.ID,   // Account ID
			"role":       account.Role, // Role
		}).Info("Login")
		if asJSON {
			c.JSON(http.StatusOK, AuthResponse{Token: token, Role: account.Role})
			return
		}
		c.SetCookie(middleware.SessionCookie, token, int(ttl.Seconds()), "/", "", secure, true)
		utils.SetFlash(c, utils.FlashSuccess, "Logged in successfully.")
		c.Redirect(http.StatusFound, account.Role.DashboardPath()) // Redirect based on role
	}
}

// LogoutHandler ends the session and revokes its token for the rest of its lifetime
func LogoutHandler(cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := middleware.CurrentClaims(c); ok && claims.ExpiresAt != nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if err := cache.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
				logrus.WithError(err).Warn("Failed to revoke session token")
			}
			logrus.WithField("account_id", claims.UserID).Info("Logout")
		}
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true) // Clear session cookie
		utils.SetFlash(c, utils.FlashInfo, "Logged out.")
		c.Redirect(http.StatusFound, "/login")
	}
}

// StudentDashboardHandler shows the student's enrollments with grades
func StudentDashboardHandler(ledger *service.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := mustAccount(c)
		courses, err := ledger.CoursesOf(c.Request.Context(), account.ID)
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "dashboard_student.html", gin.H{"Courses": courses})
	}
}

// InstructorDashboardHandler shows the courses taught by the instructor
func InstructorDashboardHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := mustAccount(c)
		courses, err := catalog.ListTaught(c.Request.Context(), account.Username)
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "dashboard_instructor.html", gin.H{"Courses": courses})
	}
}

// AdminDashboardHandler shows account and course totals
func AdminDashboardHandler(accounts *service.AccountStore, catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		totals := gin.H{}
		for _, role := range domain.Roles {
			n, err := accounts.Count(ctx, role)
			if err != nil {
				serverError(c, err)
				return
			}
			totals[string(role)] = n
		}
		courses, err := catalog.Count(ctx)
		if err != nil {
			serverError(c, err)
			return
		}
		totals["courses"] = courses
		render(c, http.StatusOK, "dashboard_admin.html", gin.H{"Totals": totals})
	}
}
