package middleware

import (
	"net/http" // HTTP status codes

	"course_registration/internal/domain" // Importing domain models
	"course_registration/internal/utils"  // Flash helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// RequireRole gates an HTML route. Denied callers get a notice and are sent to the login page.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			utils.SetFlash(c, utils.FlashWarning, "Please log in to access this page.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if err := domain.Authorize(account.Role, roles...); err != nil {
			logDenied(c, account)
			utils.SetFlash(c, utils.FlashDanger, "Access denied.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoleJSON gates a JSON route with a structured error instead of a redirect
func RequireRoleJSON(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			// If no session, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := domain.Authorize(account.Role, roles...); err != nil {
			logDenied(c, account)
			// If the role does not match, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func logDenied(c *gin.Context, account *domain.Account) {
	logrus.WithFields(logrus.Fields{
		"account_id": account.ID,       // Caller
		"role":       account.Role,     // Caller role
		"path":       c.FullPath(),     // Route
		"method":     c.Request.Method, // HTTP method
	}).Warn("Access denied")
}
