package middleware

import (
	"strings" // String manipulation

	"course_registration/internal/domain"  // Importing domain models
	"course_registration/internal/service" // Account store
	"course_registration/internal/utils"   // JWT and cache helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// SessionCookie is the cookie holding the session token
const SessionCookie = "session"

const (
	accountKey = "account" // *domain.Account of the caller
	claimsKey  = "claims"  // *utils.Claims of the session token
)

// SessionMiddleware resolves the caller from a bearer token or session cookie.
// The role is always re-read from the account store. Requests without a valid
// session continue anonymously; the role gates decide what they may reach.
func SessionMiddleware(secret string, accounts *service.AccountStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		} else if cookie, err := c.Cookie(SessionCookie); err == nil {
			tokenStr = cookie
		}
		if tokenStr == "" {
			c.Next()
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			c.Next() // Invalid or expired token
			return
		}
		revoked, err := cache.Revoked(c.Request.Context(), claims.ID)
		if err != nil {
			logrus.WithError(err).Warn("Failed to check session revocation")
		}
		if revoked {
			c.Next()
			return
		}
		account, err := accounts.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			c.Next() // Account deleted since login
			return
		}
		c.Set(accountKey, account)
		c.Set(claimsKey, claims)
		c.Next() // Proceed to the next handler
	}
}

// CurrentAccount returns the signed-in account, if any
func CurrentAccount(c *gin.Context) (*domain.Account, bool) {
	v, exists := c.Get(accountKey)
	if !exists {
		return nil, false
	}
	account, ok := v.(*domain.Account)
	return account, ok
}

// CurrentClaims returns the session token claims, if any
func CurrentClaims(c *gin.Context) (*utils.Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
