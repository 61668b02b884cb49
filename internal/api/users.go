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

// CreateUserRequest is the new account form
type CreateUserRequest struct {
	Username string `form:"username" binding:"required"`                            // Username must be provided
	Email    string `form:"email" binding:"required,email"`                         // Valid email must be provided
	Password string `form:"password" binding:"required"`                            // Password must be provided
	Role     string `form:"role" binding:"required,oneof=student instructor admin"` // One of the known roles
}

// EditUserRequest is the account edit form; an empty password keeps the current one
type EditUserRequest struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password"`
	Role     string `form:"role" binding:"required,oneof=student instructor admin"`
}

// loadAccount resolves an account path parameter, stopping the request with 404 when missing
func loadAccount(c *gin.Context, accounts *service.AccountStore, param string) (*domain.Account, bool) {
	id, ok := paramID(c, param)
	if !ok {
		notFound(c)
		return nil, false
	}
	account, err := accounts.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c)
		} else {
			serverError(c, err)
		}
		return nil, false
	}
	return account, true
}

// ListUsersHandler shows every account and the create form
func ListUsersHandler(accounts *service.AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := accounts.List(c.Request.Context())
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "users.html", gin.H{"Users": users, "Roles": domain.Roles})
	}
}

// CreateUserHandler adds an account
func CreateUserHandler(accounts *service.AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if err := c.ShouldBind(&req); err != nil {
			utils.SetFlash(c, utils.FlashDanger, formError(err))
			c.Redirect(http.StatusFound, "/admin/users")
			return
		}
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			failAndRedirect(c, err, "/admin/users")
			return
		}
		account, err := accounts.Create(c.Request.Context(), service.AccountInput{
			Username: req.Username, // Username
			Email:    req.Email,    // Email
			Password: req.Password, // Plain password, hashed by the store
			Role:     role,         // Role
		})
		if err != nil {
			failAndRedirect(c, err, "/admin/users")
			return
		}
		utils.SetFlash(c, utils.FlashSuccess, "User '"+account.Username+"' created successfully.")
		c.Redirect(http.StatusFound, "/admin/users")
	}
}

// EditUserPageHandler shows the edit form for one account
func EditUserPageHandler(accounts *service.AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := loadAccount(c, accounts, "id")
		if !ok {
			return
		}
		render(c, http.StatusOK, "user_edit.html", gin.H{"User": account, "Roles": domain.Roles})
	}
}

// EditUserHandler applies an account edit
func EditUserHandler(accounts *service.AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := loadAccount(c, accounts, "id")
		if !ok {
			return
		}
		back := "/admin/users/edit/" + strconv.FormatUint(uint64(account.ID), 10)
		var req EditUserRequest
		if err := c.ShouldBind(&req); err != nil {
			utils.SetFlash(c, utils.FlashDanger, formError(err))
			c.Redirect(http.StatusFound, back)
			return
		}
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			failAndRedirect(c, err, back)
			return
		}
		_, err = accounts.Update(c.Request.Context(), account.ID, service.AccountInput{
			Username: req.Username, // New username
			Email:    req.Email,    // New email
			Password: req.Password, // Empty keeps the current credential
			Role:     role,         // New role
		})
		if err != nil {
			failAndRedirect(c, err, back)
			return
		}
		utils.SetFlash(c, utils.FlashSuccess, "User updated successfully.")
		c.Redirect(http.StatusFound, "/admin/users")
	}
}

// DeleteUserHandler removes an account and its enrollments
func DeleteUserHandler(accounts *service.AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			notFound(c)
			return
		}
		if err := accounts.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				notFound(c)
				return
			}
			failAndRedirect(c, err, "/admin/users")
			return
		}
		utils.SetFlash(c, utils.FlashInfo, "User deleted.")
		c.Redirect(http.StatusFound, "/admin/users")
	}
}
