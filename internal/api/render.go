package api

import (
	"embed"         // Embedded templates
	"html/template" // Gin HTML renderer templates
	"net/http"      // HTTP status codes
	"strconv"       // ID parsing
	"strings"       // Message joining

	"course_registration/internal/domain"     // Importing domain models
	"course_registration/internal/middleware" // Session helpers
	"course_registration/internal/utils"      // Flash helpers

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding validation errors
	"github.com/pkg/errors"                  // Error kinds
	"github.com/sirupsen/logrus"             // Logging
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates installs the page templates on the router
func LoadTemplates(r *gin.Engine) error {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return errors.Wrap(err, "parse templates")
	}
	r.SetHTMLTemplate(tmpl)
	return nil
}

// render writes a page with the pending flash notice and the signed-in account
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flash"] = utils.PopFlash(c) // Must run before the body is written
	if account, ok := middleware.CurrentAccount(c); ok {
		data["Account"] = account
	}
	c.HTML(status, name, data)
}

// notFound stops the request without rendering anything partial
func notFound(c *gin.Context) {
	render(c, http.StatusNotFound, "error.html", gin.H{"Status": http.StatusNotFound, "Message": "Not found."})
	c.Abort()
}

// serverError reports an unexpected failure
func serverError(c *gin.Context, err error) {
	logrus.WithFields(logrus.Fields{
		"path":  c.FullPath(), // Route
		"error": err.Error(),  // Error message
	}).Error("Request failed")
	render(c, http.StatusInternalServerError, "error.html", gin.H{"Status": http.StatusInternalServerError, "Message": "Something went wrong."})
	c.Abort()
}

// deny sends the caller back to the login page, the same outcome as a failed role gate
func deny(c *gin.Context) {
	utils.SetFlash(c, utils.FlashDanger, "Access denied.")
	c.Redirect(http.StatusFound, "/login")
}

// flashFor maps an error kind to a user-facing notice. ok is false for unexpected errors.
func flashFor(err error) (category, message string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrAlreadyEnrolled):
		return utils.FlashWarning, "Student is already enrolled in this course.", true
	case errors.Is(err, domain.ErrCourseFull):
		return utils.FlashDanger, "Course is full.", true
	case errors.Is(err, domain.ErrNotEnrolled):
		return utils.FlashWarning, "Student is not enrolled in this course.", true
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return utils.FlashDanger, "Username, email or title already in use.", true
	case errors.Is(err, domain.ErrCapacityBelowEnrollment):
		return utils.FlashDanger, "Capacity cannot be lower than the number of enrolled students.", true
	case errors.Is(err, domain.ErrInvalidCapacity):
		return utils.FlashDanger, "Capacity must not be negative.", true
	case errors.Is(err, domain.ErrBlankField):
		return utils.FlashDanger, "Title, teacher and schedule are required.", true
	case errors.Is(err, domain.ErrNotStudent):
		return utils.FlashWarning, "Only student accounts can be enrolled.", true
	case errors.Is(err, domain.ErrInvalidRole):
		return utils.FlashDanger, "Invalid role.", true
	case errors.Is(err, domain.ErrNotFound):
		return utils.FlashDanger, "Not found.", true
	case errors.Is(err, domain.ErrUnauthorized):
		return utils.FlashDanger, "Access denied.", true
	}
	return utils.FlashDanger, "Something went wrong, please try again.", false
}

// failAndRedirect turns an operation error into a notice and a redirect to a safe page
func failAndRedirect(c *gin.Context, err error, to string) {
	category, message, ok := flashFor(err)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(), // Route
			"error": err.Error(),  // Error message
		}).Error("Request failed")
	}
	utils.SetFlash(c, category, message)
	c.Redirect(http.StatusFound, to)
}

// statusFor maps an error kind to an HTTP status for JSON routes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateIdentity),
		errors.Is(err, domain.ErrAlreadyEnrolled),
		errors.Is(err, domain.ErrCourseFull),
		errors.Is(err, domain.ErrCapacityBelowEnrollment):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotEnrolled),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidCapacity),
		errors.Is(err, domain.ErrBlankField),
		errors.Is(err, domain.ErrNotStudent):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// jsonError writes {"error": ...} with the status for err
func jsonError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(), // Route
			"error": err.Error(),  // Error message
		}).Error("Request failed")
		message = "Internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}

// formError describes binding failures in one line
func formError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid form submission."
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		case "oneof":
			msgs = append(msgs, fe.Field()+" must be one of "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ") + "."
}

// paramID parses a positive numeric path parameter
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// mustAccount returns the caller; role gates guarantee it is present
func mustAccount(c *gin.Context) *domain.Account {
	account, _ := middleware.CurrentAccount(c)
	return account
}
