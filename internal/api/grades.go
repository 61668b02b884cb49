package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Redirect paths
	"strings"  // Import summary

	"course_registration/internal/domain"  // Importing domain models
	"course_registration/internal/service" // Registration services
	"course_registration/internal/utils"   // Flash helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/pkg/errors"      // Error kinds
	"github.com/sirupsen/logrus" // Logging
)

// RosterRequest adds a student to or removes one from a roster
type RosterRequest struct {
	Action    string `form:"action" binding:"required,oneof=add remove"` // add or remove
	StudentID uint   `form:"student_id" binding:"required"`              // Student account ID
}

// GradeRequest sets a grade; any integer is accepted
type GradeRequest struct {
	Grade *int `form:"grade" json:"grade" binding:"required"`
}

// maxSkippedListed bounds the import notice so it fits in the flash cookie
const maxSkippedListed = 10

// skippedSummary lists the first rejected rows and counts the rest
func skippedSummary(skipped []string) string {
	if len(skipped) <= maxSkippedListed {
		return strings.Join(skipped, ", ")
	}
	rest := len(skipped) - maxSkippedListed
	return strings.Join(skipped[:maxSkippedListed], ", ") + " and " + strconv.Itoa(rest) + " more"
}

func gradesPath(courseID uint) string {
	return "/admin/courses/" + strconv.FormatUint(uint64(courseID), 10) + "/grades"
}

// loadManagedCourse resolves the course and checks the caller may manage it.
// Instructors only manage courses they teach.
func loadManagedCourse(c *gin.Context, catalog *service.Catalog, param string) (*domain.Course, bool) {
	course, ok := loadCourse(c, catalog, param)
	if !ok {
		return nil, false
	}
	if !domain.CanManageCourse(*mustAccount(c), *course) {
		deny(c)
		return nil, false
	}
	return course, true
}

// RosterHandler shows a course's roster with grades and the students who can be added
func RosterHandler(catalog *service.Catalog, grading *service.Grading) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadManagedCourse(c, catalog, "id")
		if !ok {
			return
		}
		sheet, err := grading.Sheet(c.Request.Context(), *course)
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "roster.html", gin.H{
			"Course":    sheet.Course,                        // Course
			"Roster":    sheet.Roster,                        // Enrolled students with grades
			"Available": sheet.Available,                     // Students not yet enrolled
			"SeatsLeft": course.Capacity - len(sheet.Roster), // Open seats
		})
	}
}

// RosterUpdateHandler adds or removes a student on a course roster
func RosterUpdateHandler(catalog *service.Catalog, ledger *service.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadManagedCourse(c, catalog, "id")
		if !ok {
			return
		}
		back := gradesPath(course.ID)
		var req RosterRequest
		if err := c.ShouldBind(&req); err != nil {
			utils.SetFlash(c, utils.FlashDanger, formError(err))
			c.Redirect(http.StatusFound, back)
			return
		}
		ctx := c.Request.Context()
		if req.Action == "add" {
			if err := ledger.AdminAdd(ctx, req.StudentID, course.ID); err != nil {
				failAndRedirect(c, err, back)
				return
			}
			utils.SetFlash(c, utils.FlashSuccess, "Student added to "+course.Title+".")
		} else {
			if err := ledger.AdminRemove(ctx, req.StudentID, course.ID); err != nil {
				failAndRedirect(c, err, back)
				return
			}
			utils.SetFlash(c, utils.FlashInfo, "Student removed from "+course.Title+".")
		}
		c.Redirect(http.StatusFound, back)
	}
}

// GradePageHandler shows a student's grade in a course
func GradePageHandler(catalog *service.Catalog, accounts *service.AccountStore, grading *service.Grading) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadManagedCourse(c, catalog, "course_id")
		if !ok {
			return
		}
		student, ok := loadAccount(c, accounts, "student_id")
		if !ok {
			return
		}
		grade, err := grading.GetGrade(c.Request.Context(), student.ID, course.ID)
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "grade.html", gin.H{"Course": course, "Student": student, "Grade": grade})
	}
}

// SetGradeHandler overwrites a student's grade in a course
func SetGradeHandler(catalog *service.Catalog, accounts *service.AccountStore, grading *service.Grading) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadManagedCourse(c, catalog, "course_id")
		if !ok {
			return
		}
		student, ok := loadAccount(c, accounts, "student_id")
		if !ok {
			return
		}
		back := gradesPath(course.ID)
		var req GradeRequest
		if err := c.ShouldBind(&req); err != nil {
			utils.SetFlash(c, utils.FlashDanger, formError(err))
			c.Redirect(http.StatusFound, c.Request.URL.Path)
			return
		}
		if err := grading.SetGrade(c.Request.Context(), student.ID, course.ID, *req.Grade); err != nil {
			failAndRedirect(c, err, back)
			return
		}
		utils.SetFlash(c, utils.FlashSuccess, "Grade for "+student.Username+" set to "+strconv.Itoa(*req.Grade)+".")
		c.Redirect(http.StatusFound, back)
	}
}

// ExportRosterHandler downloads the roster with grades as an xlsx workbook
func ExportRosterHandler(catalog *service.Catalog, ledger *service.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadManagedCourse(c, catalog, "id")
		if !ok {
			return
		}
		roster, err := ledger.Roster(c.Request.Context(), course.ID)
		if err != nil {
			serverError(c, err)
			return
		}
		filename := "course-" + strconv.FormatUint(uint64(course.ID), 10) + "-roster.xlsx"
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		if err := service.WriteRoster(c.Writer, *course, roster); err != nil {
			logrus.WithFields(logrus.Fields{
				"course_id": course.ID,   // Course
				"error":     err.Error(), // Error message
			}).Error("Roster export failed")
		}
	}
}

// ImportRosterHandler adds every username listed in an uploaded xlsx file to the roster
func ImportRosterHandler(catalog *service.Catalog, accounts *service.AccountStore, ledger *service.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, ok := loadManagedCourse(c, catalog, "id")
		if !ok {
			return
		}
		back := gradesPath(course.ID)
		header, err := c.FormFile("file")
		if err != nil {
			utils.SetFlash(c, utils.FlashDanger, "Choose a spreadsheet to import.")
			c.Redirect(http.StatusFound, back)
			return
		}
		file, err := header.Open()
		if err != nil {
			failAndRedirect(c, errors.Wrap(err, "open upload"), back)
			return
		}
		defer file.Close()
		usernames, err := service.ReadUsernames(file)
		if err != nil {
			logrus.WithError(err).Warn("Unreadable roster upload")
			utils.SetFlash(c, utils.FlashDanger, "The file is not a readable spreadsheet.")
			c.Redirect(http.StatusFound, back)
			return
		}
		ctx := c.Request.Context()
		added := 0
		var skipped []string
		for _, name := range usernames {
			student, err := accounts.GetByUsername(ctx, name)
			if err == nil {
				err = ledger.AdminAdd(ctx, student.ID, course.ID)
			}
			if err != nil {
				_, reason, _ := flashFor(err)
				skipped = append(skipped, name+" ("+reason+")")
				continue
			}
			added++
		}
		logrus.WithFields(logrus.Fields{
			"course_id": course.ID,    // Course
			"added":     added,        // Rows added
			"skipped":   len(skipped), // Rows rejected
		}).Info("Roster imported")
		message := strconv.Itoa(added) + " student(s) added."
		category := utils.FlashSuccess
		if len(skipped) > 0 {
			category = utils.FlashWarning
			message += " Skipped: " + skippedSummary(skipped)
		}
		utils.SetFlash(c, category, message)
		c.Redirect(http.StatusFound, back)
	}
}
