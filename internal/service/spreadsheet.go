package service

import (
	"io"      // Spreadsheet streams
	"strings" // Header detection

	"course_registration/internal/domain" // Importing domain models

	"github.com/pkg/errors"       // Error wrapping
	"github.com/sirupsen/logrus"  // Logging
	"github.com/xuri/excelize/v2" // Excel files
)

const rosterSheet = "Roster"

// WriteRoster writes the course roster with grades as an xlsx workbook
func WriteRoster(w io.Writer, course domain.Course, roster []domain.RosterEntry) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close roster workbook")
		}
	}()
	if err := f.SetSheetName(f.GetSheetName(0), rosterSheet); err != nil {
		return errors.Wrap(err, "name roster sheet")
	}
	if err := f.SetSheetRow(rosterSheet, "A1", &[]any{"Username", "Email", "Grade"}); err != nil {
		return errors.Wrap(err, "write roster header")
	}
	for i, entry := range roster {
		cell, err := excelize.CoordinatesToCellName(1, i+2) // Data starts on row 2
		if err != nil {
			return errors.Wrap(err, "roster cell")
		}
		if err := f.SetSheetRow(rosterSheet, cell, &[]any{entry.Username, entry.Email, entry.Grade}); err != nil {
			return errors.Wrapf(err, "write roster row %d", i+2)
		}
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: course.Title + " roster"}); err != nil {
		return errors.Wrap(err, "roster properties")
	}
	return errors.Wrap(f.Write(w), "write roster workbook")
}

// ReadUsernames returns the usernames listed in the first column of the first sheet.
// A header row whose first cell reads "username" is skipped, as are blank cells.
func ReadUsernames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open spreadsheet")
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close uploaded workbook")
		}
	}()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("spreadsheet does not contain any sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", sheet)
	}
	usernames := []string{}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" || (i == 0 && strings.EqualFold(name, "username")) {
			continue
		}
		usernames = append(usernames, name)
	}
	return usernames, nil
}
