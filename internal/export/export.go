// Package export renders student listings as XLSX spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/aanand-mishra/queryset-api/internal/types"
)

// SheetName is the name of the single worksheet in a roster export.
const SheetName = "Students"

var header = []string{"ID", "Name", "Age", "Email", "Course", "Enrolled At"}

// WriteRoster writes students, in the given order, as a one-sheet
// workbook with a header row.
func WriteRoster(w io.Writer, students []types.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	// A new workbook starts with "Sheet1".
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	if err := setRow(f, 1, toAny(header)); err != nil {
		return err
	}
	for i, s := range students {
		row := []any{
			s.ID,
			s.Name,
			s.Age,
			s.Email,
			s.CourseTitle(),
			s.EnrolledAt.Format("2006-01-02 15:04:05"),
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return fmt.Errorf("export: set %s: %w", cell, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
