package attendance

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Report labels
var ReportHeader = []interface{}{"Họ tên", "Mã SV", "Số buổi học", "Số buổi vắng", "Điểm (%)"}

// WriteReport writes `rows` as an .xlsx workbook with a single sheet named after the subject.
func WriteReport(w io.Writer, key Key, rows []ReportRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(key.SafeSubject())
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Wrap(err, "naming report sheet")
	}
	if err := f.SetSheetRow(sheet, "A1", &ReportHeader); err != nil {
		return errors.Wrap(err, "writing report header")
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{r.Name, r.StudentID, r.Attended, r.Absent, r.Percentage}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "writing report row %d", i+1)
		}
	}
	_, err := f.WriteTo(w)
	return errors.Wrap(err, "writing report")
}

// sheetName cuts `s` to the 31 characters allowed in a worksheet name.
func sheetName(s string) string {
	r := []rune(s)
	if len(r) > 31 {
		r = r[:31]
	}
	if len(r) == 0 {
		return "Sheet1"
	}
	return string(r)
}
