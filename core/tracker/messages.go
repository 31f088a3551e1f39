package tracker

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/roster"
)

// Describe returns the message shown to the operator for `err`.
func Describe(err error) string {
	var colErr *roster.ColumnError
	var readErr *attendance.ReadError
	var writeErr *attendance.WriteError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, roster.ErrHeaderNotFound):
		return fmt.Sprintf(
			"No header row containing both a name (\"Họ tên\") and a student ID (\"Mã SV\") label was found in the first %d rows. "+
				"Please upload a corrected file.",
			roster.MaxHeaderScan,
		)
	case errors.As(err, &colErr):
		return fmt.Sprintf(
			"Internal error: a header row was found but the %s column(s) could not be matched. Normalized labels: %s.",
			strings.Join(colErr.Missing, " and "), strings.Join(colErr.Labels, ", "),
		)
	case errors.Is(err, roster.ErrUnsupportedFormat):
		return "Unsupported file format: please upload an .xlsx, .xls or .csv file."
	case errors.Is(err, roster.ErrUnreadableFile):
		return "The file could not be read. Make sure it is a valid Excel (.xlsx) file."
	case errors.As(err, &readErr):
		return fmt.Sprintf("The attendance of %s could not be loaded (%v). Please try again.", readErr.Key, readErr.Err)
	case errors.As(err, &writeErr):
		return fmt.Sprintf(
			"The attendance of %s could not be saved (%v). Previously saved attendance is unchanged; please try again.",
			writeErr.Key, writeErr.Err,
		)
	case errors.Is(err, attendance.ErrNoRoster):
		return "No attendance has been recorded yet for this class and subject: upload the class roster first."
	case errors.Is(err, attendance.ErrRosterChanged):
		return "The student list is read-only: only today's attendance can be edited."
	default:
		return err.Error()
	}
}
