package roster

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrHeaderNotFound    = errors.New("no header row containing both a name and a student ID label")
	ErrUnreadableFile    = errors.New("the file is not a readable spreadsheet")
	ErrUnsupportedFormat = errors.New("unsupported file format (expected .xlsx, .xls or .csv)")
)

// ColumnError is returned when a header row was found but its labels cannot be mapped to the name and ID columns.
type ColumnError struct {
	Labels  []string
	Missing []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("cannot resolve the %s column(s) among labels %q", strings.Join(e.Missing, " and "), e.Labels)
}

// ParseError is returned when an uploaded roster does not conform. Err is ErrHeaderNotFound or a *ColumnError.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parsing roster: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
