package tracker

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
)

// Session is the attendance Table being worked on by an operator.
// It is owned by the caller and handed back to the Service on every operation;
// only the column of Today may be edited.
type Session struct {
	Key       attendance.Key    `json:"key"`
	Today     string            `json:"today"`
	Persisted bool              `json:"persisted"` // false until the Table is written for the first time
	Table     *attendance.Table `json:"table"`
}

// SetPresent marks the student at row `i` present or absent today.
func (s *Session) SetPresent(i int, present bool) error {
	j := s.Table.DateIndex(s.Today)
	if j < 0 {
		return errors.Errorf("session has no %q column", s.Today)
	}
	if i < 0 || i >= len(s.Table.Students) {
		return core.NewValidationError(
			errors.Errorf("no student at row %d", i),
			core.FieldError{Field: "row", Error: fmt.Sprintf("must be between 0 and %d", len(s.Table.Students)-1)},
		)
	}
	s.Table.Marks[i][j] = present
	return nil
}

// ApplyToday replaces today's column with `present`, given in roster order.
func (s *Session) ApplyToday(present []bool) error {
	if len(present) != len(s.Table.Students) {
		msg := fmt.Sprintf("expected %d values, got %d", len(s.Table.Students), len(present))
		return core.NewValidationError(errors.New(msg), core.FieldError{Field: "present", Error: msg})
	}
	for i, p := range present {
		if err := s.SetPresent(i, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) Report() []attendance.ReportRow {
	return attendance.GenerateReport(s.Table)
}
