package attendance

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
)

// DateLayout is the layout of date-label columns ("DD/MM").
const DateLayout = "02/01"

// Subjects
const (
	SubjectPython      = "Python"
	SubjectCpp         = "C++"
	SubjectMath        = "Toán cao cấp"
	SubjectDataScience = "Khoa học dữ liệu"
	SubjectAppliedIT   = "Tin học ứng dụng"
	SubjectEnglish     = "Tiếng Anh chuyên ngành"
)

var Subjects = []string{
	SubjectPython,
	SubjectCpp,
	SubjectMath,
	SubjectDataScience,
	SubjectAppliedIT,
	SubjectEnglish,
}

var errUnknownSubject = errors.New("unknown subject")

// ParseSubject returns the canonical spelling of `s` (compared case-insensitively).
func ParseSubject(s string) (string, error) {
	label := core.NormalizeLabel(s)
	for _, subj := range Subjects {
		if core.NormalizeLabel(subj) == label {
			return subj, nil
		}
	}
	return "", errors.Wrapf(errUnknownSubject, "%q", s)
}

// TodayLabel returns the date-label of `now`.
func TodayLabel(now time.Time) string {
	return now.Format(DateLayout)
}

// ClassFromFilename derives the class name from an uploaded roster file name: "K65-CNTT.xlsx" -> "K65-CNTT".
func ClassFromFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	return core.CleanString(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Key selects one persisted attendance Table.
type Key struct {
	Class   string `json:"class" query:"class" validate:"required,classname"`
	Subject string `json:"subject" query:"subject" validate:"required,subject"`
}

func (k Key) String() string { return k.Class + "/" + k.Subject }

// SafeSubject is the subject as used in file and sheet names.
func (k Key) SafeSubject() string { return strings.ReplaceAll(k.Subject, " ", "_") }

// Student is one roster row. ID is not guaranteed to be unique.
type Student struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Table is the attendance matrix of a class+subject.
// Marks[i][j] tells whether Students[i] attended on Dates[j].
type Table struct {
	Students []Student `json:"students"`
	Dates    []string  `json:"dates"`
	Marks    [][]bool  `json:"marks"`
}

// NewTable creates a Table with no attendance recorded for `dates`.
func NewTable(students []Student, dates ...string) *Table {
	t := &Table{
		Students: append([]Student{}, students...),
		Dates:    make([]string, 0, len(dates)),
		Marks:    make([][]bool, len(students)),
	}
	for i := range t.Marks {
		t.Marks[i] = make([]bool, 0, len(dates))
	}
	for _, d := range dates {
		t.AddDate(d)
	}
	return t
}

// DateIndex returns the column index of `label` or -1.
func (t *Table) DateIndex(label string) int {
	for i, d := range t.Dates {
		if d == label {
			return i
		}
	}
	return -1
}

func (t *Table) HasDate(label string) bool { return t.DateIndex(label) >= 0 }

// AddDate appends `label` as the rightmost date column (all absent), unless it already exists.
func (t *Table) AddDate(label string) {
	if t.HasDate(label) {
		return
	}
	t.Dates = append(t.Dates, label)
	for i := range t.Marks {
		t.Marks[i] = append(t.Marks[i], false)
	}
}

// Present tells whether the student at row `i` attended on `label`.
func (t *Table) Present(i int, label string) bool {
	j := t.DateIndex(label)
	if j < 0 || i < 0 || i >= len(t.Marks) {
		return false
	}
	return t.Marks[i][j]
}

// Clone returns a deep copy of `t`.
func (t *Table) Clone() *Table {
	c := &Table{
		Students: append([]Student{}, t.Students...),
		Dates:    append([]string{}, t.Dates...),
		Marks:    make([][]bool, len(t.Marks)),
	}
	for i, row := range t.Marks {
		c.Marks[i] = append([]bool{}, row...)
	}
	return c
}

// normalize pads (or cuts) every row of marks to the number of dates.
func (t *Table) normalize() {
	if len(t.Marks) < len(t.Students) {
		t.Marks = append(t.Marks, make([][]bool, len(t.Students)-len(t.Marks))...)
	}
	t.Marks = t.Marks[:len(t.Students)]
	for i, row := range t.Marks {
		switch {
		case len(row) < len(t.Dates):
			t.Marks[i] = append(row, make([]bool, len(t.Dates)-len(row))...)
		case len(row) > len(t.Dates):
			t.Marks[i] = row[:len(t.Dates)]
		}
	}
}

// ReportRow holds the attendance statistics of one student.
type ReportRow struct {
	Name       string  `json:"name"`
	StudentID  string  `json:"student_id"`
	Attended   int     `json:"attended"`
	Absent     int     `json:"absent"`
	Percentage float64 `json:"percentage"`
}
