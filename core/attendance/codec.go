package attendance

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
)

// Persisted labels & marks
const (
	NameLabel = "HỌ TÊN"
	IDLabel   = "MÃ SV"

	PresentMark = "X"
	AbsentMark  = ""
)

var errMalformedTable = errors.New("malformed attendance table")

// RawTable is the spreadsheet representation of a Table: a header row followed by one row per student.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Encode converts `t` to its persisted representation.
func Encode(t *Table) RawTable {
	header := make([]string, 0, len(t.Dates)+2)
	header = append(header, NameLabel, IDLabel)
	header = append(header, t.Dates...)

	rows := make([][]string, len(t.Students))
	for i, st := range t.Students {
		row := make([]string, 0, len(header))
		row = append(row, st.Name, st.ID)
		for j := range t.Dates {
			if j < len(t.Marks[i]) && t.Marks[i][j] {
				row = append(row, PresentMark)
			} else {
				row = append(row, AbsentMark)
			}
		}
		rows[i] = row
	}
	return RawTable{Header: header, Rows: rows}
}

// Decode converts a persisted representation to a Table.
// The first two columns are the identity columns whatever their labels; every other column is a date-label.
// Marks are decoded with ParseMark; a repeated date-label keeps its first column.
func Decode(raw RawTable) (*Table, error) {
	if len(raw.Header) < 2 {
		return nil, errors.Wrapf(errMalformedTable, "expected at least 2 columns, got %d", len(raw.Header))
	}

	t := &Table{}
	cols := make([]int, 0, len(raw.Header)-2)
	for j := 2; j < len(raw.Header); j++ {
		label := core.CleanString(raw.Header[j])
		if label == "" || t.HasDate(label) {
			continue
		}
		t.Dates = append(t.Dates, label)
		cols = append(cols, j)
	}

	for _, row := range raw.Rows {
		name, id := cell(row, 0), cell(row, 1)
		if name == "" && id == "" {
			continue
		}
		marks := make([]bool, len(cols))
		for k, j := range cols {
			marks[k] = ParseMark(cell(row, j))
		}
		t.Students = append(t.Students, Student{Name: name, ID: id})
		t.Marks = append(t.Marks, marks)
	}
	return t, nil
}

// ParseMark decodes a persisted attendance cell: the sentinel "X" (any case) or a native boolean TRUE mean present.
func ParseMark(s string) bool {
	s = strings.ToUpper(core.CleanString(s))
	return s == PresentMark || s == "TRUE"
}

func cell(row []string, i int) string {
	if i < len(row) {
		return core.CleanString(row[i])
	}
	return ""
}
