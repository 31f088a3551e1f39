package roster

import (
	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
)

// Result is a parsed roster and where its data was found.
type Result struct {
	Table     *attendance.Table
	HeaderRow int      // index of the header row in the raw rows
	Labels    []string // normalized header labels, ignored ones excluded
	Columns   Columns  // indices into Labels
}

// Load turns raw uploaded rows into an attendance Table holding a single date-label: `today`.
func Load(rows [][]string, today string) (*attendance.Table, error) {
	res, err := Parse(rows, today)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// Parse is Load with the details of the header detection.
// The header is searched in the first MaxHeaderScan rows; data rows are the ones below it.
// Rows with neither a name nor an ID are skipped. A column labelled `today` in the upload is kept.
func Parse(rows [][]string, today string) (*Result, error) {
	h, err := LocateHeader(rows, MaxHeaderScan)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	// re-label with the header row, dropping ignored columns
	var labels []string
	var idx []int // raw column index of labels[i]
	for j, c := range rows[h] {
		label := core.NormalizeLabel(c)
		if isIgnored(label) {
			continue
		}
		labels = append(labels, label)
		idx = append(idx, j)
	}

	cols, err := ResolveColumns(labels)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	todayCol := -1
	for i, label := range labels {
		if label == core.NormalizeLabel(today) {
			todayCol = idx[i]
			break
		}
	}

	t := attendance.NewTable(nil, today)
	for _, row := range rows[h+1:] {
		name, id := cell(row, idx[cols.Name]), cell(row, idx[cols.ID])
		if name == "" && id == "" {
			continue
		}
		t.Students = append(t.Students, attendance.Student{Name: name, ID: id})
		t.Marks = append(t.Marks, []bool{todayCol >= 0 && attendance.ParseMark(cell(row, todayCol))})
	}

	return &Result{Table: t, HeaderRow: h, Labels: labels, Columns: cols}, nil
}

func cell(row []string, i int) string {
	if i >= 0 && i < len(row) {
		return core.CleanString(row[i])
	}
	return ""
}
