package roster

import "github.com/trezcool/rollcall/core"

// Columns locates the identity columns of a header row.
type Columns struct {
	Name     int
	ID       int
	NameRule string // rule that matched the name label
	IDRule   string // rule that matched the ID label
}

// ResolveColumns maps header labels to the name and ID columns. Labels are compared normalized.
// The ID column is searched with the strict rules first ("mã sv", "mã số", "masv") and then with the
// loose ones ("mã", "id"). A *ColumnError is returned if either column is still unresolved.
func ResolveColumns(labels []string) (Columns, error) {
	norm := make([]string, len(labels))
	for i, l := range labels {
		norm[i] = core.NormalizeLabel(l)
	}

	var cols Columns
	cols.Name, cols.NameRule = nameRules.first(norm)
	cols.ID, cols.IDRule = strictIDRules.first(norm)
	if cols.ID < 0 {
		cols.ID, cols.IDRule = looseIDRules.first(norm)
	}

	var missing []string
	if cols.Name < 0 {
		missing = append(missing, "name")
	}
	if cols.ID < 0 {
		missing = append(missing, "student ID")
	}
	if missing != nil {
		return Columns{}, &ColumnError{Labels: norm, Missing: missing}
	}
	return cols, nil
}
