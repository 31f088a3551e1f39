package attendance

import "github.com/pmezard/go-difflib/difflib"

// RosterDrift returns a unified diff between the persisted roster and an uploaded one,
// or an empty string when both list the same students in the same order.
func RosterDrift(persisted, uploaded []Student) string {
	a, b := rosterLines(persisted), rosterLines(uploaded)
	if equalLines(a, b) {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: "persisted",
		ToFile:   "uploaded",
		Context:  1,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func rosterLines(students []Student) []string {
	lines := make([]string, 0, len(students))
	for _, st := range students {
		lines = append(lines, st.ID+"\t"+st.Name+"\n")
	}
	return lines
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
