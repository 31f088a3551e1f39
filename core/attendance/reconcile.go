package attendance

// Reconcile merges a persisted Table with the class held on `today`.
// The returned Table is a copy of `persisted` in which `today` is a date-label; it is appended as the rightmost,
// all absent, column when missing. Existing date-labels keep their order and values.
func Reconcile(persisted *Table, today string) *Table {
	t := persisted.Clone()
	t.normalize()
	t.AddDate(today)
	return t
}
