package attendance

import "context"

// Store persists attendance Tables.
// Implementations report failures instead of retrying, and never leave a partially written Table behind.
type Store interface {
	// Read returns the Table persisted under `key`; ok is false when nothing was recorded yet.
	Read(ctx context.Context, key Key) (t *Table, ok bool, err error)
	// Write replaces whatever is persisted under `key` with `t`.
	Write(ctx context.Context, key Key, t *Table) error
}
