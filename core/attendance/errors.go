package attendance

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNoRoster      = errors.New("no attendance recorded yet for this class and subject: a roster upload is required")
	ErrRosterChanged = errors.New("the roster columns are read-only")
)

// ReadError is returned when a Store fails to read a Table. Err holds the backend's cause.
type ReadError struct {
	Key Key
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading attendance of %s: %v", e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError is returned when a Store fails to write a Table. The previously persisted Table is left untouched.
type WriteError struct {
	Key Key
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing attendance of %s: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
