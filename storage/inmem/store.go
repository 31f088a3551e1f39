// Package inmemdb keeps attendance Tables in memory. It backs tests and the "memory" storage backend.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/rollcall/core/attendance"
)

type Store struct {
	table map[attendance.Key]*attendance.Table
	mutex sync.RWMutex

	// ReadErr & WriteErr, when set, are returned by Read & Write (failure injection in tests).
	ReadErr  error
	WriteErr error
}

var _ attendance.Store = (*Store)(nil)

func New() *Store {
	return &Store{table: make(map[attendance.Key]*attendance.Table)}
}

func (s *Store) Read(_ context.Context, key attendance.Key) (*attendance.Table, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.ReadErr != nil {
		return nil, false, s.ReadErr
	}
	t, ok := s.table[key]
	if !ok {
		return nil, false, nil
	}
	return t.Clone(), true, nil
}

func (s *Store) Write(_ context.Context, key attendance.Key, t *attendance.Table) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.table[key] = t.Clone()
	return nil
}

// Len returns the number of persisted Tables.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.table)
}
