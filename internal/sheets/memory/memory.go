// Package memory holds an in-process ledger used in tests and when no
// Google credentials are configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tally/internal/core"
)

type Store struct {
	mu   sync.Mutex
	rows map[int64]core.Transaction

	// FailNext makes the next write or delete fail, for exercising
	// error paths in worker tests.
	FailNext bool
}

func New() *Store {
	return &Store{rows: make(map[int64]core.Transaction)}
}

// AppendTransaction stores the row keyed by transaction ID, replacing
// any previous export of the same transaction.
func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNext {
		s.FailNext = false
		return "", fmt.Errorf("ledger unavailable")
	}
	s.rows[t.ID] = t
	return fmt.Sprintf("mem:%d", t.ID), nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNext {
		s.FailNext = false
		return fmt.Errorf("ledger unavailable")
	}
	delete(s.rows, id)
	return nil
}

// Get returns the exported row for a transaction, if any.
func (s *Store) Get(id int64) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	return t, ok
}

// Len reports how many rows the ledger holds.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
