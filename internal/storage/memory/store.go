// Package memory provides an in-memory table store for tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/leadfunnel/personaquiz/internal/storage"
)

// Store is a thread-safe in-memory table store.
type Store struct {
	mu     sync.RWMutex
	tables map[string]storage.Table
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{tables: make(map[string]storage.Table)}
}

// Seed writes a table without going through the TableStore contract,
// useful for arranging fixtures.
func (s *Store) Seed(name string, table storage.Table) {
	s.mu.Lock()
	s.tables[name] = table.Clone()
	s.mu.Unlock()
}

// ReadTable returns a copy of the named table.
func (s *Store) ReadTable(ctx context.Context, name string) (storage.Table, error) {
	if err := ctx.Err(); err != nil {
		return storage.Table{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.tables[name]
	if !ok {
		return storage.Table{}, storage.ErrNotFound
	}
	return table.Clone(), nil
}

// WriteTable replaces the named table.
func (s *Store) WriteTable(ctx context.Context, name string, table storage.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.tables[name] = table.Clone()
	s.mu.Unlock()
	return nil
}
