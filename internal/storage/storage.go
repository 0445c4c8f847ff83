// Package storage defines the table-store contract backing the funnel.
//
// The roster and lead data live in named tables of string cells, mirroring
// the spreadsheet the funnel operators maintain. The store has no atomic
// append: writers read a table, modify it, and overwrite the whole thing.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested table is missing.
var ErrNotFound = errors.New("table not found")

// IsNotFound reports whether err indicates a missing table.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Table is one named grid of string cells with a fixed column order.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	clone := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		clone.Rows = append(clone.Rows, append([]string(nil), row...))
	}
	return clone
}

// ColumnIndex returns the position of a column name, or -1 when absent.
func (t Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// TableStore reads and overwrites named tables.
//
// WriteTable replaces the table wholesale; callers doing read-modify-write
// must preserve pre-existing rows and column order themselves. Concurrent
// writers are serialized only by the backing store, so last-writer-wins is
// the expected failure mode under contention.
type TableStore interface {
	ReadTable(ctx context.Context, name string) (Table, error)
	WriteTable(ctx context.Context, name string, table Table) error
}
