// Package sqlite provides the durable SQLite-backed table store.
//
// Each logical sheet is stored as a columns record plus position-ordered
// rows of JSON-encoded cells, so ReadTable/WriteTable round-trip the exact
// grid the funnel operators expect.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sqlitemigrate "github.com/leadfunnel/personaquiz/internal/platform/storage/sqlitemigrate"
	"github.com/leadfunnel/personaquiz/internal/storage"
	"github.com/leadfunnel/personaquiz/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for sheet tables.
type Store struct {
	// mu serializes whole-table writes; the store exposes no finer
	// granularity than overwrite-the-sheet.
	mu    sync.Mutex
	sqlDB *sql.DB
}

// Open opens and migrates a SQLite table store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ReadTable loads a whole sheet by name.
func (s *Store) ReadTable(ctx context.Context, name string) (storage.Table, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Table{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Table{}, fmt.Errorf("sheet name is required")
	}

	var columnsJSON string
	row := s.sqlDB.QueryRowContext(ctx, `SELECT columns_json FROM sheet_columns WHERE sheet = ?`, name)
	if err := row.Scan(&columnsJSON); err != nil {
		if err == sql.ErrNoRows {
			return storage.Table{}, storage.ErrNotFound
		}
		return storage.Table{}, fmt.Errorf("read sheet columns: %w", err)
	}

	var table storage.Table
	if err := json.Unmarshal([]byte(columnsJSON), &table.Columns); err != nil {
		return storage.Table{}, fmt.Errorf("decode sheet columns: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT cells_json FROM sheet_rows WHERE sheet = ? ORDER BY position`, name)
	if err != nil {
		return storage.Table{}, fmt.Errorf("read sheet rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cellsJSON string
		if err := rows.Scan(&cellsJSON); err != nil {
			return storage.Table{}, fmt.Errorf("scan sheet row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return storage.Table{}, fmt.Errorf("decode sheet row: %w", err)
		}
		table.Rows = append(table.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return storage.Table{}, fmt.Errorf("iterate sheet rows: %w", err)
	}
	return table, nil
}

// WriteTable replaces a whole sheet by name.
func (s *Store) WriteTable(ctx context.Context, name string, table storage.Table) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("sheet name is required")
	}

	columnsJSON, err := json.Marshal(table.Columns)
	if err != nil {
		return fmt.Errorf("encode sheet columns: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sheet write: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sheet_columns (sheet, columns_json) VALUES (?, ?)
		 ON CONFLICT(sheet) DO UPDATE SET columns_json = excluded.columns_json`,
		name, string(columnsJSON)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("write sheet columns: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet = ?`, name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear sheet rows: %w", err)
	}

	for position, cells := range table.Rows {
		cellsJSON, err := json.Marshal(cells)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode sheet row %d: %w", position, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (sheet, position, cells_json) VALUES (?, ?, ?)`,
			name, position, string(cellsJSON)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write sheet row %d: %w", position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sheet write: %w", err)
	}
	return nil
}
