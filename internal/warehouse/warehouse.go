// Package warehouse loads the raw tables into a local SQLite database and
// builds the conformed (silver) and analytics (gold) models on top of them.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/navigator/internal/tables"
)

// DefaultPath is the warehouse location used when none is configured.
const DefaultPath = "data/processed/navigator.db"

// Warehouse is an open SQLite warehouse.
type Warehouse struct {
	db   *sql.DB
	path string
}

// Open opens or creates the warehouse at path and checks its integrity.
func Open(ctx context.Context, path string) (*Warehouse, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create warehouse directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	if err := ValidateIntegrity(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database integrity check failed: %w", err)
	}

	return &Warehouse{db: db, path: path}, nil
}

// OpenExisting opens a warehouse that must already exist.
func OpenExisting(ctx context.Context, path string) (*Warehouse, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("warehouse %s: %w", path, err)
	}
	return Open(ctx, path)
}

// Path returns the database file path.
func (w *Warehouse) Path() string {
	return w.path
}

// DB exposes the underlying handle for ad-hoc queries.
func (w *Warehouse) DB() *sql.DB {
	return w.db
}

// Close closes the database.
func (w *Warehouse) Close() error {
	return w.db.Close()
}

// LoadTables replaces the bronze tables with tabs in one transaction. Rows
// are loaded as-is with no business logic applied.
func (w *Warehouse) LoadTables(ctx context.Context, tabs []*tables.Table) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tabs {
		if err := loadTable(ctx, tx, t); err != nil {
			return fmt.Errorf("failed to load %s: %w", t.Name, err)
		}
	}

	return tx.Commit()
}

func loadTable(ctx context.Context, tx *sql.Tx, t *tables.Table) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", t.Name)); err != nil {
		return err
	}

	defs := make([]string, len(t.Columns))
	names := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		def := col.Name + " " + sqliteType(col.Type)
		if !col.Nullable {
			def += " NOT NULL"
		}
		defs[i] = def
		names[i] = col.Name
		marks[i] = "?"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for r, row := range t.Rows {
		for c, col := range t.Columns {
			args[c] = sqliteValue(col, row[c])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("row %d: %w", r, err)
		}
	}
	return nil
}

func sqliteType(t tables.Type) string {
	switch t {
	case tables.Int64, tables.Bool:
		return "INTEGER"
	case tables.Float64:
		return "REAL"
	default:
		return "TEXT"
	}
}

// sqliteValue stores timestamps and dates in their ISO text form and
// booleans as 0/1.
func sqliteValue(col tables.Column, v any) any {
	if v == nil {
		return nil
	}
	switch col.Type {
	case tables.Timestamp, tables.Date:
		s, _ := tables.FormatCell(col, v)
		return s
	case tables.Bool:
		if v.(bool) {
			return 1
		}
		return 0
	default:
		return v
	}
}

// RowCount returns the number of rows in table.
func (w *Warehouse) RowCount(ctx context.Context, table string) (int, error) {
	var n int
	if err := w.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// ValidateIntegrity runs PRAGMA integrity_check on the database.
func ValidateIntegrity(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `PRAGMA integrity_check`)
	if err != nil {
		return fmt.Errorf("failed to run integrity_check: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result string
		if err := rows.Scan(&result); err != nil {
			return fmt.Errorf("failed to scan integrity_check result: %w", err)
		}
		if result != "ok" {
			return fmt.Errorf("integrity_check failed: %s", result)
		}
	}
	return rows.Err()
}
