// Package database implements the connection-backed database process: one
// sqlite file per requested database name, with transactional helpers that
// each wrap a single commit-or-rollback unit.
package database

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/GriffinCanCode/TermDesk/internal/process"
	"github.com/GriffinCanCode/TermDesk/internal/shared/types"
)

// Process is one open database connection tracked by the database service.
type Process struct {
	process.Identity

	Name string
	Path string
	db   *sql.DB
}

// Open creates or opens the sqlite file for the named database under dir.
func Open(dir, name string) (*Process, error) {
	path := filepath.Join(dir, name+".db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", name, err)
	}
	// sqlite tolerates a single writer; serialize at the pool level instead
	// of surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	return &Process{
		Identity: process.NewIdentity(types.ProcessService, name, "databaseprocess"),
		Name:     name,
		Path:     path,
		db:       db,
	}, nil
}

// Close closes the underlying connection.
func (p *Process) Close() error {
	return p.db.Close()
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func (p *Process) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("database %q: begin: %w", p.Name, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("database %q: %w (rollback also failed: %v)", p.Name, err, rbErr)
		}
		return fmt.Errorf("database %q: %w", p.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("database %q: commit: %w", p.Name, err)
	}
	return nil
}

// ExecScript executes a multi-statement SQL script in one transaction.
func (p *Process) ExecScript(script string) error {
	return p.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(script)
		return err
	})
}

// CreateTable creates a table if it does not exist. Column order is
// deterministic (sorted by name) so repeated calls produce identical DDL.
func (p *Process) CreateTable(table string, columns map[string]string) error {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]string, len(names))
	for i, name := range names {
		defs[i] = fmt.Sprintf("%s %s", name, columns[name])
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s);", table, strings.Join(defs, ", "))

	return p.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(query)
		return err
	})
}

// InsertOne inserts a single row.
func (p *Process) InsertOne(table string, columns []string, values []any) error {
	if len(columns) != len(values) {
		return fmt.Errorf("database %q: insert into %s: %d columns but %d values",
			p.Name, table, len(columns), len(values))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		table, strings.Join(columns, ", "), placeholders)

	return p.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(query, values...)
		return err
	})
}

// UpdateColumn sets one column on the rows matching the condition.
func (p *Process) UpdateColumn(table, column string, newValue any, condColumn string, condValue any) error {
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?;", table, column, condColumn)
	return p.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(query, newValue, condValue)
		return err
	})
}

// DeleteOne deletes the rows matching the condition.
func (p *Process) DeleteOne(table, column string, value any) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?;", table, column)
	return p.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(query, value)
		return err
	})
}

// FetchAll runs a query and returns every matching row as a value slice.
func (p *Process) FetchAll(query string, args ...any) ([][]any, error) {
	var out [][]any
	err := p.withTx(func(tx *sql.Tx) error {
		rows, err := tx.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		for rows.Next() {
			row := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range row {
				ptrs[i] = &row[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return err
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchOne runs a query and returns the first matching row, or nil when
// nothing matches.
func (p *Process) FetchOne(query string, args ...any) ([]any, error) {
	rows, err := p.FetchAll(query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
