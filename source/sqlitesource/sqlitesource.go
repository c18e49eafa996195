// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/sqlitesource/sqlitesource.go
// Summary: Paged row source reading one text column from a SQLite table.
//
// Rows are ordered by rowid. Every fetch is a LIMIT/OFFSET query run on its
// own goroutine, so the scroller sees it as an asynchronous page.

package sqlitesource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/framegrace/texelscroll/scroller"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Row is one record of the table.
type Row struct {
	ID   int64
	Text string
}

// Source reads rows from table.column.
type Source struct {
	db     *sql.DB
	table  string
	column string

	selectQuery string
	countQuery  string
	insertQuery string
}

// Open opens (creating if needed) the database at path. The table is created
// when it does not exist.
func Open(path, table, column string) (*Source, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("sqlitesource: invalid table name %q", table)
	}
	if !identRe.MatchString(column) {
		return nil, fmt.Errorf("sqlitesource: invalid column name %q", column)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlitesource: create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitesource: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitesource: connect: %w", err)
	}

	qt, qc := quoteIdent(table), quoteIdent(column)
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s TEXT NOT NULL)`, qt, qc)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitesource: create table: %w", err)
	}

	return &Source{
		db:          db,
		table:       table,
		column:      column,
		selectQuery: fmt.Sprintf(`SELECT rowid, %s FROM %s ORDER BY rowid LIMIT ? OFFSET ?`, qc, qt),
		countQuery:  fmt.Sprintf(`SELECT COUNT(*) FROM %s`, qt),
		insertQuery: fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?)`, qt, qc),
	}, nil
}

// quoteIdent quotes name as an SQL identifier. Embedded quotes are doubled.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Count returns the number of rows in the table.
func (s *Source) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.countQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlitesource: count: %w", err)
	}
	return n, nil
}

// RowCount snapshots the table size for a Scroller config.
func (s *Source) RowCount(ctx context.Context) (scroller.Count, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return scroller.Count{}, err
	}
	return scroller.FixedCount(n), nil
}

// Fetch implements scroller.Source. The query runs asynchronously.
func (s *Source) Fetch(ctx context.Context, start, count int) scroller.Fetch[Row] {
	return scroller.Deferred(ctx, func(ctx context.Context) ([]Row, error) {
		return s.Rows(ctx, start, count)
	})
}

// Rows reads count rows starting at the zero-based position start.
func (s *Source) Rows(ctx context.Context, start, count int) ([]Row, error) {
	if count <= 0 {
		return nil, nil
	}
	rs, err := s.db.QueryContext(ctx, s.selectQuery, count, max(start, 0))
	if err != nil {
		return nil, fmt.Errorf("sqlitesource: query rows %d+%d: %w", start, count, err)
	}
	defer rs.Close()

	rows := make([]Row, 0, count)
	for rs.Next() {
		var r Row
		if err := rs.Scan(&r.ID, &r.Text); err != nil {
			return nil, fmt.Errorf("sqlitesource: scan: %w", err)
		}
		rows = append(rows, r)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("sqlitesource: rows: %w", err)
	}
	return rows, nil
}

// Import appends lines to the table in one transaction.
func (s *Source) Import(ctx context.Context, lines []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitesource: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.insertQuery)
	if err != nil {
		return fmt.Errorf("sqlitesource: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, line := range lines {
		if _, err := stmt.ExecContext(ctx, line); err != nil {
			return fmt.Errorf("sqlitesource: insert line %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitesource: commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Source) Close() error {
	return s.db.Close()
}
