// Package sqlite implements a SQLite-backed storage.Store using
// database/sql. Batches are written inside a single transaction, which both
// keeps performance acceptable and gives the all-or-nothing and
// replace-atomicity guarantees the engine requires.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3

	"costengine/internal/schema"
	"costengine/internal/storage"
	"costengine/pkg/records"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		return NewStore(ctx, cfg.DSN)
	})
}

// Store is a SQLite-backed implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite connection using the provided DSN, e.g.
//
//	"cost_management.db"
//	"file:cost_management.db?cache=shared"
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// Serialized access; the engine issues one statement stream per handle.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Write inserts the batch under the given policy. Both policies run in one
// transaction: a failing record rolls back the whole batch, and REPLACE
// exposes either the old table or the new one to concurrent readers.
func (s *Store) Write(ctx context.Context, t schema.TableDef, recs []records.Record, policy storage.Policy) (int64, error) {
	columns, rows := storage.BuildInsertRows(t, recs, time.Now().UTC())
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: table %s has no columns", t.Name)
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(t.Name),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}

	if policy == storage.PolicyReplace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(t.Name)); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: clear %s: %w", t.Name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert into %s: %w", t.Name, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Read returns rows matching the filter, in write order (reverse write order
// when the table declares NewestFirst).
func (s *Store) Read(ctx context.Context, t schema.TableDef, f storage.Filter) ([]records.Record, error) {
	cols := t.ColumnNames()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(quoted, ", "), quoteIdent(t.Name))

	var args []any
	if filterCols := storage.FilterColumns(f); len(filterCols) > 0 {
		conds := make([]string, len(filterCols))
		for i, c := range filterCols {
			conds[i] = quoteIdent(c) + " = ?"
			args = append(args, f.Equals[c])
		}
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	if t.NewestFirst {
		sb.WriteString(` ORDER BY "id" DESC`)
	} else {
		sb.WriteString(` ORDER BY "id" ASC`)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: select from %s: %w", t.Name, err)
	}
	defer rows.Close()

	var out []records.Record
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s: %w", t.Name, err)
		}
		rec := make(records.Record, len(cols))
		for i, c := range t.Columns {
			rec[c.Name] = storage.DecodeValue(c, raw[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate %s: %w", t.Name, err)
	}
	return out, nil
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Close releases the underlying handle.
func (s *Store) Close() error { return s.db.Close() }
