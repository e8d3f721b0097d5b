// Package postgres implements a Postgres-backed storage.Store using pgx v5.
// Batches are queued through a pgx.Batch inside a single transaction, which
// provides the same all-or-nothing and replace-atomicity guarantees as the
// SQLite backend.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"costengine/internal/schema"
	"costengine/internal/storage"
	"costengine/pkg/records"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		return NewStore(ctx, cfg.DSN)
	})
}

// Store is a Postgres-backed implementation of storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore opens a pgx pool for the given DSN and verifies connectivity.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Write inserts the batch under the given policy inside one transaction.
func (s *Store) Write(ctx context.Context, t schema.TableDef, recs []records.Record, policy storage.Policy) (int64, error) {
	columns, rows := storage.BuildInsertRows(t, recs, time.Now().UTC())
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: table %s has no columns", t.Name)
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(t.Name),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if policy == storage.PolicyReplace {
		if _, err := tx.Exec(ctx, "DELETE FROM "+quoteIdent(t.Name)); err != nil {
			return 0, fmt.Errorf("postgres: clear %s: %w", t.Name, err)
		}
	}

	var batch pgx.Batch
	for _, row := range rows {
		batch.Queue(insertSQL, row...)
	}
	br := tx.SendBatch(ctx, &batch)
	var inserted int64
	for range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("postgres: insert into %s: %w", t.Name, err)
		}
		inserted++
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("postgres: close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
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
			conds[i] = fmt.Sprintf("%s = $%d", quoteIdent(c), i+1)
			args = append(args, f.Equals[c])
		}
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	if t.NewestFirst {
		sb.WriteString(` ORDER BY "id" DESC`)
	} else {
		sb.WriteString(` ORDER BY "id" ASC`)
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: select from %s: %w", t.Name, err)
	}
	defer rows.Close()

	var out []records.Record
	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: scan %s: %w", t.Name, err)
		}
		rec := make(records.Record, len(cols))
		for i, c := range t.Columns {
			rec[c.Name] = storage.DecodeValue(c, raw[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate %s: %w", t.Name, err)
	}
	return out, nil
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
