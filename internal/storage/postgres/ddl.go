package postgres

import (
	"context"
	"fmt"
	"strings"

	"costengine/internal/schema"
)

// sqlTypeFor renders a declared column type in Postgres's dialect.
func sqlTypeFor(t schema.ColumnType) string {
	switch t {
	case schema.TypeNumber:
		return "DOUBLE PRECISION"
	case schema.TypeInteger:
		return "BIGINT"
	case schema.TypeTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// quoteIdent quotes an identifier; "user" and "value" are reserved words.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// EnsureTable creates the table with an identity key if it does not exist.
func (s *Store) EnsureTable(ctx context.Context, t schema.TableDef) error {
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, `"id" BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY`)
	for _, c := range t.Columns {
		cols = append(cols, quoteIdent(c.Name)+" "+sqlTypeFor(c.Type))
	}
	stmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteIdent(t.Name),
		strings.Join(cols, ",\n  "),
	)
	if _, err := s.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: create %s: %w", t.Name, err)
	}
	return nil
}

// AddColumn adds the column if absent.
func (s *Store) AddColumn(ctx context.Context, table string, col schema.ColumnDef) error {
	stmt := fmt.Sprintf(
		"ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
		quoteIdent(table), quoteIdent(col.Name), sqlTypeFor(col.Type),
	)
	if _, err := s.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: add column %s.%s: %w", table, col.Name, err)
	}
	return nil
}
