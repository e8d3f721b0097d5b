package sqlite

import (
	"context"
	"fmt"
	"strings"

	"costengine/internal/schema"
)

// sqlTypeFor renders a declared column type in SQLite's dialect.
func sqlTypeFor(t schema.ColumnType) string {
	switch t {
	case schema.TypeNumber:
		return "REAL"
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// quoteIdent quotes an identifier. Several canonical column names ("user",
// "value", "date") are keywords in one dialect or another.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// EnsureTable creates the table with an autoincrement identity key if it
// does not exist. No-op when the table is already present.
func (s *Store) EnsureTable(ctx context.Context, t schema.TableDef) error {
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, `"id" INTEGER PRIMARY KEY AUTOINCREMENT`)
	for _, c := range t.Columns {
		cols = append(cols, quoteIdent(c.Name)+" "+sqlTypeFor(c.Type))
	}
	stmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteIdent(t.Name),
		strings.Join(cols, ",\n  "),
	)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: create %s: %w", t.Name, err)
	}
	return nil
}

// AddColumn adds the column if the table does not already carry it. SQLite
// has no ADD COLUMN IF NOT EXISTS, so presence is checked first.
func (s *Store) AddColumn(ctx context.Context, table string, col schema.ColumnDef) error {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?",
		table, col.Name,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("sqlite: inspect %s: %w", table, err)
	}
	if n > 0 {
		return nil
	}

	stmt := fmt.Sprintf(
		"ALTER TABLE %s ADD COLUMN %s %s",
		quoteIdent(table), quoteIdent(col.Name), sqlTypeFor(col.Type),
	)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: add column %s.%s: %w", table, col.Name, err)
	}
	return nil
}
