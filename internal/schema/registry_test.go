package schema

import (
	"context"
	"errors"
	"testing"

	"costengine/pkg/records"
)

/*
memBackend is an in-memory Backend used to exercise the registry without a
database. It tracks which tables exist, which columns have been altered in,
and the rows appended to each table.
*/
type memBackend struct {
	tables  map[string][]ColumnDef
	rows    map[string][]records.Record
	ensures int
	alters  int
}

func newMemBackend() *memBackend {
	return &memBackend{
		tables: make(map[string][]ColumnDef),
		rows:   make(map[string][]records.Record),
	}
}

func (b *memBackend) EnsureTable(ctx context.Context, t TableDef) error {
	b.ensures++
	if _, ok := b.tables[t.Name]; !ok {
		b.tables[t.Name] = append([]ColumnDef(nil), t.Columns...)
	}
	return nil
}

func (b *memBackend) AddColumn(ctx context.Context, table string, col ColumnDef) error {
	b.alters++
	cols, ok := b.tables[table]
	if !ok {
		return errors.New("no such table: " + table)
	}
	for _, c := range cols {
		if c.Name == col.Name {
			return nil
		}
	}
	b.tables[table] = append(cols, col)
	return nil
}

func (b *memBackend) Append(ctx context.Context, t TableDef, recs []records.Record) (int64, error) {
	b.rows[t.Name] = append(b.rows[t.Name], recs...)
	return int64(len(recs)), nil
}

func (b *memBackend) ReadAll(ctx context.Context, t TableDef) ([]records.Record, error) {
	return b.rows[t.Name], nil
}

/*
TestEnsureTables_SeedsColumnLog verifies that first bootstrap creates every
baseline table and writes one column-log row per declared column.
*/
func TestEnsureTables_SeedsColumnLog(t *testing.T) {
	b := newMemBackend()
	g := NewRegistry(b)
	if err := g.EnsureTables(context.Background()); err != nil {
		t.Fatalf("EnsureTables: %v", err)
	}

	for _, def := range Baseline() {
		if _, ok := b.tables[def.Name]; !ok {
			t.Errorf("table %s not created", def.Name)
		}
	}
	if _, ok := b.tables[columnLogTable]; !ok {
		t.Fatalf("column log table not created")
	}

	wantRows := 0
	for _, def := range Baseline() {
		wantRows += len(def.Columns)
	}
	if got := len(b.rows[columnLogTable]); got != wantRows {
		t.Errorf("column log has %d rows, want %d", got, wantRows)
	}
}

/*
TestEnsureTables_Rerun verifies bootstrap is idempotent: a second call sees
the seeded log and does not double-seed or alter anything.
*/
func TestEnsureTables_Rerun(t *testing.T) {
	b := newMemBackend()
	g := NewRegistry(b)
	if err := g.EnsureTables(context.Background()); err != nil {
		t.Fatalf("first EnsureTables: %v", err)
	}
	seeded := len(b.rows[columnLogTable])

	if err := g.EnsureTables(context.Background()); err != nil {
		t.Fatalf("second EnsureTables: %v", err)
	}
	if got := len(b.rows[columnLogTable]); got != seeded {
		t.Errorf("column log grew from %d to %d rows on rerun", seeded, got)
	}
	if b.alters != 0 {
		t.Errorf("rerun issued %d alters, want 0", b.alters)
	}
}

/*
TestAddColumn verifies evolution semantics: a new column alters the backend,
updates the definition, and logs itself; repeating the identical call is a
no-op; re-declaring with a different type is a SchemaError.
*/
func TestAddColumn(t *testing.T) {
	b := newMemBackend()
	g := NewRegistry(b)
	ctx := context.Background()
	if err := g.EnsureTables(ctx); err != nil {
		t.Fatalf("EnsureTables: %v", err)
	}
	logged := len(b.rows[columnLogTable])

	if err := g.AddColumn(ctx, TableReceipts, "supplier", "TEXT"); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	def, err := g.Table(TableReceipts)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	col, ok := def.Column("supplier")
	if !ok || col.Type != TypeText {
		t.Fatalf("supplier column = (%v, %v), want TEXT", col, ok)
	}
	if got := len(b.rows[columnLogTable]); got != logged+1 {
		t.Errorf("column log has %d rows, want %d", got, logged+1)
	}

	// Same column, same type: success, nothing changes.
	alters := b.alters
	if err := g.AddColumn(ctx, TableReceipts, "supplier", "TEXT"); err != nil {
		t.Fatalf("idempotent AddColumn: %v", err)
	}
	if b.alters != alters {
		t.Errorf("idempotent AddColumn issued an alter")
	}
	if got := len(b.rows[columnLogTable]); got != logged+1 {
		t.Errorf("idempotent AddColumn grew the column log")
	}

	// Same column, different type: conflict.
	var se *SchemaError
	if err := g.AddColumn(ctx, TableReceipts, "supplier", "NUMBER"); !errors.As(err, &se) {
		t.Errorf("type conflict err = %T (%v), want *SchemaError", err, err)
	}

	// Unknown table and unknown type are SchemaErrors too.
	if err := g.AddColumn(ctx, "no_such_table", "x", "TEXT"); !errors.As(err, &se) {
		t.Errorf("unknown table err = %T (%v), want *SchemaError", err, err)
	}
	if err := g.AddColumn(ctx, TableReceipts, "x", "BLOB"); !errors.As(err, &se) {
		t.Errorf("unknown type err = %T (%v), want *SchemaError", err, err)
	}
}

/*
TestEnsureTables_ReplaysEvolvedColumns simulates a process restart: a fresh
registry over the same backend must pick evolved columns back up from the
column log.
*/
func TestEnsureTables_ReplaysEvolvedColumns(t *testing.T) {
	b := newMemBackend()
	ctx := context.Background()

	g1 := NewRegistry(b)
	if err := g1.EnsureTables(ctx); err != nil {
		t.Fatalf("EnsureTables: %v", err)
	}
	if err := g1.AddColumn(ctx, TableRecipes, "allergens", "TEXT"); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}

	g2 := NewRegistry(b)
	if err := g2.EnsureTables(ctx); err != nil {
		t.Fatalf("restart EnsureTables: %v", err)
	}
	def, err := g2.Table(TableRecipes)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if _, ok := def.Column("allergens"); !ok {
		t.Errorf("evolved column not replayed after restart; columns = %v", def.ColumnNames())
	}
}

/*
TestParseColumnType verifies the closed enumeration and its accepted
synonyms.
*/
func TestParseColumnType(t *testing.T) {
	cases := []struct {
		in      string
		want    ColumnType
		wantErr bool
	}{
		{"TEXT", TypeText, false},
		{"string", TypeText, false},
		{"number", TypeNumber, false},
		{"REAL", TypeNumber, false},
		{"int", TypeInteger, false},
		{"datetime", TypeTimestamp, false},
		{"BLOB", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseColumnType(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseColumnType(%q) = (%q, %v), want (%q, wantErr=%v)", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
}
