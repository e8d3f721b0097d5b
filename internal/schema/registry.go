package schema

import (
	"context"
	"fmt"
	"sync"

	"costengine/pkg/records"
)

// Backend is the minimal slice of the persistence store the registry needs:
// idempotent table creation, structural column addition, and access to the
// column-definition log. storage.Store satisfies it via a thin adapter.
type Backend interface {
	// EnsureTable creates the table if absent; it must be a no-op when the
	// table already exists.
	EnsureTable(ctx context.Context, t TableDef) error

	// AddColumn applies the structural ALTER for a new column. It must
	// tolerate the column already existing on disk.
	AddColumn(ctx context.Context, table string, col ColumnDef) error

	// Append inserts records into t, retaining prior rows.
	Append(ctx context.Context, t TableDef, recs []records.Record) (int64, error)

	// ReadAll returns every row of t in write order.
	ReadAll(ctx context.Context, t TableDef) ([]records.Record, error)
}

// Registry owns the known tables and their column definitions. All mutation
// goes through it; calls serialize on an internal mutex so a schema change
// never races a concurrent definition lookup.
type Registry struct {
	backend Backend

	mu     sync.Mutex
	tables map[string]*TableDef
	order  []string
}

// NewRegistry returns a registry seeded with the baseline table set.
func NewRegistry(backend Backend) *Registry {
	g := &Registry{
		backend: backend,
		tables:  make(map[string]*TableDef),
	}
	for _, t := range Baseline() {
		def := t
		g.tables[t.Name] = &def
		g.order = append(g.order, t.Name)
	}
	return g
}

// EnsureTables creates, idempotently, every known table plus the column log,
// then replays the log so columns evolved in earlier runs are visible again.
// Safe to call on every process start.
func (g *Registry) EnsureTables(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	logDef := columnLogDef()
	if err := g.backend.EnsureTable(ctx, logDef); err != nil {
		return fmt.Errorf("ensure %s: %w", logDef.Name, err)
	}
	for _, name := range g.order {
		if err := g.backend.EnsureTable(ctx, *g.tables[name]); err != nil {
			return fmt.Errorf("ensure %s: %w", name, err)
		}
	}

	logged, err := g.backend.ReadAll(ctx, logDef)
	if err != nil {
		return fmt.Errorf("read column log: %w", err)
	}
	if len(logged) == 0 {
		return g.seedColumnLog(ctx, logDef)
	}

	// Replay evolved columns into the in-memory definitions. Baseline
	// columns replay as no-ops; on-disk structure already matches the log.
	for _, rec := range logged {
		table := rec.String("table_name")
		def, ok := g.tables[table]
		if !ok {
			continue
		}
		name := rec.String("column_name")
		if _, exists := def.Column(name); exists {
			continue
		}
		typ, err := ParseColumnType(rec.String("declared_type"))
		if err != nil {
			return fmt.Errorf("column log entry %s.%s: %w", table, name, err)
		}
		if err := g.backend.AddColumn(ctx, table, ColumnDef{Name: name, Type: typ}); err != nil {
			return fmt.Errorf("replay column %s.%s: %w", table, name, err)
		}
		def.Columns = append(def.Columns, ColumnDef{Name: name, Type: typ})
	}
	return nil
}

// seedColumnLog writes one log row per baseline column. Runs once, on the
// first bootstrap against an empty store.
func (g *Registry) seedColumnLog(ctx context.Context, logDef TableDef) error {
	var recs []records.Record
	for _, name := range g.order {
		for _, c := range g.tables[name].Columns {
			recs = append(recs, records.Record{
				"table_name":    name,
				"column_name":   c.Name,
				"declared_type": string(c.Type),
			})
		}
	}
	if _, err := g.backend.Append(ctx, logDef, recs); err != nil {
		return fmt.Errorf("seed column log: %w", err)
	}
	return nil
}

// AddColumn adds a column to an existing table. Re-invoking with the same
// arguments is a no-op, never an error. Data rows are not touched.
func (g *Registry) AddColumn(ctx context.Context, table, column string, typeName string) error {
	typ, err := ParseColumnType(typeName)
	if err != nil {
		return err
	}
	if column == "" {
		return &SchemaError{Msg: "column name must not be empty"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	def, ok := g.tables[table]
	if !ok {
		return &SchemaError{Msg: fmt.Sprintf("unknown table %q", table)}
	}
	if existing, exists := def.Column(column); exists {
		if existing.Type != typ {
			return &SchemaError{Msg: fmt.Sprintf(
				"column %s.%s already declared as %s", table, column, existing.Type)}
		}
		return nil
	}

	col := ColumnDef{Name: column, Type: typ}
	if err := g.backend.AddColumn(ctx, table, col); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	def.Columns = append(def.Columns, col)

	logRec := records.Record{
		"table_name":    table,
		"column_name":   column,
		"declared_type": string(typ),
	}
	if _, err := g.backend.Append(ctx, columnLogDef(), []records.Record{logRec}); err != nil {
		return fmt.Errorf("log column %s.%s: %w", table, column, err)
	}
	return nil
}

// Table returns the current definition of the named table.
func (g *Registry) Table(name string) (TableDef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	def, ok := g.tables[name]
	if !ok {
		return TableDef{}, &SchemaError{Msg: fmt.Sprintf("unknown table %q", name)}
	}
	out := *def
	out.Columns = append([]ColumnDef(nil), def.Columns...)
	return out, nil
}

// Tables returns the known table names in declaration order.
func (g *Registry) Tables() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.order...)
}
