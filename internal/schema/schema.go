// Package schema holds the explicit table and column definitions for the
// cost-management engine, plus the registry that evolves them.
//
// The set of tables and their baseline columns is declared here, not inferred
// from incoming data or introspected from a live connection. Backends render
// these definitions into their own dialect; this package stays
// database-agnostic.
package schema

import (
	"fmt"
	"strings"
)

// ColumnType is the closed enumeration of declared column types.
type ColumnType string

const (
	TypeText      ColumnType = "TEXT"
	TypeNumber    ColumnType = "NUMBER"
	TypeInteger   ColumnType = "INTEGER"
	TypeTimestamp ColumnType = "TIMESTAMP"
)

// ParseColumnType maps a loosely-specified type name onto the closed
// enumeration. Unknown names are a SchemaError.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TEXT", "STRING":
		return TypeText, nil
	case "NUMBER", "REAL", "FLOAT":
		return TypeNumber, nil
	case "INTEGER", "INT":
		return TypeInteger, nil
	case "TIMESTAMP", "DATETIME":
		return TypeTimestamp, nil
	default:
		return "", &SchemaError{Msg: fmt.Sprintf("unknown column type %q", s)}
	}
}

// SchemaError reports a request for an unknown table or column type.
type SchemaError struct {
	Msg string
}

func (e *SchemaError) Error() string { return "schema: " + e.Msg }

// ColumnDef describes a single declared column.
type ColumnDef struct {
	Name string
	Type ColumnType
}

// TableDef holds a table name and its ordered column definitions. The
// identity key is implicit; backends render it in their own dialect.
type TableDef struct {
	Name    string
	Columns []ColumnDef

	// NewestFirst makes reads return rows in reverse write order. Set for
	// the append-based recipes table.
	NewestFirst bool
}

// Column returns the definition for name, if declared.
func (t TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// ColumnNames returns the declared column names in order.
func (t TableDef) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Write-time timestamp columns. The store assigns these on every write;
// callers never supply them.
const (
	CreatedAtColumn   = "created_at"
	LastUpdatedColumn = "last_updated"
)

// Table names.
const (
	TableReceipts  = "receipts"
	TableSales     = "sales"
	TableRecipes   = "recipes"
	TableInventory = "inventory"

	// columnLogTable records every column definition ever declared, baseline
	// and evolved alike. It is the registry's durable state.
	columnLogTable = "schema_columns"
)

// Baseline returns the baseline table set. The inventory table is created
// for schema completeness; no ingestion path writes it.
func Baseline() []TableDef {
	return []TableDef{
		{
			Name: TableReceipts,
			Columns: []ColumnDef{
				{Name: "date", Type: TypeText},
				{Name: "store", Type: TypeText},
				{Name: "item_group", Type: TypeText},
				{Name: "item_code", Type: TypeText},
				{Name: "item_name", Type: TypeText},
				{Name: "unit_of_measure", Type: TypeText},
				{Name: "quantity", Type: TypeNumber},
				{Name: "rate", Type: TypeNumber},
				{Name: "value", Type: TypeNumber},
				{Name: "cost_center", Type: TypeText},
				{Name: "user", Type: TypeText},
				{Name: "hotel", Type: TypeText},
				{Name: "month", Type: TypeText},
				{Name: CreatedAtColumn, Type: TypeTimestamp},
			},
		},
		{
			Name: TableSales,
			Columns: []ColumnDef{
				{Name: "date", Type: TypeText},
				{Name: "item_code", Type: TypeText},
				{Name: "item_name", Type: TypeText},
				{Name: "quantity", Type: TypeNumber},
				{Name: "rate", Type: TypeNumber},
				{Name: "value", Type: TypeNumber},
				{Name: "discount", Type: TypeNumber},
				{Name: CreatedAtColumn, Type: TypeTimestamp},
			},
		},
		{
			Name:        TableRecipes,
			NewestFirst: true,
			Columns: []ColumnDef{
				{Name: "item_code", Type: TypeText},
				{Name: "item_name", Type: TypeText},
				{Name: "category", Type: TypeText},
				{Name: "selling_price", Type: TypeNumber},
				{Name: "cost_price", Type: TypeNumber},
				{Name: "cost_percentage", Type: TypeNumber},
				{Name: "ingredients", Type: TypeText},
				{Name: "preparation", Type: TypeText},
				{Name: LastUpdatedColumn, Type: TypeTimestamp},
				{Name: CreatedAtColumn, Type: TypeTimestamp},
			},
		},
		{
			Name: TableInventory,
			Columns: []ColumnDef{
				{Name: "item_code", Type: TypeText},
				{Name: "item_name", Type: TypeText},
				{Name: "opening_balance", Type: TypeNumber},
				{Name: "receipts", Type: TypeNumber},
				{Name: "issues", Type: TypeNumber},
				{Name: "closing_balance", Type: TypeNumber},
				{Name: CreatedAtColumn, Type: TypeTimestamp},
			},
		},
	}
}

// columnLogDef defines the column-definition log itself.
func columnLogDef() TableDef {
	return TableDef{
		Name: columnLogTable,
		Columns: []ColumnDef{
			{Name: "table_name", Type: TypeText},
			{Name: "column_name", Type: TypeText},
			{Name: "declared_type", Type: TypeText},
			{Name: CreatedAtColumn, Type: TypeTimestamp},
		},
	}
}
