package ingest

import (
	"strings"

	"costengine/internal/schema"
)

// Kind selects the target entity of an ingestion.
type Kind string

const (
	KindReceipt Kind = "receipt"
	KindSale    Kind = "sale"
	KindRecipe  Kind = "recipe"
)

// Table returns the persisted table fed by this kind.
func (k Kind) Table() string {
	switch k {
	case KindSale:
		return schema.TableSales
	case KindRecipe:
		return schema.TableRecipes
	default:
		return schema.TableReceipts
	}
}

// ParseKind maps a string onto a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindReceipt:
		return KindReceipt, true
	case KindSale:
		return KindSale, true
	case KindRecipe:
		return KindRecipe, true
	default:
		return "", false
	}
}

// aliases maps source header names, per kind, onto canonical field names.
// Lookup is case-insensitive; headers with no alias fall back to
// lowercase-with-underscores, so already-canonical names pass through.
var aliases = map[Kind]map[string]string{
	KindReceipt: {
		"date":        "date",
		"store":       "store",
		"item group":  "item_group",
		"item code":   "item_code",
		"item name":   "item_name",
		"uom":         "unit_of_measure",
		"qty":         "quantity",
		"quantity":    "quantity",
		"rate":        "rate",
		"value":       "value",
		"cost center": "cost_center",
		"user":        "user",
		"hotel":       "hotel",
		"month":       "month",
	},
	KindSale: {
		"date":      "date",
		"item code": "item_code",
		"item name": "item_name",
		"qty":       "quantity",
		"quantity":  "quantity",
		"rate":      "rate",
		"value":     "value",
		"discount":  "discount",
	},
	KindRecipe: {
		"item code":       "item_code",
		"item name":       "item_name",
		"category":        "category",
		"selling price":   "selling_price",
		"cost price":      "cost_price",
		"cost percentage": "cost_percentage",
		"ingredients":     "ingredients",
		"preparation":     "preparation",
	},
}

// required lists the canonical fields a payload must carry, per kind.
var required = map[Kind][]string{
	KindReceipt: {"date", "item_code", "item_name", "quantity", "rate", "value"},
	KindSale:    {"date", "item_code", "item_name", "quantity", "rate", "value"},
	KindRecipe:  {"item_code", "item_name", "selling_price", "cost_price"},
}

// numeric lists the canonical fields coerced to float64, per kind.
var numeric = map[Kind][]string{
	KindReceipt: {"quantity", "rate", "value"},
	KindSale:    {"quantity", "rate", "value", "discount"},
	KindRecipe:  {"selling_price", "cost_price", "cost_percentage"},
}

// canonicalField resolves one source header for the given kind.
func canonicalField(kind Kind, header string) string {
	h := strings.TrimSpace(header)
	if m, ok := aliases[kind][strings.ToLower(h)]; ok {
		return m
	}
	return strings.ReplaceAll(strings.ToLower(h), " ", "_")
}
