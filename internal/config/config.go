// Package config defines the canonical, JSON-serializable configuration
// model for the cost-engine CLI. It is intentionally small, explicit, and
// dependency-free so that refresh jobs can be loaded from disk and passed
// through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure of job files.
//  3. Minimalism: no third-party config libraries; decoding is performed by
//     the standard library.
//
// Example:
//
//	{
//	  "storage": { "kind": "sqlite", "dsn": "cost_management.db" },
//	  "metrics": { "backend": "pushgateway", "pushgateway_url": "http://localhost:9091" },
//	  "jobs": [
//	    { "kind": "receipt", "path": "exports/receipts.xlsx", "policy": "replace" },
//	    { "kind": "recipe",  "path": "uploads/recipes.csv",   "policy": "append" }
//	  ]
//	}
package config

import (
	"encoding/json"
	"io"

	"costengine/internal/storage"
)

// Config is the top-level object decoded from a job file.
type Config struct {
	// Storage selects and configures the persistence backend.
	Storage storage.Config `json:"storage"`

	// Metrics configures the optional metrics backend.
	Metrics Metrics `json:"metrics"`

	// Jobs lists the ingestions to run, one per source file.
	Jobs []Job `json:"jobs"`
}

// Metrics configures metric publication for a run.
type Metrics struct {
	// Backend selects the implementation: "pushgateway" or "none".
	Backend string `json:"backend"`

	// PushgatewayURL is the Pushgateway base URL, e.g. "http://localhost:9091".
	PushgatewayURL string `json:"pushgateway_url"`

	// Job is the Pushgateway job grouping name.
	Job string `json:"job"`
}

// Job describes one file ingestion.
type Job struct {
	// Kind is the target entity: "receipt", "sale", or "recipe".
	Kind string `json:"kind"`

	// Path is the local filesystem path to the export file.
	Path string `json:"path"`

	// Policy is the write discipline: "append" or "replace".
	Policy string `json:"policy"`

	// Encoding optionally names a legacy charset for delimited-text files,
	// e.g. "windows-1252". Empty means UTF-8.
	Encoding string `json:"encoding"`
}

// Load decodes a Config from r.
func Load(r io.Reader) (Config, error) {
	var c Config
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
