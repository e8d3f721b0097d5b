// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be
	// surfaced to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind", "jobs[1].policy").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Config. It does not mutate the
// config; callers decide whether warnings are fatal.
func Validate(c Config) []Issue {
	var issues []Issue

	switch c.Storage.Kind {
	case "sqlite", "postgres":
	case "":
		issues = append(issues, Issue{SeverityError, "storage.kind", "storage kind is required (sqlite or postgres)"})
	default:
		issues = append(issues, Issue{SeverityError, "storage.kind", fmt.Sprintf("unknown storage kind %q", c.Storage.Kind)})
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		issues = append(issues, Issue{SeverityError, "storage.dsn", "storage DSN is required"})
	}

	switch c.Metrics.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(c.Metrics.PushgatewayURL) == "" {
			issues = append(issues, Issue{SeverityWarning, "metrics.pushgateway_url", "no URL configured; default will be used"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "metrics.backend", fmt.Sprintf("unknown metrics backend %q", c.Metrics.Backend)})
	}

	if len(c.Jobs) == 0 {
		issues = append(issues, Issue{SeverityWarning, "jobs", "no jobs configured; nothing will be ingested"})
	}
	for n, j := range c.Jobs {
		path := fmt.Sprintf("jobs[%d]", n)
		switch j.Kind {
		case "receipt", "sale", "recipe":
		case "":
			issues = append(issues, Issue{SeverityError, path + ".kind", "kind is required (receipt, sale, or recipe)"})
		default:
			issues = append(issues, Issue{SeverityError, path + ".kind", fmt.Sprintf("unknown kind %q", j.Kind)})
		}
		if strings.TrimSpace(j.Path) == "" {
			issues = append(issues, Issue{SeverityError, path + ".path", "path is required"})
		}
		switch j.Policy {
		case "append", "replace":
		case "":
			issues = append(issues, Issue{SeverityWarning, path + ".policy", "policy not set; defaulting to replace"})
		default:
			issues = append(issues, Issue{SeverityError, path + ".policy", fmt.Sprintf("unknown policy %q", j.Policy)})
		}
	}

	return issues
}
