// Package engine is the call boundary consumed by the reporting surface. It
// wires the normalizer, the metric calculator, the schema registry, the
// store, and the aggregation engine into the operations the dashboard needs:
// ingest, schema evolution, reads, summaries, and exports.
//
// Error policy: validation, derivation, schema, and storage-constraint
// failures are recoverable and come back as a Result carrying a success flag
// and a human-readable message. Only an unreachable store surfaces as a
// non-nil error.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"costengine/internal/ingest"
	"costengine/internal/metrics"
	"costengine/internal/report"
	"costengine/internal/schema"
	"costengine/internal/storage"
	"costengine/pkg/records"
)

// Engine owns one store handle and the schema registry over it.
//
// Concurrency: schema evolution takes the write lock, every other operation
// the read lock, so a structural change never races a write to the same
// table. Replace-write atomicity against readers is the store's job.
type Engine struct {
	store storage.Store
	reg   *schema.Registry
	log   *zap.Logger

	mu sync.RWMutex
}

// Result is the outcome of an ingestion or schema-evolution call.
type Result struct {
	OK      bool
	Message string

	// Rows is the number of records written (ingest only).
	Rows int64

	// Fingerprint is a content hash of the raw payload, for audit logs
	// (ingest only).
	Fingerprint string
}

// New builds an Engine over the store and bootstraps the schema. Safe to
// call on every process start; existing tables are left untouched.
func New(ctx context.Context, store storage.Store, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	reg := schema.NewRegistry(storage.SchemaBackend(store))
	if err := reg.EnsureTables(ctx); err != nil {
		return nil, fmt.Errorf("engine: bootstrap schema: %w", err)
	}
	return &Engine{store: store, reg: reg, log: log}, nil
}

// Ingest normalizes the payload for the kind, derives missing metrics, and
// writes the batch under the given policy. The batch is all-or-nothing.
func (e *Engine) Ingest(ctx context.Context, kind ingest.Kind, p ingest.Payload, policy storage.Policy) (Result, error) {
	start := time.Now()
	table := kind.Table()
	fp := fingerprint(p)

	res, err := e.ingest(ctx, kind, table, p, policy)
	res.Fingerprint = fp
	metrics.RecordOp("ingest", table, opErr(res, err), time.Since(start))

	switch {
	case err != nil:
		e.log.Error("ingest failed",
			zap.String("table", table), zap.String("fingerprint", fp), zap.Error(err))
	case !res.OK:
		e.log.Warn("ingest rejected",
			zap.String("table", table), zap.String("fingerprint", fp), zap.String("reason", res.Message))
	default:
		e.log.Info("ingest complete",
			zap.String("table", table), zap.String("policy", string(policy)),
			zap.Int64("rows", res.Rows), zap.String("fingerprint", fp))
	}
	return res, err
}

func (e *Engine) ingest(ctx context.Context, kind ingest.Kind, table string, p ingest.Payload, policy storage.Policy) (Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	def, err := e.reg.Table(table)
	if err != nil {
		return reject(table, err), nil
	}

	recs, err := ingest.Normalize(kind, p)
	if err != nil {
		return reject(table, err), nil
	}
	metrics.RecordRows(table, "normalized", int64(len(recs)))

	if kind == ingest.KindRecipe {
		if err := ingest.ComputeRecipeMetrics(recs); err != nil {
			return reject(table, err), nil
		}
		metrics.RecordRows(table, "derived", int64(len(recs)))
	}

	n, err := e.store.Write(ctx, def, recs, policy)
	if err != nil {
		if e.store.Ping(ctx) != nil {
			return Result{}, fmt.Errorf("engine: store unavailable: %w", err)
		}
		return reject(table, err), nil
	}
	metrics.RecordRows(table, "written", n)

	return Result{
		OK:      true,
		Message: fmt.Sprintf("%s data successfully stored (%d rows, %s)", kind, n, policy),
		Rows:    n,
	}, nil
}

// EvolveSchema adds a column to an existing table. Idempotent: repeating the
// call with identical arguments succeeds without touching anything.
func (e *Engine) EvolveSchema(ctx context.Context, table, column, typeName string) (Result, error) {
	start := time.Now()

	e.mu.Lock()
	err := e.reg.AddColumn(ctx, table, column, typeName)
	e.mu.Unlock()

	metrics.RecordOp("evolve_schema", table, err, time.Since(start))
	if err != nil {
		if e.store.Ping(ctx) != nil {
			return Result{}, fmt.Errorf("engine: store unavailable: %w", err)
		}
		return reject(table, err), nil
	}
	e.log.Info("schema evolved",
		zap.String("table", table), zap.String("column", column), zap.String("type", typeName))
	return Result{OK: true, Message: fmt.Sprintf("column %s.%s ensured", table, column)}, nil
}

// ReadTable returns the table's rows, optionally narrowed by equality
// predicates on named columns. The append-based recipes table reads
// newest-first; other tables read in write order.
func (e *Engine) ReadTable(ctx context.Context, table string, filter map[string]any) ([]records.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	def, err := e.reg.Table(table)
	if err != nil {
		return nil, err
	}
	return e.store.Read(ctx, def, storage.Filter{Equals: filter})
}

// Summarize reads the table, applies the equality predicates, and computes
// one row per distinct group key with the requested metrics.
func (e *Engine) Summarize(ctx context.Context, table string, groupBy []string, ms []report.Metric, predicates map[string]any) ([]report.Row, error) {
	start := time.Now()
	recs, err := e.ReadTable(ctx, table, nil)
	metrics.RecordOp("summarize", table, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return report.FilterThenSummarize(recs, predicates, groupBy, ms), nil
}

// TopN returns the n groups with the highest summed value of byField, ties
// broken by group key ascending.
func (e *Engine) TopN(ctx context.Context, table, byField string, groupBy []string, n int) ([]report.Row, error) {
	recs, err := e.ReadTable(ctx, table, nil)
	if err != nil {
		return nil, err
	}
	return report.TopN(recs, groupBy, report.Metric{Field: byField, Reducer: report.Sum}, n), nil
}

// reject wraps a recoverable failure into a Result and counts it.
func reject(table string, err error) Result {
	metrics.RecordRows(table, "rejected", 1)
	return Result{OK: false, Message: err.Error()}
}

// opErr folds a rejected Result back into an error for metric labeling.
func opErr(res Result, err error) error {
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("%s", res.Message)
	}
	return nil
}

// fingerprint hashes the payload contents for audit logging.
func fingerprint(p ingest.Payload) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(p.Header, "\x1f"))
	for _, row := range p.Rows {
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(row, "\x1f"))
	}
	return fmt.Sprintf("%016x", xxh3.HashString(sb.String()))
}
