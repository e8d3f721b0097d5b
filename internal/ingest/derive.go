package ingest

import (
	"fmt"

	"costengine/pkg/records"
)

// DerivationError rejects a batch whose derived metrics cannot be computed.
// A silently broken ratio would corrupt every downstream aggregate, so the
// record is rejected rather than stored with NaN or Inf.
type DerivationError struct {
	Row int
	Msg string
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("ingest: row %d: %s", e.Row, e.Msg)
}

// ComputeRecipeMetrics fills cost_percentage on records that lack it:
//
//	cost_percentage = cost_price / selling_price * 100
//
// Records that already carry a value pass through unchanged; caller-supplied
// derived values are never overwritten. Records are mutated in place; on
// error the batch must be discarded.
func ComputeRecipeMetrics(recs []records.Record) error {
	for n, rec := range recs {
		if rec.Has("cost_percentage") {
			continue
		}
		sp, ok := rec.Float("selling_price")
		if !ok {
			return &DerivationError{Row: n + 1, Msg: "selling_price is missing, cannot derive cost_percentage"}
		}
		if sp == 0 {
			return &DerivationError{Row: n + 1, Msg: "selling_price is zero, cannot derive cost_percentage"}
		}
		cp, _ := rec.Float("cost_price")
		rec["cost_percentage"] = cp / sp * 100
	}
	return nil
}
