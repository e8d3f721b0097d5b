package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"costengine/internal/ingest"
	"costengine/internal/storage"
)

/*
TestExportCSV verifies a round trip: ingested rows come back out with the
declared header order and rendered values.
*/
func TestExportCSV(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	if _, err := eng.Ingest(ctx, ingest.KindReceipt, receiptPayload(), storage.PolicyReplace); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	var buf bytes.Buffer
	if err := eng.ExportCSV(ctx, "receipts", &buf); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "date,store,item_group,item_code,item_name") {
		t.Errorf("header = %q, want declared column order", lines[0])
	}
	if !strings.Contains(lines[1], "Coffee Beans") || !strings.Contains(lines[1], "900") {
		t.Errorf("row 1 = %q", lines[1])
	}
}

/*
TestExportCSV_UnknownTable verifies export of an undeclared table is an
error.
*/
func TestExportCSV_UnknownTable(t *testing.T) {
	eng, _ := newTestEngine(t)
	var buf bytes.Buffer
	if err := eng.ExportCSV(context.Background(), "ledger", &buf); err == nil {
		t.Fatal("expected error for unknown table")
	}
}

/*
TestExportWorkbook verifies the workbook export carries a sheet named after
the table with the header row in place.
*/
func TestExportWorkbook(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	if _, err := eng.Ingest(ctx, ingest.KindReceipt, receiptPayload(), storage.PolicyReplace); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	var buf bytes.Buffer
	if err := eng.ExportWorkbook(ctx, "receipts", &buf); err != nil {
		t.Fatalf("ExportWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("receipts")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2", len(rows))
	}
	if rows[0][0] != "date" || rows[0][3] != "item_code" {
		t.Errorf("header = %v, want declared column order", rows[0])
	}
}
