// Package xlsx reads spreadsheet-workbook exports via excelize. The active
// sheet's first row is the header; every following row is data.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"costengine/internal/ingest"
)

// Parse reads a workbook from r and returns the active sheet as a payload.
func Parse(r io.Reader) (ingest.Payload, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ingest.Payload{}, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return ingest.Payload{}, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return ingest.Payload{}, fmt.Errorf("xlsx: sheet %q has no header row", sheet)
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return ingest.Payload{Header: header, Rows: rows[1:]}, nil
}
