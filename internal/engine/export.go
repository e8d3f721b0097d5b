package engine

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExportCSV writes the table's current contents to w as delimited text,
// header row first, columns in declared order.
func (e *Engine) ExportCSV(ctx context.Context, table string, w io.Writer) error {
	e.mu.RLock()
	def, err := e.reg.Table(table)
	e.mu.RUnlock()
	if err != nil {
		return err
	}
	recs, err := e.ReadTable(ctx, table, nil)
	if err != nil {
		return err
	}

	cols := def.ColumnNames()
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("engine: write csv header: %w", err)
	}
	row := make([]string, len(cols))
	for _, rec := range recs {
		for i, c := range cols {
			row[i] = rec.String(c)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("engine: write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("engine: flush csv: %w", err)
	}
	return nil
}

// ExportWorkbook writes the table's current contents to w as a spreadsheet
// workbook with a single sheet named after the table.
func (e *Engine) ExportWorkbook(ctx context.Context, table string, w io.Writer) error {
	e.mu.RLock()
	def, err := e.reg.Table(table)
	e.mu.RUnlock()
	if err != nil {
		return err
	}
	recs, err := e.ReadTable(ctx, table, nil)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, table); err != nil {
		return fmt.Errorf("engine: name sheet: %w", err)
	}

	cols := def.ColumnNames()
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(table, "A1", &header); err != nil {
		return fmt.Errorf("engine: write workbook header: %w", err)
	}
	for n, rec := range recs {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = rec[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return fmt.Errorf("engine: cell name: %w", err)
		}
		if err := f.SetSheetRow(table, cell, &row); err != nil {
			return fmt.Errorf("engine: write workbook row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("engine: write workbook: %w", err)
	}
	return nil
}
