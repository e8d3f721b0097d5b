// Package parser turns uploaded files into header+rows payloads for the
// normalizer. Two encodings are recognized by extension: delimited text
// (.csv, .tsv, .txt) and spreadsheet workbooks (.xlsx, .xls). The normalizer
// downstream is agnostic to which one produced the payload.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"costengine/internal/ingest"
	"costengine/internal/parser/csv"
	"costengine/internal/parser/xlsx"
)

// Options tunes decoding. All fields are optional.
type Options struct {
	// Encoding names a legacy charset for delimited-text files,
	// e.g. "windows-1252". Ignored for workbooks. Empty means UTF-8.
	Encoding string
}

// Parse reads the payload from r, selecting the decoder from the file name's
// extension.
func Parse(name string, r io.Reader, opt Options) (ingest.Payload, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return csv.NewParser(csv.Options{TrimSpace: true, Encoding: opt.Encoding}).Parse(r)
	case ".tsv":
		return csv.NewParser(csv.Options{Comma: '\t', TrimSpace: true, Encoding: opt.Encoding}).Parse(r)
	case ".xlsx", ".xls":
		return xlsx.Parse(r)
	default:
		return ingest.Payload{}, fmt.Errorf("parser: unsupported file format %q (want .csv, .tsv, .txt, .xlsx, .xls)", name)
	}
}
