// Package csv reads delimited-text exports into a header+rows payload. It
// tolerates the quirks of real back-office exports: UTF-8 BOMs, ragged row
// widths, and legacy single-byte encodings from older POS terminals.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"costengine/internal/ingest"
)

// Options configures the parser. All fields are optional; sensible defaults
// are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing ASCII spaces from each field value.
	TrimSpace bool

	// Encoding names a legacy source charset to decode before parsing,
	// e.g. "windows-1252" or "windows-1250". Empty means UTF-8.
	Encoding string
}

// Parser parses delimited text according to Options. It is safe to reuse
// across inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// Parse consumes the entire input and returns the header row plus all data
// rows. Rows narrower or wider than the header are returned as-is; width
// reconciliation is the normalizer's job.
func (p *Parser) Parse(r io.Reader) (ingest.Payload, error) {
	if p.opt.Encoding != "" {
		cm, err := lookupCharmap(p.opt.Encoding)
		if err != nil {
			return ingest.Payload{}, err
		}
		r = transform.NewReader(r, cm.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}

	header, err := cr.Read()
	if err == io.EOF {
		return ingest.Payload{}, fmt.Errorf("csv: input is empty")
	}
	if err != nil {
		return ingest.Payload{}, fmt.Errorf("csv: read header: %w", err)
	}
	for i := range header {
		if i == 0 {
			header[i] = strings.TrimPrefix(header[i], utf8BOM)
		}
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ingest.Payload{}, fmt.Errorf("csv: read row %d: %w", len(rows)+2, err)
		}
		if p.opt.TrimSpace {
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
		}
		rows = append(rows, row)
	}

	return ingest.Payload{Header: header, Rows: rows}, nil
}

// lookupCharmap resolves the supported legacy charsets.
func lookupCharmap(name string) (*charmap.Charmap, error) {
	switch strings.ToLower(name) {
	case "windows-1250", "cp1250":
		return charmap.Windows1250, nil
	case "windows-1252", "cp1252", "latin1", "iso-8859-1":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("csv: unsupported encoding %q", name)
	}
}
