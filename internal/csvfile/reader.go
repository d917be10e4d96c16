// Package csvfile turns raw bank-export CSV files into trimmed header and
// row records, and resolves which columns carry the semantic fields the
// ingestion pipeline needs.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mintyhq/minty/internal/ledger"
)

// File is a parsed CSV: the trimmed header row and every non-blank data row,
// in file order. Every row has exactly as many cells as the header.
type File struct {
	Headers []string
	Rows    [][]string
}

// Cell returns the trimmed value at idx, or "" when the row is too short.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Read loads and parses the file at path. A zero delimiter means the
// delimiter is sniffed from the first line; otherwise the override is used.
//
// Every header and cell is trimmed. Rows whose cells are all empty are
// dropped entirely and never reach the caller, whatever their width.
// Missing or unreadable files fail with an IO-kind error; structurally
// invalid CSV, header-less files and non-blank rows whose column count
// differs from the header fail with a parse-kind error.
func Read(path string, delimiter rune) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ledger.Wrap(ledger.KindIO, err, "CSV file not found: %s", path)
		}
		return nil, ledger.Wrap(ledger.KindIO, err, "unable to read CSV file: %s", path)
	}

	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	data = sanitizeUTF8(data)
	if delimiter == 0 {
		delimiter = sniffDelimiter(data)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = false

	records, err := r.ReadAll()
	if err != nil {
		return nil, ledger.Wrap(ledger.KindParse, err, "failed to parse CSV")
	}
	if len(records) == 0 {
		return nil, ledger.E(ledger.KindParse, "CSV has no header row")
	}

	headers := trimAll(records[0])
	if isEmptyRow(headers) {
		return nil, ledger.E(ledger.KindParse, "CSV has no header row")
	}

	rows := make([][]string, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := trimAll(rec)
		if isEmptyRow(row) {
			continue
		}
		// A non-blank row whose width differs from the header shifts every
		// later column, so a wrong amount could land in the ledger.
		if len(row) != len(headers) {
			return nil, ledger.E(ledger.KindParse,
				"row %d has %d columns, expected %d", i+2, len(row), len(headers))
		}
		rows = append(rows, row)
	}

	return &File{Headers: headers, Rows: rows}, nil
}

// sniffDelimiter counts candidate separators on the first line and picks
// the most frequent one; ties break in candidate order and a line with no
// candidate at all falls back to comma.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, bestCount := ',', 0
	for _, cand := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(cand))); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode
// replacement character so encoding/csv never sees broken runes.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
