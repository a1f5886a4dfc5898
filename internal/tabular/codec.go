// Package tabular encodes and decodes the CSV surfaces of the system:
// document exports and customer imports. Quoting follows RFC 4180, which is
// what encoding/csv produces and accepts.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column describes one expected column in an inbound file.
type Column struct {
	Name     string
	Required bool
}

// Schema drives Decode. The key columns "email" and "phone" feed duplicate
// detection: the first non-empty of the two is the row's identity.
type Schema struct {
	Columns []Column

	// AllowDuplicates keeps rows that repeat an already seen key instead of
	// rejecting them.
	AllowDuplicates bool
}

// Record is one decoded row keyed by column name.
type Record map[string]string

// Row is one accepted row together with its 1-based source line.
type Row struct {
	Line   int
	Fields Record
}

// RowError is one rejected row. Decoding continues past it.
type RowError struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

var (
	ErrEmptyInput    = errors.New("empty_input")
	ErrMissingColumn = errors.New("missing_column")
)

// Encode renders headers plus rows as CSV text. Values containing the
// delimiter, quotes or newlines come out quoted with inner quotes doubled.
func Encode(headers []string, rows [][]string) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return "", err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Decode parses CSV text against schema. Structural problems with the header
// fail the whole decode; everything row-level lands in rowErrors and decoding
// moves on to the next row.
func Decode(text string, schema Schema) ([]Row, []RowError, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, ErrEmptyInput
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range schema.Columns {
		if _, ok := index[col.Name]; !ok && col.Required {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, col.Name)
		}
	}

	var (
		records   []Row
		rowErrors []RowError
		seen      = map[string]int{}
	)
	// Quoted fields may span physical lines, so the record counter cannot
	// double as a line number. Each record's line and raw text come from the
	// reader's byte offsets instead.
	offset := r.InputOffset()
	line := 1 + strings.Count(text[:offset], "\n")
	for {
		startLine := line
		row, err := r.Read()
		end := r.InputOffset()
		raw := strings.TrimRight(text[offset:end], "\r\n")
		line += strings.Count(text[offset:end], "\n")
		offset = end
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrors = append(rowErrors, RowError{
				Line:   startLine,
				Raw:    raw,
				Reason: parseReason(err),
			})
			continue
		}
		if len(row) != len(header) {
			rowErrors = append(rowErrors, RowError{
				Line:   startLine,
				Raw:    raw,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(row)),
			})
			continue
		}

		record := make(Record, len(schema.Columns))
		var missing string
		for _, col := range schema.Columns {
			idx, ok := index[col.Name]
			value := ""
			if ok && idx < len(row) {
				value = strings.TrimSpace(row[idx])
			}
			if col.Required && value == "" {
				missing = col.Name
				break
			}
			record[col.Name] = value
		}
		if missing != "" {
			rowErrors = append(rowErrors, RowError{
				Line:   startLine,
				Raw:    raw,
				Reason: fmt.Sprintf("missing required value for %q", missing),
			})
			continue
		}

		if key := recordKey(record); key != "" {
			if first, dup := seen[key]; dup && !schema.AllowDuplicates {
				rowErrors = append(rowErrors, RowError{
					Line:   startLine,
					Raw:    raw,
					Reason: fmt.Sprintf("duplicate of line %d on key %q", first, key),
				})
				continue
			}
			if _, dup := seen[key]; !dup {
				seen[key] = startLine
			}
		}

		records = append(records, Row{Line: startLine, Fields: record})
	}

	return records, rowErrors, nil
}

// recordKey picks the row identity used for duplicate detection.
func recordKey(record Record) string {
	if email := record["email"]; email != "" {
		return "email:" + strings.ToLower(email)
	}
	if phone := record["phone"]; phone != "" {
		return "phone:" + phone
	}
	return ""
}

func parseReason(err error) string {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Err.Error()
	}
	return err.Error()
}
