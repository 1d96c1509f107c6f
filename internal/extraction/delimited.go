package extraction

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

func extractDelimited(data []byte, comma rune) (*Result, error) {
	result := &Result{Rows: []Row{}, Warnings: []Warning{}}
	if len(bytes.TrimSpace(data)) == 0 {
		return result, nil
	}

	if !utf8.Valid(data) {
		return result, &Error{Err: fmt.Errorf("%w: invalid UTF-8 encoding", ErrMalformed)}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return result, &Error{Err: fmt.Errorf("%w: read header: %w", ErrMalformed, err)}
	}

	result.Columns = normalizeHeader(header)

	rowNumber := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return result, &Error{RowNumber: rowNumber + 1, Err: err}
		}

		rowNumber++
		row := Row{Number: rowNumber, Values: make(map[string]string, len(result.Columns))}

		if len(record) != len(result.Columns) {
			result.Warnings = append(result.Warnings, Warning{
				RowNumber: rowNumber,
				Message: fmt.Sprintf(
					"row has %d fields, header has %d",
					len(record), len(result.Columns),
				),
			})
		}

		for i, col := range result.Columns {
			if i < len(record) {
				row.Values[col] = record[i]
			}
		}

		result.Rows = append(result.Rows, row)
	}
}

// normalizeHeader trims whitespace and assigns positional names to blank
// or duplicate header cells so every column has a distinct key.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))

	for i, col := range header {
		name := strings.TrimSpace(col)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, ok := seen[name]; ok {
			// a generated name can itself collide with a literal header
			// later in the row, so keep counting until the slot is free
			base := name
			for {
				n++
				name = fmt.Sprintf("%s_%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 1
		columns[i] = name
	}

	return columns
}
