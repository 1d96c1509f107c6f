package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// extractJSON parses a top-level array of flat objects. Column order is
// the first-seen key order across rows; nested values are re-serialized
// as compact JSON strings.
func extractJSON(data []byte) (*Result, error) {
	result := &Result{Rows: []Row{}, Warnings: []Warning{}}
	if len(bytes.TrimSpace(data)) == 0 {
		return result, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	open, err := dec.Token()
	if err != nil {
		return result, &Error{Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	if delim, ok := open.(json.Delim); !ok || delim != '[' {
		return result, &Error{Err: fmt.Errorf("%w: expected top-level array", ErrMalformed)}
	}

	seen := make(map[string]bool)
	rowNumber := 0

	for dec.More() {
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return result, &Error{RowNumber: rowNumber + 1, Err: err}
		}

		rowNumber++
		row := Row{Number: rowNumber, Values: make(map[string]string, len(obj))}

		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				result.Columns = append(result.Columns, k)
			}
			if obj[k] == nil {
				continue
			}
			row.Values[k] = stringifyValue(obj[k])
		}

		result.Rows = append(result.Rows, row)
	}

	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return result, &Error{RowNumber: rowNumber, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}

	return result, nil
}

func stringifyValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}
