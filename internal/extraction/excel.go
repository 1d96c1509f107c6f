package extraction

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

func extractExcel(data []byte) (*Result, error) {
	result := &Result{Rows: []Row{}, Warnings: []Warning{}}
	if len(data) == 0 {
		return result, nil
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return result, &Error{Err: fmt.Errorf("%w: open workbook: %w", ErrMalformed, err)}
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return result, &Error{Err: fmt.Errorf("%w: workbook has no sheets", ErrMalformed)}
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return result, &Error{Err: fmt.Errorf("%w: read sheet %s: %w", ErrMalformed, sheets[0], err)}
	}

	if len(rows) == 0 {
		return result, nil
	}

	result.Columns = normalizeHeader(rows[0])

	for i, record := range rows[1:] {
		rowNumber := i + 1
		row := Row{Number: rowNumber, Values: make(map[string]string, len(result.Columns))}

		if len(record) != len(result.Columns) {
			result.Warnings = append(result.Warnings, Warning{
				RowNumber: rowNumber,
				Message: fmt.Sprintf(
					"row has %d cells, header has %d",
					len(record), len(result.Columns),
				),
			})
		}

		for j, col := range result.Columns {
			if j < len(record) {
				row.Values[col] = record[j]
			}
		}

		result.Rows = append(result.Rows, row)
	}

	return result, nil
}
