package extraction

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// extractXML parses a document whose root element contains one child
// element per record, with leaf elements as fields:
//
//	<rows><row><name>a</name><qty>2</qty></row>...</rows>
//
// Element local names become column names in first-seen order.
func extractXML(data []byte) (*Result, error) {
	result := &Result{Rows: []Row{}, Warnings: []Warning{}}
	if len(bytes.TrimSpace(data)) == 0 {
		return result, nil
	}

	dec := xml.NewDecoder(bytes.NewReader(data))

	root, err := nextStart(dec)
	if err != nil {
		return result, &Error{Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	if root == nil {
		return result, nil
	}

	seen := make(map[string]bool)
	rowNumber := 0

	for {
		record, err := nextStart(dec)
		if err != nil {
			return result, &Error{RowNumber: rowNumber + 1, Err: err}
		}
		if record == nil {
			return result, nil
		}

		rowNumber++
		row := Row{Number: rowNumber, Values: make(map[string]string)}

		if err := decodeRecord(dec, record.Name.Local, &row, seen, result); err != nil {
			return result, &Error{RowNumber: rowNumber, Err: err}
		}

		result.Rows = append(result.Rows, row)
	}
}

// nextStart advances to the next start element, returning nil at the end
// of the enclosing element or document.
func nextStart(dec *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return &t, nil
		case xml.EndElement:
			return nil, nil
		}
	}
}

func decodeRecord(
	dec *xml.Decoder,
	recordName string,
	row *Row,
	seen map[string]bool,
	result *Result,
) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read %s: %w", recordName, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			field := t.Name.Local
			var value string
			if err := dec.DecodeElement(&value, &t); err != nil {
				return fmt.Errorf("decode field %s: %w", field, err)
			}
			if !seen[field] {
				seen[field] = true
				result.Columns = append(result.Columns, field)
			}
			row.Values[field] = strings.TrimSpace(value)
		case xml.EndElement:
			return nil
		}
	}
}
