// Package extraction implements raw row extraction for uploaded tabular
// files. It parses a byte stream plus a declared file type into an ordered,
// 1-indexed sequence of rows mapping original column names to raw string
// values. No type coercion happens at this stage; rows are preserved
// verbatim for audit and replay.
package extraction

import (
	"encoding/json"
	"slices"
)

// FileType identifies a supported upload format.
type FileType string

// Supported upload formats.
const (
	TypeCSV  FileType = "csv"
	TypeTSV  FileType = "tsv"
	TypeXLSX FileType = "xlsx"
	TypeJSON FileType = "json"
	TypeXML  FileType = "xml"
)

var fileTypes = []FileType{
	TypeCSV,
	TypeTSV,
	TypeXLSX,
	TypeJSON,
	TypeXML,
}

// FileTypes returns the list of supported upload formats.
func FileTypes() []FileType {
	return fileTypes
}

// ParseFileType validates a string as a supported upload format.
// Returns ErrUnsupportedType if the value is not recognized.
func ParseFileType(s string) (FileType, error) {
	v := FileType(s)
	if !slices.Contains(fileTypes, v) {
		return "", ErrUnsupportedType
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a supported format.
func (t *FileType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseFileType(raw)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Row is a single extracted record. Number is 1-based and unique within a
// file. Values maps original column names to raw string values; columns
// missing from a short row are absent from the map (persisted as null).
type Row struct {
	Number int               `json:"number"`
	Values map[string]string `json:"values"`
}

// Warning records a recoverable per-row extraction problem, such as a row
// with more or fewer fields than the header.
type Warning struct {
	RowNumber int    `json:"row_number"`
	Message   string `json:"message"`
}

// Result is the outcome of extracting a file. Columns preserves the
// header order from the source. An empty file yields zero rows and no
// error.
type Result struct {
	Columns  []string  `json:"columns"`
	Rows     []Row     `json:"rows"`
	Warnings []Warning `json:"warnings"`
}

// Extract parses data according to the declared file type.
// Malformed content fails with an *Error naming the row where parsing
// broke; rows before that point are included in the partial result so
// callers can persist what was valid.
func Extract(data []byte, fileType FileType) (*Result, error) {
	switch fileType {
	case TypeCSV:
		return extractDelimited(data, ',')
	case TypeTSV:
		return extractDelimited(data, '\t')
	case TypeXLSX:
		return extractExcel(data)
	case TypeJSON:
		return extractJSON(data)
	case TypeXML:
		return extractXML(data)
	default:
		return nil, ErrUnsupportedType
	}
}
