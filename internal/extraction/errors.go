package extraction

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType indicates an unrecognized file type declaration.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrMalformed indicates file content that cannot be parsed at all.
	ErrMalformed = errors.New("malformed file content")
)

// Error reports an extraction failure at a specific row. RowNumber is
// 1-based and refers to the first row that could not be parsed; zero means
// the failure happened before any row (header or document level).
type Error struct {
	RowNumber int
	Err       error
}

func (e *Error) Error() string {
	if e.RowNumber > 0 {
		return fmt.Sprintf("extraction failed at row %d: %v", e.RowNumber, e.Err)
	}
	return fmt.Sprintf("extraction failed: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
