package records

import (
	"encoding/json"
	"slices"
)

// DataType is the coercion target for a mapped column.
type DataType string

// Supported column data types.
const (
	TypeText     DataType = "text"
	TypeInteger  DataType = "integer"
	TypeDecimal  DataType = "decimal"
	TypeDate     DataType = "date"
	TypeDatetime DataType = "datetime"
	TypeBoolean  DataType = "boolean"
	TypeCurrency DataType = "currency"
)

var dataTypes = []DataType{
	TypeText,
	TypeInteger,
	TypeDecimal,
	TypeDate,
	TypeDatetime,
	TypeBoolean,
	TypeCurrency,
}

// DataTypes returns the list of supported data types.
func DataTypes() []DataType {
	return dataTypes
}

// ParseDataType validates a string as a supported data type. Unknown
// values fall back to text so an unexpected classifier label degrades to
// uncoerced passthrough rather than failing the batch.
func ParseDataType(s string) DataType {
	v := DataType(s)
	if !slices.Contains(dataTypes, v) {
		return TypeText
	}
	return v
}

// ValidationStatus is a processed record's validation outcome.
type ValidationStatus string

// Validation outcomes.
const (
	ValidationPending ValidationStatus = "pending"
	ValidationPassed  ValidationStatus = "passed"
	ValidationFailed  ValidationStatus = "failed"
	ValidationWarning ValidationStatus = "warning"
)

var validationStatuses = []ValidationStatus{
	ValidationPending,
	ValidationPassed,
	ValidationFailed,
	ValidationWarning,
}

// ParseValidationStatus validates a string as a known validation status.
func ParseValidationStatus(s string) (ValidationStatus, error) {
	v := ValidationStatus(s)
	if !slices.Contains(validationStatuses, v) {
		return "", ErrInvalidValidationStatus
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known validation status.
func (v *ValidationStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseValidationStatus(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
