package records

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sifterhq/sifter/internal/classifier"
	"github.com/sifterhq/sifter/internal/mappings"
)

// ResolvedColumn is one column of the effective mapping: a human
// confirmation when present, otherwise the detection's suggestion.
type ResolvedColumn struct {
	SourceColumn string
	TargetField  string
	Type         DataType
}

// ResolveMapping merges user confirmations over detections, preserving
// detection column order.
func ResolveMapping(
	detections []mappings.ColumnDetection,
	confirmed []mappings.UserColumnMapping,
) []ResolvedColumn {
	overrides := make(map[string]string, len(confirmed))
	for _, m := range confirmed {
		overrides[m.SourceColumnName] = m.ConfirmedStandardField
	}

	resolved := make([]ResolvedColumn, 0, len(detections))
	for _, d := range detections {
		target := d.SuggestedStandardField
		if override, ok := overrides[d.SourceColumnName]; ok {
			target = override
		}
		resolved = append(resolved, ResolvedColumn{
			SourceColumn: d.SourceColumnName,
			TargetField:  target,
			Type:         ParseDataType(d.DetectedDataType),
		})
	}
	return resolved
}

// StandardizedRow is the engine's output for one raw row before
// persistence assigns identity and version.
type StandardizedRow struct {
	Data    map[string]any
	Hash    string
	Status  ValidationStatus
	Errors  []string
	Quality int
}

// StandardizeRow coerces one raw row through the resolved mapping,
// validates it for the entity type, fingerprints the normalized content,
// and scores its quality. Failures are recorded on the row, never fatal.
func StandardizeRow(
	values map[string]string,
	mapping []ResolvedColumn,
	entityType classifier.EntityType,
) StandardizedRow {
	row := StandardizedRow{
		Data:   make(map[string]any, len(mapping)),
		Errors: []string{},
	}

	canonical := make(map[string]string, len(mapping))
	empty := 0
	coercionErrors := 0

	for _, col := range mapping {
		raw, ok := values[col.SourceColumn]
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			empty++
			row.Data[col.TargetField] = nil
			continue
		}

		value, canon, err := coerce(raw, col.Type)
		if err != nil {
			coercionErrors++
			row.Errors = append(row.Errors, fmt.Sprintf("%s: %v", col.TargetField, err))
			// preserve the raw value so nothing is silently dropped
			row.Data[col.TargetField] = raw
			canonical[col.TargetField] = raw
			continue
		}

		row.Data[col.TargetField] = value
		canonical[col.TargetField] = canon
	}

	validationErrors := validate(row.Data, entityType)
	row.Errors = append(row.Errors, validationErrors...)

	row.Hash = contentHash(entityType, canonical)
	// coercion errors feed consistency only; counting them again as
	// validity would penalize one bad cell twice
	row.Quality = qualityScore(len(mapping), empty, coercionErrors, len(validationErrors))

	switch {
	case len(row.Errors) > 0:
		row.Status = ValidationFailed
	case empty > 0:
		row.Status = ValidationWarning
	default:
		row.Status = ValidationPassed
	}

	return row
}

// contentHash fingerprints the normalized field set: entity type plus
// sorted field=value pairs. Identical content always hashes identically,
// which drives version dedup.
func contentHash(entityType classifier.EntityType, canonical map[string]string) string {
	fields := make([]string, 0, len(canonical))
	for field := range canonical {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	h := sha256.New()
	h.Write([]byte(entityType))
	for _, field := range fields {
		fmt.Fprintf(h, "\n%s=%s", field, canonical[field])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// qualityScore weighs completeness (40%), validity (40%), and coercion
// consistency (20%) into a 0-100 score.
func qualityScore(total, empty, coercionErrors, validationErrors int) int {
	if total == 0 {
		return 0
	}

	filled := total - empty
	completeness := float64(filled) / float64(total)

	validity := 1 - float64(validationErrors)/float64(total)
	if validity < 0 {
		validity = 0
	}

	consistency := 1.0
	if filled > 0 {
		consistency = 1 - float64(coercionErrors)/float64(filled)
	}

	score := int((completeness*0.4 + validity*0.4 + consistency*0.2) * 100)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02T15:04:05",
}

var currencyReplacer = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "")

// coerce converts a raw cell to its typed value plus a canonical string
// form used for content hashing.
func coerce(raw string, t DataType) (any, string, error) {
	switch t {
	case TypeInteger:
		cleaned := strings.ReplaceAll(raw, ",", "")
		n, err := strconv.ParseInt(cleaned, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("cannot parse %q as integer", raw)
		}
		return n, strconv.FormatInt(n, 10), nil

	case TypeDecimal:
		cleaned := strings.ReplaceAll(raw, ",", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil, "", fmt.Errorf("cannot parse %q as decimal", raw)
		}
		canon := strconv.FormatFloat(f, 'f', -1, 64)
		return f, canon, nil

	case TypeCurrency:
		cleaned := currencyReplacer.Replace(raw)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil, "", fmt.Errorf("cannot parse %q as currency", raw)
		}
		canon := strconv.FormatFloat(f, 'f', 2, 64)
		return f, canon, nil

	case TypeDate:
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, raw); err == nil {
				canon := d.Format("2006-01-02")
				return canon, canon, nil
			}
		}
		return nil, "", fmt.Errorf("cannot parse %q as date", raw)

	case TypeDatetime:
		for _, layout := range datetimeLayouts {
			if d, err := time.Parse(layout, raw); err == nil {
				canon := d.UTC().Format(time.RFC3339)
				return canon, canon, nil
			}
		}
		return nil, "", fmt.Errorf("cannot parse %q as datetime", raw)

	case TypeBoolean:
		switch strings.ToLower(raw) {
		case "true", "yes", "y", "1":
			return true, "true", nil
		case "false", "no", "n", "0":
			return false, "false", nil
		}
		return nil, "", fmt.Errorf("cannot parse %q as boolean", raw)

	default:
		return raw, raw, nil
	}
}

// requiredFields lists the standard fields an entity type must populate
// for a row to validate.
var requiredFields = map[classifier.EntityType][]string{
	classifier.EntityInventory: {"item_name", "quantity"},
	classifier.EntityOrders:    {"order_date"},
	classifier.EntityProducts:  {"product_name"},
	classifier.EntitySuppliers: {"supplier_name"},
	classifier.EntityCustomers: {"customer_name"},
	classifier.EntityFinancial: {"amount"},
}

// nonNegativeFields are numeric standard fields that must not go below
// zero when present.
var nonNegativeFields = []string{
	"quantity",
	"unit_cost",
	"unit_price",
	"price",
	"total_amount",
	"amount",
}

func validate(data map[string]any, entityType classifier.EntityType) []string {
	var errs []string

	for _, field := range requiredFields[entityType] {
		if v, ok := data[field]; !ok || v == nil || v == "" {
			errs = append(errs, fmt.Sprintf("%s: required for %s records", field, entityType))
		}
	}

	for _, field := range nonNegativeFields {
		switch v := data[field].(type) {
		case int64:
			if v < 0 {
				errs = append(errs, fmt.Sprintf("%s: must not be negative", field))
			}
		case float64:
			if v < 0 {
				errs = append(errs, fmt.Sprintf("%s: must not be negative", field))
			}
		}
	}

	return errs
}
