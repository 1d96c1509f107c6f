package classifier

import (
	"encoding/json"
	"slices"
)

// EntityType is the business category of an uploaded data file. It
// drives downstream validation rules and dashboard assignment.
type EntityType string

// Known entity types.
const (
	EntityInventory EntityType = "inventory"
	EntityOrders    EntityType = "orders"
	EntityProducts  EntityType = "products"
	EntitySuppliers EntityType = "suppliers"
	EntityCustomers EntityType = "customers"
	EntityFinancial EntityType = "financial"
)

var entityTypes = []EntityType{
	EntityInventory,
	EntityOrders,
	EntityProducts,
	EntitySuppliers,
	EntityCustomers,
	EntityFinancial,
}

// EntityTypes returns the list of known entity types.
func EntityTypes() []EntityType {
	return entityTypes
}

// ParseEntityType validates a string as a known entity type.
// Returns ErrClassificationFailed if the value is not recognized.
func ParseEntityType(s string) (EntityType, error) {
	v := EntityType(s)
	if !slices.Contains(entityTypes, v) {
		return "", ErrClassificationFailed
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known entity type.
func (e *EntityType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseEntityType(raw)
	if err != nil {
		return err
	}
	*e = v
	return nil
}
