package records

import (
	"encoding/json"
	"slices"

	"github.com/sifterhq/sifter/internal/classifier"
)

// Dashboard identifies a downstream data sink. The set is closed:
// assignment writes are checked against it, never free text.
type Dashboard string

// Known dashboards.
const (
	DashboardInventory Dashboard = "inventory_overview"
	DashboardOrders    Dashboard = "order_analytics"
	DashboardProducts  Dashboard = "product_catalog"
	DashboardSuppliers Dashboard = "supplier_directory"
	DashboardCustomers Dashboard = "customer_insights"
	DashboardFinancial Dashboard = "financial_summary"
)

var dashboards = []Dashboard{
	DashboardInventory,
	DashboardOrders,
	DashboardProducts,
	DashboardSuppliers,
	DashboardCustomers,
	DashboardFinancial,
}

// dashboardAssignments is the deterministic entity type → dashboard map.
var dashboardAssignments = map[classifier.EntityType][]Dashboard{
	classifier.EntityInventory: {DashboardInventory},
	classifier.EntityOrders:    {DashboardOrders, DashboardFinancial},
	classifier.EntityProducts:  {DashboardProducts, DashboardInventory},
	classifier.EntitySuppliers: {DashboardSuppliers},
	classifier.EntityCustomers: {DashboardCustomers},
	classifier.EntityFinancial: {DashboardFinancial},
}

// Dashboards returns the list of known dashboards.
func Dashboards() []Dashboard {
	return dashboards
}

// ParseDashboard validates a string as a known dashboard.
func ParseDashboard(s string) (Dashboard, error) {
	v := Dashboard(s)
	if !slices.Contains(dashboards, v) {
		return "", ErrUnknownDashboard
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known dashboard.
func (d *Dashboard) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseDashboard(raw)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// AssignDashboards returns the dashboards fed by an entity type. Every
// known entity type maps to at least one dashboard.
func AssignDashboards(entityType classifier.EntityType) []Dashboard {
	return slices.Clone(dashboardAssignments[entityType])
}
