package records_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/classifier"
	"github.com/sifterhq/sifter/internal/mappings"
	"github.com/sifterhq/sifter/internal/records"
)

func detection(source, target, dataType string) mappings.ColumnDetection {
	return mappings.ColumnDetection{
		ID:                     uuid.New(),
		SourceColumnName:       source,
		SuggestedStandardField: target,
		DetectedDataType:       dataType,
	}
}

func inventoryMapping() []records.ResolvedColumn {
	return records.ResolveMapping([]mappings.ColumnDetection{
		detection("Item Name", "item_name", "text"),
		detection("Qty", "quantity", "integer"),
		detection("Unit Cost", "unit_cost", "currency"),
	}, nil)
}

func TestResolveMappingUserOverride(t *testing.T) {
	detections := []mappings.ColumnDetection{
		detection("Item Name", "item_name", "text"),
		detection("Qty", "reorder_point", "integer"),
	}
	confirmed := []mappings.UserColumnMapping{
		{SourceColumnName: "Qty", ConfirmedStandardField: "quantity"},
	}

	resolved := records.ResolveMapping(detections, confirmed)

	if len(resolved) != 2 {
		t.Fatalf("got %d columns, want 2", len(resolved))
	}
	if resolved[0].TargetField != "item_name" {
		t.Errorf("unconfirmed column should keep suggestion, got %s", resolved[0].TargetField)
	}
	if resolved[1].TargetField != "quantity" {
		t.Errorf("confirmation should override suggestion, got %s", resolved[1].TargetField)
	}
	if resolved[1].Type != records.TypeInteger {
		t.Errorf("got type %s, want integer", resolved[1].Type)
	}
}

func TestStandardizeRowPassed(t *testing.T) {
	row := records.StandardizeRow(
		map[string]string{"Item Name": "Widget", "Qty": "1,200", "Unit Cost": "$3.50"},
		inventoryMapping(),
		classifier.EntityInventory,
	)

	if row.Status != records.ValidationPassed {
		t.Fatalf("got status %s, want passed: %v", row.Status, row.Errors)
	}
	if row.Data["quantity"] != int64(1200) {
		t.Errorf("got quantity %v, want 1200", row.Data["quantity"])
	}
	if row.Data["unit_cost"] != 3.5 {
		t.Errorf("got unit_cost %v, want 3.5", row.Data["unit_cost"])
	}
	if row.Quality != 100 {
		t.Errorf("got quality %d, want 100", row.Quality)
	}
	if row.Hash == "" {
		t.Error("missing content hash")
	}
}

func TestStandardizeRowWarningOnEmptyCell(t *testing.T) {
	row := records.StandardizeRow(
		map[string]string{"Item Name": "Widget", "Qty": "5"},
		inventoryMapping(),
		classifier.EntityInventory,
	)

	if row.Status != records.ValidationWarning {
		t.Fatalf("got status %s, want warning: %v", row.Status, row.Errors)
	}
	if row.Data["unit_cost"] != nil {
		t.Errorf("missing cell should standardize to nil, got %v", row.Data["unit_cost"])
	}
	if row.Quality >= 100 {
		t.Errorf("quality should drop for missing cells, got %d", row.Quality)
	}
}

func TestStandardizeRowFailures(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		errPart string
	}{
		{
			"unparseable quantity keeps raw value",
			map[string]string{"Item Name": "Widget", "Qty": "a dozen", "Unit Cost": "1.00"},
			"quantity",
		},
		{
			"missing required field",
			map[string]string{"Qty": "5", "Unit Cost": "1.00"},
			"item_name",
		},
		{
			"negative quantity",
			map[string]string{"Item Name": "Widget", "Qty": "-4", "Unit Cost": "1.00"},
			"must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := records.StandardizeRow(tt.values, inventoryMapping(), classifier.EntityInventory)

			if row.Status != records.ValidationFailed {
				t.Fatalf("got status %s, want failed", row.Status)
			}
			found := false
			for _, e := range row.Errors {
				if strings.Contains(e, tt.errPart) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", row.Errors, tt.errPart)
			}
		})
	}
}

func TestStandardizeRowPreservesRawOnCoercionFailure(t *testing.T) {
	row := records.StandardizeRow(
		map[string]string{"Item Name": "Widget", "Qty": "a dozen", "Unit Cost": "1.00"},
		inventoryMapping(),
		classifier.EntityInventory,
	)

	if row.Data["quantity"] != "a dozen" {
		t.Errorf("raw value should be preserved, got %v", row.Data["quantity"])
	}
}

func TestQualityPenalizesBadCellOnce(t *testing.T) {
	// one unparseable cell out of three: completeness and validity stay
	// full, consistency drops by a third
	row := records.StandardizeRow(
		map[string]string{"Item Name": "Widget", "Qty": "a dozen", "Unit Cost": "1.00"},
		inventoryMapping(),
		classifier.EntityInventory,
	)

	if row.Status != records.ValidationFailed {
		t.Fatalf("got status %s, want failed", row.Status)
	}
	if row.Quality != 93 {
		t.Errorf("got quality %d, want 93", row.Quality)
	}
}

func TestContentHashStableAcrossFormatting(t *testing.T) {
	mapping := inventoryMapping()

	a := records.StandardizeRow(
		map[string]string{"Item Name": "Widget", "Qty": "1200", "Unit Cost": "3.50"},
		mapping, classifier.EntityInventory,
	)
	b := records.StandardizeRow(
		map[string]string{"Item Name": "  Widget ", "Qty": "1,200", "Unit Cost": "$3.5"},
		mapping, classifier.EntityInventory,
	)
	c := records.StandardizeRow(
		map[string]string{"Item Name": "Widget", "Qty": "1201", "Unit Cost": "3.50"},
		mapping, classifier.EntityInventory,
	)

	if a.Hash != b.Hash {
		t.Error("equivalent content should hash identically")
	}
	if a.Hash == c.Hash {
		t.Error("different content should hash differently")
	}
}

func TestCoerceThroughDataTypes(t *testing.T) {
	mapping := records.ResolveMapping([]mappings.ColumnDetection{
		detection("D", "order_date", "date"),
		detection("T", "delivered_at", "datetime"),
		detection("B", "expedited", "boolean"),
		detection("R", "rate", "decimal"),
	}, nil)

	row := records.StandardizeRow(
		map[string]string{
			"D": "03/15/2025",
			"T": "2025-03-15 10:30:00",
			"B": "Yes",
			"R": "0.125",
		},
		mapping, classifier.EntityOrders,
	)

	if row.Data["order_date"] != "2025-03-15" {
		t.Errorf("got date %v, want 2025-03-15", row.Data["order_date"])
	}
	if row.Data["delivered_at"] != "2025-03-15T10:30:00Z" {
		t.Errorf("got datetime %v", row.Data["delivered_at"])
	}
	if row.Data["expedited"] != true {
		t.Errorf("got boolean %v, want true", row.Data["expedited"])
	}
	if row.Data["rate"] != 0.125 {
		t.Errorf("got decimal %v, want 0.125", row.Data["rate"])
	}
	if row.Status != records.ValidationPassed {
		t.Errorf("got status %s: %v", row.Status, row.Errors)
	}
}

func TestParseDataTypeFallsBackToText(t *testing.T) {
	if got := records.ParseDataType("varchar"); got != records.TypeText {
		t.Errorf("unknown type should fall back to text, got %s", got)
	}
	if got := records.ParseDataType("currency"); got != records.TypeCurrency {
		t.Errorf("got %s, want currency", got)
	}
}

func TestAssignDashboards(t *testing.T) {
	tests := []struct {
		entity classifier.EntityType
		want   []records.Dashboard
	}{
		{classifier.EntityInventory, []records.Dashboard{records.DashboardInventory}},
		{classifier.EntityOrders, []records.Dashboard{records.DashboardOrders, records.DashboardFinancial}},
		{classifier.EntityProducts, []records.Dashboard{records.DashboardProducts, records.DashboardInventory}},
		{classifier.EntitySuppliers, []records.Dashboard{records.DashboardSuppliers}},
		{classifier.EntityCustomers, []records.Dashboard{records.DashboardCustomers}},
		{classifier.EntityFinancial, []records.Dashboard{records.DashboardFinancial}},
	}

	for _, tt := range tests {
		t.Run(string(tt.entity), func(t *testing.T) {
			got := records.AssignDashboards(tt.entity)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
