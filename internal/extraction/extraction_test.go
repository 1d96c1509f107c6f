package extraction_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/sifterhq/sifter/internal/extraction"
)

func TestParseFileType(t *testing.T) {
	tests := []struct {
		input   string
		want    extraction.FileType
		wantErr bool
	}{
		{"csv", extraction.TypeCSV, false},
		{"tsv", extraction.TypeTSV, false},
		{"xlsx", extraction.TypeXLSX, false},
		{"json", extraction.TypeJSON, false},
		{"xml", extraction.TypeXML, false},
		{"parquet", "", true},
		{"", "", true},
		{"CSV", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := extraction.ParseFileType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, extraction.ErrUnsupportedType) {
					t.Fatalf("expected ErrUnsupportedType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractCSV(t *testing.T) {
	data := strings.Join([]string{
		"Item Name,SKU,Quantity,Unit Cost",
		"Widget A,W-001,12,3.50",
		"Widget B,W-002,5,1.25",
		"Gadget,G-100,0,10.00",
		"Bracket,B-220,300,0.15",
		"Spring,S-005,42,0.02",
	}, "\n")

	result, err := extraction.Extract([]byte(data), extraction.TypeCSV)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	wantColumns := []string{"Item Name", "SKU", "Quantity", "Unit Cost"}
	if len(result.Columns) != len(wantColumns) {
		t.Fatalf("got %d columns, want %d", len(result.Columns), len(wantColumns))
	}
	for i, col := range wantColumns {
		if result.Columns[i] != col {
			t.Errorf("column %d: got %q, want %q", i, result.Columns[i], col)
		}
	}

	if len(result.Rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(result.Rows))
	}

	for i, row := range result.Rows {
		if row.Number != i+1 {
			t.Errorf("row %d numbered %d", i, row.Number)
		}
	}

	first := result.Rows[0].Values
	if first["Item Name"] != "Widget A" || first["Quantity"] != "12" {
		t.Errorf("unexpected first row values: %v", first)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestExtractCSVRaggedRows(t *testing.T) {
	data := "a,b,c\n1,2,3\n4,5\n6,7,8,9\n"

	result, err := extraction.Extract([]byte(data), extraction.TypeCSV)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	if len(result.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(result.Rows))
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("got %d warnings, want 2", len(result.Warnings))
	}

	// short row: missing cell is absent, not empty
	short := result.Rows[1].Values
	if _, ok := short["c"]; ok {
		t.Errorf("short row should not carry column c: %v", short)
	}
	if short["a"] != "4" || short["b"] != "5" {
		t.Errorf("unexpected short row values: %v", short)
	}

	// long row: extra cell dropped, named columns kept
	long := result.Rows[2].Values
	if len(long) != 3 {
		t.Errorf("long row should keep 3 values, got %v", long)
	}
}

func TestExtractEmptyFile(t *testing.T) {
	for _, input := range []string{"", "   \n  "} {
		result, err := extraction.Extract([]byte(input), extraction.TypeCSV)
		if err != nil {
			t.Fatalf("empty input should not fail: %v", err)
		}
		if len(result.Rows) != 0 {
			t.Errorf("got %d rows, want 0", len(result.Rows))
		}
	}
}

func TestExtractInvalidEncoding(t *testing.T) {
	data := []byte{0x68, 0x69, 0xff, 0xfe, 0x0a}

	_, err := extraction.Extract(data, extraction.TypeCSV)
	if !errors.Is(err, extraction.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestExtractTSV(t *testing.T) {
	data := "name\tqty\nalpha\t1\nbeta\t2\n"

	result, err := extraction.Extract([]byte(data), extraction.TypeTSV)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Rows))
	}
	if result.Rows[1].Values["qty"] != "2" {
		t.Errorf("unexpected values: %v", result.Rows[1].Values)
	}
}

func TestExtractJSON(t *testing.T) {
	data := `[{"sku": "W-001", "qty": 3}, {"sku": "W-002", "qty": 7, "price": 1.5}]`

	result, err := extraction.Extract([]byte(data), extraction.TypeJSON)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Rows))
	}
	if result.Rows[0].Values["sku"] != "W-001" {
		t.Errorf("unexpected values: %v", result.Rows[0].Values)
	}
	if result.Rows[0].Values["qty"] != "3" {
		t.Errorf("numeric value should stringify without decoration: %v", result.Rows[0].Values)
	}
}

func TestExtractHeaderNormalization(t *testing.T) {
	data := " a ,, a \n1,2,3\n"

	result, err := extraction.Extract([]byte(data), extraction.TypeCSV)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	seen := map[string]bool{}
	for _, col := range result.Columns {
		if col == "" {
			t.Error("blank column name survived normalization")
		}
		if seen[col] {
			t.Errorf("duplicate column name %q", col)
		}
		seen[col] = true
	}
}

func TestExtractHeaderRenameAvoidsLiteralCollision(t *testing.T) {
	// the second x would normally rename to x_2, which is already taken
	data := "x,x_2,x\n1,2,3\n"

	result, err := extraction.Extract([]byte(data), extraction.TypeCSV)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	want := []string{"x", "x_2", "x_3"}
	if len(result.Columns) != len(want) {
		t.Fatalf("got columns %v, want %v", result.Columns, want)
	}
	for i, col := range want {
		if result.Columns[i] != col {
			t.Errorf("got columns %v, want %v", result.Columns, want)
		}
	}
	if result.Rows[0].Values["x_3"] != "3" {
		t.Errorf("renamed column lost its cell: %v", result.Rows[0].Values)
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	_, err := extraction.Extract([]byte("x"), extraction.FileType("pdf"))
	if !errors.Is(err, extraction.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}
