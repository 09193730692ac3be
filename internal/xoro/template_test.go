package xoro

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/idi-foods/xorobridge/internal/parsers"
)

func TestConvertOrdersBasics(t *testing.T) {
	records := []parsers.Record{{
		OrderNumber:     "SO-1001",
		CustomerName:    "John Smith",
		OrderDate:       "2026-03-02",
		ItemNumber:      "17-041-1",
		ItemDescription: "Dumplings",
		Quantity:        3,
		UnitPrice:       12.50,
		TotalPrice:      37.50,
		SourceFile:      "kehe_orders.csv",
	}}

	rows := ConvertOrders(records, "kehe")
	if len(rows) != 1 {
		t.Fatalf("Row count = %d, want 1", len(rows))
	}
	row := rows[0]

	if row.ThirdPartyRefNo != "SO-1001" || row.CustomerPO != "SO-1001" {
		t.Errorf("Order number not carried into ref/PO: %+v", row)
	}
	if row.DateToBeShipped != "2026-03-09" {
		t.Errorf("DateToBeShipped = %s, want order date + 7 days", row.DateToBeShipped)
	}
	if row.LastDateToBeShipped != row.DateToBeShipped {
		t.Errorf("LastDateToBeShipped = %s, want %s", row.LastDateToBeShipped, row.DateToBeShipped)
	}
	if row.CustomerFirstName != "John" || row.CustomerLastName != "Smith" {
		t.Errorf("Name split = %q/%q, want John/Smith", row.CustomerFirstName, row.CustomerLastName)
	}
	if row.SaleStoreName != "John Smith" || row.StoreName != "John Smith" {
		t.Errorf("Store names should default to the customer name: %+v", row)
	}
	if row.LineTotal != 37.50 || row.Qty != 3 {
		t.Errorf("Line math wrong: qty=%d total=%v", row.Qty, row.LineTotal)
	}
	if row.CurrencyCode != "USD" || row.OrderTypeCode != "SALE" {
		t.Errorf("Template defaults wrong: %+v", row)
	}
}

func TestConvertOrdersUnfiWestWarehouse(t *testing.T) {
	rows := ConvertOrders([]parsers.Record{{
		OrderNumber:  "W-1",
		CustomerName: "UNFI WEST RIDGEFIELD",
		ItemNumber:   "17-041-1",
		Quantity:     1,
		UnitPrice:    10,
	}}, "unfi_west")

	if rows[0].SaleStoreName != "KL - Richmond" || rows[0].StoreName != "KL - Richmond" {
		t.Errorf("unfi_west rows must ship from KL - Richmond, got %q/%q",
			rows[0].SaleStoreName, rows[0].StoreName)
	}
}

func TestConvertOrdersLineTotalBackfill(t *testing.T) {
	rows := ConvertOrders([]parsers.Record{{
		OrderNumber:  "SO-2",
		CustomerName: "ACME",
		ItemNumber:   "17-041-1",
		Quantity:     4,
		UnitPrice:    2.25,
		TotalPrice:   0,
	}}, "kehe")

	if rows[0].LineTotal != 9 {
		t.Errorf("LineTotal = %v, want 9 (unit price x qty backfill)", rows[0].LineTotal)
	}
}

func TestConvertOrdersZeroQuantityDefaultsToOne(t *testing.T) {
	rows := ConvertOrders([]parsers.Record{{
		OrderNumber:  "SO-3",
		CustomerName: "ACME",
		ItemNumber:   "17-041-1",
		UnitPrice:    5,
	}}, "kehe")

	if rows[0].Qty != 1 {
		t.Errorf("Qty = %d, want 1", rows[0].Qty)
	}
	if rows[0].LineTotal != 5 {
		t.Errorf("LineTotal = %v, want 5", rows[0].LineTotal)
	}
}

func TestSplitCustomerName(t *testing.T) {
	tests := []struct {
		in    string
		first string
		last  string
	}{
		{"", "", ""},
		{"Cher", "Cher", ""},
		{"John Smith", "John", "Smith"},
		{"Mary Anne van Dyke", "Mary", "Anne van Dyke"},
	}
	for _, tt := range tests {
		first, last := splitCustomerName(tt.in)
		if first != tt.first || last != tt.last {
			t.Errorf("splitCustomerName(%q) = %q/%q, want %q/%q", tt.in, first, last, tt.first, tt.last)
		}
	}
}

func TestShippingDateFallback(t *testing.T) {
	// Unparseable order dates fall back to a computed date, never an error.
	got := shippingDate("03/02/2026", 7)
	if _, err := time.Parse("2006-01-02", got); err != nil {
		t.Errorf("shippingDate fallback %q is not ISO formatted", got)
	}
}

func TestValidate(t *testing.T) {
	good := ConvertOrders([]parsers.Record{{
		OrderNumber:  "SO-4",
		CustomerName: "ACME",
		ItemNumber:   "17-041-1",
		OrderDate:    "2026-03-02",
		Quantity:     1,
		UnitPrice:    5,
	}}, "kehe")[0]
	if errs := Validate(good); len(errs) != 0 {
		t.Errorf("Valid row flagged: %v", errs)
	}

	bad := good
	bad.CustomerName = ""
	bad.OrderDate = "03/02/2026"
	errs := Validate(bad)
	if len(errs) != 2 {
		t.Errorf("Expected 2 validation errors, got %v", errs)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := ConvertOrders([]parsers.Record{{
		OrderNumber:  "SO-5",
		CustomerName: "ACME",
		OrderDate:    "2026-03-02",
		ItemNumber:   "17-041-1",
		Quantity:     2,
		UnitPrice:    3.5,
		TotalPrice:   7,
	}}, "kehe")

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	parsed, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("CSV has %d rows, want header + 1 data row", len(parsed))
	}
	if len(parsed[0]) != len(Columns) {
		t.Errorf("Header width = %d, want %d", len(parsed[0]), len(Columns))
	}
	if len(parsed[1]) != len(Columns) {
		t.Errorf("Data width = %d, want %d", len(parsed[1]), len(Columns))
	}
	if parsed[0][0] != "ImportError" || parsed[0][len(Columns)-1] != "TaxPercent" {
		t.Errorf("Column order wrong: first=%s last=%s", parsed[0][0], parsed[0][len(parsed[0])-1])
	}
	if parsed[1][1] != "SO-5" {
		t.Errorf("ThirdPartyRefNo cell = %s, want SO-5", parsed[1][1])
	}
}
