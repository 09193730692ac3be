package xoro

import (
	"fmt"
	"strings"
	"time"

	"github.com/idi-foods/xorobridge/internal/parsers"
)

// shipDays is the default lead time between order date and ship date.
const shipDays = 7

// Columns is the Xoro sales-order import header in template order.
var Columns = []string{
	"ImportError", "ThirdPartyRefNo", "ThirdPartySource", "ThirdPartyIconUrl",
	"ThirdPartyDisplayName", "SaleStoreName", "StoreName", "CurrencyCode",
	"CustomerName", "CustomerFirstName", "CustomerLastName", "CustomerMainPhone",
	"CustomerEmailMain", "CustomerPO", "CustomerId", "CustomerAccountNumber",
	"OrderDate", "DateToBeShipped", "LastDateToBeShipped", "DateToBeCancelled",
	"OrderClassCode", "OrderClassName", "OrderTypeCode", "OrderTypeName",
	"ExchangeRate", "Memo", "PaymentTermsName", "PaymentTermsType",
	"DepositRequiredTypeName", "DepositRequiredAmount", "ItemNumber",
	"ItemDescription", "UnitPrice", "Qty", "LineTotal", "DiscountAmount",
	"DiscountPercent", "TaxAmount", "TaxPercent",
}

// Row is one Xoro sales-order import line.
type Row struct {
	ImportError             string
	ThirdPartyRefNo         string
	ThirdPartySource        string
	ThirdPartyIconURL       string
	ThirdPartyDisplayName   string
	SaleStoreName           string
	StoreName               string
	CurrencyCode            string
	CustomerName            string
	CustomerFirstName       string
	CustomerLastName        string
	CustomerMainPhone       string
	CustomerEmailMain       string
	CustomerPO              string
	CustomerID              string
	CustomerAccountNumber   string
	OrderDate               string
	DateToBeShipped         string
	LastDateToBeShipped     string
	DateToBeCancelled       string
	OrderClassCode          string
	OrderClassName          string
	OrderTypeCode           string
	OrderTypeName           string
	ExchangeRate            float64
	Memo                    string
	PaymentTermsName        string
	PaymentTermsType        string
	DepositRequiredTypeName string
	DepositRequiredAmount   float64
	ItemNumber              string
	ItemDescription         string
	UnitPrice               float64
	Qty                     int
	LineTotal               float64
	DiscountAmount          float64
	DiscountPercent         float64
	TaxAmount               float64
	TaxPercent              float64
}

// ConvertOrders turns parsed order records into Xoro import rows, one row per
// order line.
func ConvertOrders(records []parsers.Record, source string) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, convertRecord(rec, source))
	}
	return rows
}

func convertRecord(rec parsers.Record, source string) Row {
	shipDate := shippingDate(rec.OrderDate, shipDays)
	firstName, lastName := splitCustomerName(rec.CustomerName)

	// UNFI West drops everything at a single warehouse; every other source
	// sells under the customer's own store.
	storeName := rec.CustomerName
	if strings.EqualFold(source, "unfi_west") {
		storeName = "KL - Richmond"
	}

	qty := int(rec.Quantity)
	if qty == 0 {
		qty = 1
	}

	row := Row{
		ThirdPartyRefNo:       rec.OrderNumber,
		ThirdPartySource:      source,
		ThirdPartyDisplayName: source,
		SaleStoreName:         storeName,
		StoreName:             storeName,
		CurrencyCode:          "USD",
		CustomerName:          rec.CustomerName,
		CustomerFirstName:     firstName,
		CustomerLastName:      lastName,
		CustomerPO:            rec.OrderNumber,
		OrderDate:             rec.OrderDate,
		DateToBeShipped:       shipDate,
		LastDateToBeShipped:   shipDate,
		OrderClassCode:        "STANDARD",
		OrderClassName:        "Standard Order",
		OrderTypeCode:         "SALE",
		OrderTypeName:         "Sales Order",
		ExchangeRate:          1.0,
		Memo:                  fmt.Sprintf("Imported from %s - File: %s", source, rec.SourceFile),
		PaymentTermsName:      "Net 30",
		PaymentTermsType:      "Net",
		ItemNumber:            rec.ItemNumber,
		ItemDescription:       rec.ItemDescription,
		UnitPrice:             rec.UnitPrice,
		Qty:                   qty,
		LineTotal:             rec.TotalPrice,
	}

	if row.LineTotal == 0 && row.UnitPrice > 0 {
		row.LineTotal = row.UnitPrice * float64(row.Qty)
	}

	return row
}

// shippingDate is the order date plus the lead time. Missing or unparseable
// order dates fall back to today plus the lead time.
func shippingDate(orderDate string, days int) string {
	base := time.Now()
	if orderDate != "" {
		if t, err := time.Parse("2006-01-02", orderDate); err == nil {
			base = t
		}
	}
	return base.AddDate(0, 0, days).Format("2006-01-02")
}

// splitCustomerName splits a full name into first and last. A single word is
// a first name; with three or more words everything past the first word is
// the last name.
func splitCustomerName(fullName string) (string, string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// Validate checks a row for the fields Xoro rejects imports without.
func Validate(row Row) []string {
	var errs []string
	if strings.TrimSpace(row.CustomerName) == "" {
		errs = append(errs, "Missing required field: CustomerName")
	}
	if strings.TrimSpace(row.ItemNumber) == "" {
		errs = append(errs, "Missing required field: ItemNumber")
	}
	if row.Qty <= 0 {
		errs = append(errs, "Missing required field: Qty")
	}
	if row.UnitPrice <= 0 {
		errs = append(errs, "Missing required field: UnitPrice")
	}
	for _, d := range []struct{ name, value string }{
		{"OrderDate", row.OrderDate},
		{"DateToBeShipped", row.DateToBeShipped},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d.value); err != nil {
			errs = append(errs, fmt.Sprintf("Invalid date format for %s: %s", d.name, d.value))
		}
	}
	return errs
}
