package parsers

import (
	"context"
	"io"
)

// Record is one parsed order line in source-agnostic form. Raw* fields carry
// the vendor's original identifiers before any mapping resolution; the
// resolved counterparts are filled in downstream.
type Record struct {
	OrderNumber     string  `json:"orderNumber"`
	CustomerName    string  `json:"customerName"`
	RawCustomerName string  `json:"rawCustomerName"`
	StoreName       string  `json:"storeName"`
	RawStoreID      string  `json:"rawStoreId"`
	OrderDate       string  `json:"orderDate"`
	ItemNumber      string  `json:"itemNumber"`
	RawItemNumber   string  `json:"rawItemNumber"`
	ItemDescription string  `json:"itemDescription"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unitPrice"`
	TotalPrice      float64 `json:"totalPrice"`
	SourceFile      string  `json:"sourceFile"`
}

// Parser turns one vendor's order export into flat records. Implementations
// register themselves with a Registry; the conversion pipeline never knows
// vendor formats directly.
type Parser interface {
	// Source is the canonical vendor source code ("kehe", "unfi_east", ...).
	Source() string

	// DisplayName is a human-readable vendor name for status output.
	DisplayName() string

	// Parse reads one uploaded order file and returns its line records.
	Parse(ctx context.Context, r io.Reader, filename string) ([]Record, error)
}
