package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProcessedOrder stores one normalized order extracted from a vendor file.
type ProcessedOrder struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	OrderNumber     string     `gorm:"size:100;not null;index" json:"orderNumber"`
	Source          string     `gorm:"size:50;not null;index" json:"source"`
	CustomerName    string     `gorm:"size:200" json:"customerName"`
	RawCustomerName string     `gorm:"size:200" json:"rawCustomerName"`
	OrderDate       *time.Time `json:"orderDate,omitempty"`
	ProcessedAt     time.Time  `gorm:"autoCreateTime;index" json:"processedAt"`
	SourceFile      string     `gorm:"size:500" json:"sourceFile"`

	LineItems []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lineItems,omitempty"`
}

func (ProcessedOrder) TableName() string { return "processed_orders" }

// OrderLineItem stores a single line of a processed order. RawItemNumber
// keeps the vendor identifier as a trace even when resolution failed.
type OrderLineItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"orderId"`

	ItemNumber      string  `gorm:"size:100" json:"itemNumber"`
	RawItemNumber   string  `gorm:"size:100" json:"rawItemNumber"`
	ItemDescription string  `gorm:"type:text" json:"itemDescription"`
	Quantity        int     `gorm:"default:1" json:"quantity"`
	UnitPrice       float64 `gorm:"default:0" json:"unitPrice"`
	TotalPrice      float64 `gorm:"default:0" json:"totalPrice"`
}

func (OrderLineItem) TableName() string { return "order_line_items" }

// ConversionHistory records one file conversion run, successful or not.
type ConversionHistory struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Filename       string         `gorm:"size:500;not null" json:"filename"`
	Source         string         `gorm:"size:50;not null;index" json:"source"`
	ConversionDate time.Time      `gorm:"autoCreateTime;index" json:"conversionDate"`
	OrdersCount    int            `gorm:"default:0" json:"ordersCount"`
	LineItemsCount int            `gorm:"default:0" json:"lineItemsCount"`
	Success        bool           `gorm:"not null" json:"success"`
	ErrorMessage   string         `gorm:"type:text" json:"errorMessage,omitempty"`
	Summary        datatypes.JSON `json:"summary,omitempty"`
}

func (ConversionHistory) TableName() string { return "conversion_history" }
