package models

import (
	"time"
)

// ItemMapping links a vendor-supplied item identifier to the canonical Xoro
// item number. For a given (source, key_type, raw_item) at most one active
// row may exist; the bulk upsert validator enforces this and a partial unique
// index backs it at the database level.
//
// Priority and Active carry no column default: a GORM default tag drops
// zero values (false, 0) from INSERTs, so an inactive or priority-0 row
// would be stored with the default instead. The validator owns the defaults.
type ItemMapping struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Source            string `gorm:"size:50;not null;index:idx_item_mappings_lookup,priority:1" json:"source"`
	KeyType           string `gorm:"size:50;not null;default:'vendor_item';index:idx_item_mappings_lookup,priority:2" json:"keyType"`
	RawItem           string `gorm:"size:100;not null;index:idx_item_mappings_lookup,priority:3" json:"rawItem"`
	MappedItem        string `gorm:"size:100;not null" json:"mappedItem"`
	Priority          int    `gorm:"not null;index" json:"priority"`
	Active            bool   `gorm:"not null;index" json:"active"`
	Vendor            string `gorm:"size:100" json:"vendor,omitempty"`
	MappedDescription string `gorm:"type:text" json:"mappedDescription,omitempty"`
	Notes             string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ItemMapping) TableName() string { return "item_mappings" }

// StoreMapping maps a raw store identifier from an order document to its
// canonical store name. StoreType tags the channel (retail, distributor);
// the legacy value 'customer' marks rows that belong in customer_mappings
// and is relocated by the legacy migration sweep.
type StoreMapping struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Source          string `gorm:"size:50;not null;index:idx_store_mappings_lookup,priority:1" json:"source"`
	RawStoreID      string `gorm:"size:200;not null;index:idx_store_mappings_lookup,priority:2" json:"rawStoreId"`
	MappedStoreName string `gorm:"size:200;not null" json:"mappedStoreName"`
	StoreType       string `gorm:"size:50;default:'retail'" json:"storeType"`
	Priority        int    `gorm:"not null;index" json:"priority"`
	Active          bool   `gorm:"not null;index" json:"active"`
	Notes           string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (StoreMapping) TableName() string { return "store_mappings" }

// CustomerMapping maps a raw customer code (store number, IOW code) onto the
// canonical customer name used in Xoro export rows.
type CustomerMapping struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	Source             string `gorm:"size:50;not null;index:idx_customer_mappings_lookup,priority:1" json:"source"`
	RawCustomerID      string `gorm:"size:200;not null;index:idx_customer_mappings_lookup,priority:2" json:"rawCustomerId"`
	MappedCustomerName string `gorm:"size:200;not null" json:"mappedCustomerName"`
	CustomerType       string `gorm:"size:50;default:'store'" json:"customerType"`
	Priority           int    `gorm:"not null;index" json:"priority"`
	Active             bool   `gorm:"not null;index" json:"active"`
	Notes              string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CustomerMapping) TableName() string { return "customer_mappings" }
