package importer

import (
	"fmt"
	"strings"

	"github.com/idi-foods/xorobridge/internal/mapping"
	"github.com/idi-foods/xorobridge/internal/normalize"
)

// Kind identifies which mapping table a file feeds.
type Kind string

const (
	KindItems     Kind = "items"
	KindStores    Kind = "stores"
	KindCustomers Kind = "customers"
)

// Column aliases across the historical export versions. Every alias is
// matched case-insensitively with spaces and underscores removed, so
// "Raw Key Value", "raw_key_value" and "RawKeyValue" all land on the same
// column.
var (
	itemAliases = map[string][]string{
		"source":            {"source", "vendorsource"},
		"keyType":           {"rawkeytype", "keytype", "idtype"},
		"rawItem":           {"rawkeyvalue", "rawitem", "rawitemnumber", "vendoritem", "vendoritemnumber"},
		"mappedItem":        {"mappeditemnumber", "mappeditem", "itemnumber", "xoroitemnumber"},
		"priority":          {"priority"},
		"active":            {"active", "enabled"},
		"vendor":            {"vendor", "vendorname"},
		"mappedDescription": {"mappeddescription", "description", "itemdescription"},
		"notes":             {"notes", "comment", "comments"},
	}
	storeAliases = map[string][]string{
		"source":          {"source", "vendorsource"},
		"rawStoreId":      {"rawstoreid", "storeid", "rawstore"},
		"mappedStoreName": {"mappedstorename", "storename", "xorostorename"},
		"storeType":       {"storetype", "type"},
		"priority":        {"priority"},
		"active":          {"active", "enabled"},
		"notes":           {"notes", "comment", "comments"},
	}
	customerAliases = map[string][]string{
		"source":             {"source", "vendorsource"},
		"rawCustomerId":      {"rawcustomerid", "customerid", "rawcustomer"},
		"mappedCustomerName": {"mappedcustomername", "customername", "xorocustomername"},
		"customerType":       {"customertype", "type"},
		"priority":           {"priority"},
		"active":             {"active", "enabled"},
		"notes":              {"notes", "comment", "comments"},
	}
)

// DetectKind guesses the mapping kind from the header row. The raw-key
// columns are distinctive enough to tell the three file families apart.
func DetectKind(headers []string) (Kind, error) {
	index := headerIndex(headers)
	if _, ok := firstMatch(index, itemAliases["rawItem"]); ok {
		return KindItems, nil
	}
	if _, ok := firstMatch(index, storeAliases["rawStoreId"]); ok {
		return KindStores, nil
	}
	if _, ok := firstMatch(index, customerAliases["rawCustomerId"]); ok {
		return KindCustomers, nil
	}
	return "", fmt.Errorf("cannot tell mapping kind from headers %v", headers)
}

// ItemRows maps a table onto canonical item mapping rows.
func ItemRows(t *Table) ([]mapping.ItemRow, error) {
	cols, err := resolveColumns(t.Headers, itemAliases, []string{"source", "rawItem", "mappedItem"})
	if err != nil {
		return nil, err
	}
	rows := make([]mapping.ItemRow, 0, len(t.Records))
	for _, rec := range t.Records {
		// Excel routes numeric-looking cells through float typing; key and
		// priority columns pick up a ".0" suffix on the way out.
		rows = append(rows, mapping.ItemRow{
			Source:            cell(rec, cols["source"]),
			KeyType:           cell(rec, cols["keyType"]),
			RawItem:           normalize.StripFloatSuffix(cell(rec, cols["rawItem"])),
			MappedItem:        cell(rec, cols["mappedItem"]),
			Priority:          normalize.StripFloatSuffix(cell(rec, cols["priority"])),
			Active:            cell(rec, cols["active"]),
			Vendor:            cell(rec, cols["vendor"]),
			MappedDescription: cell(rec, cols["mappedDescription"]),
			Notes:             cell(rec, cols["notes"]),
		})
	}
	return rows, nil
}

// StoreRows maps a table onto canonical store mapping rows.
func StoreRows(t *Table) ([]mapping.StoreRow, error) {
	cols, err := resolveColumns(t.Headers, storeAliases, []string{"source", "rawStoreId", "mappedStoreName"})
	if err != nil {
		return nil, err
	}
	rows := make([]mapping.StoreRow, 0, len(t.Records))
	for _, rec := range t.Records {
		rows = append(rows, mapping.StoreRow{
			Source:          cell(rec, cols["source"]),
			RawStoreID:      normalize.StripFloatSuffix(cell(rec, cols["rawStoreId"])),
			MappedStoreName: cell(rec, cols["mappedStoreName"]),
			StoreType:       cell(rec, cols["storeType"]),
			Priority:        normalize.StripFloatSuffix(cell(rec, cols["priority"])),
			Active:          cell(rec, cols["active"]),
			Notes:           cell(rec, cols["notes"]),
		})
	}
	return rows, nil
}

// CustomerRows maps a table onto canonical customer mapping rows.
func CustomerRows(t *Table) ([]mapping.CustomerRow, error) {
	cols, err := resolveColumns(t.Headers, customerAliases, []string{"source", "rawCustomerId", "mappedCustomerName"})
	if err != nil {
		return nil, err
	}
	rows := make([]mapping.CustomerRow, 0, len(t.Records))
	for _, rec := range t.Records {
		rows = append(rows, mapping.CustomerRow{
			Source:             cell(rec, cols["source"]),
			RawCustomerID:      normalize.StripFloatSuffix(cell(rec, cols["rawCustomerId"])),
			MappedCustomerName: cell(rec, cols["mappedCustomerName"]),
			CustomerType:       cell(rec, cols["customerType"]),
			Priority:           normalize.StripFloatSuffix(cell(rec, cols["priority"])),
			Active:             cell(rec, cols["active"]),
			Notes:              cell(rec, cols["notes"]),
		})
	}
	return rows, nil
}

// resolveColumns maps canonical field names to column indices. Missing
// optional columns get index -1; missing required ones fail the import.
func resolveColumns(headers []string, aliases map[string][]string, required []string) (map[string]int, error) {
	index := headerIndex(headers)
	cols := make(map[string]int, len(aliases))
	for field, names := range aliases {
		if i, ok := firstMatch(index, names); ok {
			cols[field] = i
		} else {
			cols[field] = -1
		}
	}
	for _, field := range required {
		if cols[field] == -1 {
			return nil, fmt.Errorf("required column %q not found in headers %v", field, headers)
		}
	}
	return cols, nil
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	return index
}

func firstMatch(index map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if i, ok := index[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	return h
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}
