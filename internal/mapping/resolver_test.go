package mapping

import (
	"testing"

	"github.com/idi-foods/xorobridge/internal/models"
	"github.com/idi-foods/xorobridge/internal/normalize"
)

func TestResolveItemPriorityOrder(t *testing.T) {
	store := newTestStore(t)
	mustBulkItems(t, store, []ItemRow{
		{Source: "kehe", KeyType: "vendor_item", RawItem: "00110368", MappedItem: "FROM-VENDOR", Active: "true"},
		{Source: "kehe", KeyType: "upc", RawItem: "728119098687", MappedItem: "FROM-UPC", Active: "true"},
	})

	resolver := NewResolver(store, Options{})

	// Both key types present with distinct mappings: vendor_item must win.
	res := resolver.ResolveItem(map[normalize.KeyType]string{
		normalize.KeyVendorItem: "00110368",
		normalize.KeyUPC:        "728119098687",
	}, "kehe")

	if res.Kind != Resolved {
		t.Fatalf("Expected resolved, got kind %d (err %v)", res.Kind, res.Err)
	}
	if res.Value != "FROM-VENDOR" {
		t.Errorf("Priority order violated: got %s, want FROM-VENDOR", res.Value)
	}
	if res.KeyType != normalize.KeyVendorItem {
		t.Errorf("KeyType = %s, want vendor_item", res.KeyType)
	}
}

func TestResolveItemByEachKeyType(t *testing.T) {
	store := newTestStore(t)
	mustBulkItems(t, store, []ItemRow{
		{Source: "kehe", KeyType: "vendor_item", RawItem: "00110368", MappedItem: "17-041-1", Active: "true"},
		{Source: "kehe", KeyType: "upc", RawItem: "728119098687", MappedItem: "17-041-1", Active: "true"},
	})

	resolver := NewResolver(store, Options{})

	res := resolver.ResolveItem(map[normalize.KeyType]string{normalize.KeyVendorItem: "00110368"}, "kehe")
	if res.Kind != Resolved || res.Value != "17-041-1" {
		t.Errorf("vendor_item lookup: got (%d, %s), want (Resolved, 17-041-1)", res.Kind, res.Value)
	}

	res = resolver.ResolveItem(map[normalize.KeyType]string{normalize.KeyUPC: "728119098687"}, "kehe")
	if res.Kind != Resolved || res.Value != "17-041-1" {
		t.Errorf("upc lookup: got (%d, %s), want (Resolved, 17-041-1)", res.Kind, res.Value)
	}
}

func TestResolveItemMiss(t *testing.T) {
	store := newTestStore(t)
	resolver := NewResolver(store, Options{})

	res := resolver.ResolveItem(map[normalize.KeyType]string{normalize.KeyVendorItem: "nonexistent"}, "kehe")
	if res.Kind != NotFound {
		t.Errorf("Expected NotFound, got kind %d", res.Kind)
	}
	if res.Err != nil {
		t.Errorf("Miss should not carry an error, got %v", res.Err)
	}
}

func TestResolveItemSourceAlias(t *testing.T) {
	store := newTestStore(t)
	mustBulkItems(t, store, []ItemRow{
		{Source: "KEHE - SPS", KeyType: "vendor_item", RawItem: "X1", MappedItem: "M1", Active: "true"},
	})

	resolver := NewResolver(store, Options{})

	// Stored under the canonical source, resolvable via any alias spelling.
	for _, source := range []string{"kehe", "KEHE - SPS", "kehe_sps"} {
		res := resolver.ResolveItem(map[normalize.KeyType]string{normalize.KeyVendorItem: "X1"}, source)
		if res.Kind != Resolved || res.Value != "M1" {
			t.Errorf("source %q: got (%d, %s), want (Resolved, M1)", source, res.Kind, res.Value)
		}
	}
}

func TestResolveItemSeparatorFallback(t *testing.T) {
	store := newTestStore(t)
	mustBulkItems(t, store, []ItemRow{
		{Source: "unfi_west", KeyType: "vendor_item", RawItem: "170411", MappedItem: "17-041-1", Active: "true"},
	})

	resolver := NewResolver(store, Options{})

	// Vendor document carries the punctuated form; stored key has none.
	res := resolver.ResolveItem(map[normalize.KeyType]string{normalize.KeyVendorItem: "17-041-1"}, "unfi_west")
	if res.Kind != Resolved || res.Value != "17-041-1" {
		t.Errorf("Separator fallback: got (%d, %s), want (Resolved, 17-041-1)", res.Kind, res.Value)
	}
}

func TestResolveItemZeroPadFallback(t *testing.T) {
	store := newTestStore(t)
	mustBulkItems(t, store, []ItemRow{
		{Source: "kehe", KeyType: "upc", RawItem: "012345678905", MappedItem: "17-041-1", Active: "true"},
	})

	resolver := NewResolver(store, Options{})

	// Spreadsheet exports drop the leading zero from UPC-A codes.
	res := resolver.ResolveItem(map[normalize.KeyType]string{normalize.KeyUPC: "12345678905"}, "kehe")
	if res.Kind != Resolved || res.Value != "17-041-1" {
		t.Errorf("Zero-pad fallback: got (%d, %s), want (Resolved, 17-041-1)", res.Kind, res.Value)
	}
}

func TestResolveItemIgnoresInactive(t *testing.T) {
	store := newTestStore(t)
	mustBulkItems(t, store, []ItemRow{
		{Source: "kehe", KeyType: "vendor_item", RawItem: "X1", MappedItem: "OLD", Active: "False"},
	})

	resolver := NewResolver(store, Options{})
	res := resolver.ResolveItem(map[normalize.KeyType]string{normalize.KeyVendorItem: "X1"}, "kehe")
	if res.Kind != NotFound {
		t.Errorf("Inactive mapping should be invisible, got kind %d value %s", res.Kind, res.Value)
	}
}

func TestResolveStoreChain(t *testing.T) {
	store := newTestStore(t)
	if err := store.UpsertStoreMapping(&models.StoreMapping{
		Source: "unfi_west", RawStoreID: "Tony's Fine Foods", MappedStoreName: "TONYS", Active: true,
	}); err != nil {
		t.Fatalf("Failed to seed store mapping: %v", err)
	}

	resolver := NewResolver(store, Options{})

	// Exact match.
	if res := resolver.ResolveStore("Tony's Fine Foods", "unfi_west"); res.Kind != Resolved || res.Value != "TONYS" {
		t.Errorf("Exact: got (%d, %s)", res.Kind, res.Value)
	}

	// Case-insensitive match.
	if res := resolver.ResolveStore("TONY'S FINE FOODS", "unfi_west"); res.Kind != Resolved || res.Value != "TONYS" {
		t.Errorf("Case-insensitive: got (%d, %s)", res.Kind, res.Value)
	}

	// Substring match requires opt-in.
	if res := resolver.ResolveStore("Tony's Fine Foods West Division", "unfi_west"); res.Kind != NotFound {
		t.Errorf("Partial without opt-in should miss, got (%d, %s)", res.Kind, res.Value)
	}

	partial := NewResolver(store, Options{AllowPartial: true})
	if res := partial.ResolveStore("Tony's Fine Foods West Division", "unfi_west"); res.Kind != Resolved || res.Value != "TONYS" {
		t.Errorf("Partial with opt-in: got (%d, %s)", res.Kind, res.Value)
	}
}

func TestResolveStorePartialSkipsBlankKeys(t *testing.T) {
	store := newTestStore(t)

	// A whitespace-only raw id trims to an empty dictionary key, which a
	// naive substring check would match against any input.
	blank := models.StoreMapping{
		Source: "kehe", RawStoreID: "   ", MappedStoreName: "GHOST",
		StoreType: "retail", Priority: 100, Active: true,
	}
	if err := store.DB().Create(&blank).Error; err != nil {
		t.Fatalf("Failed to seed store mapping: %v", err)
	}

	resolver := NewResolver(store, Options{AllowPartial: true})
	if res := resolver.ResolveStore("Completely Unrelated Store", "kehe"); res.Kind != NotFound {
		t.Errorf("Blank key matched: got (%d, %s)", res.Kind, res.Value)
	}
}

func TestStoreNameOrDefault(t *testing.T) {
	store := newTestStore(t)
	resolver := NewResolver(store, Options{})

	if got := resolver.StoreNameOrDefault("", "kehe"); got != "UNKNOWN" {
		t.Errorf("Empty raw name: got %s, want UNKNOWN", got)
	}
	if got := resolver.StoreNameOrDefault("Unmapped Store", "wholefoods"); got != "IDI - Richmond" {
		t.Errorf("Whole Foods default: got %s, want IDI - Richmond", got)
	}
	if got := resolver.StoreNameOrDefault("Unmapped Store", "kehe"); got != "Unmapped Store" {
		t.Errorf("Fallback to raw: got %s", got)
	}
}

func TestResolveCustomerSuffixCode(t *testing.T) {
	store := newTestStore(t)
	seed := []models.CustomerMapping{
		{Source: "unfi_east", RawCustomerID: "128 RCH", MappedCustomerName: "UNFI EAST RICHBURG", Active: true},
		{Source: "unfi_east", RawCustomerID: "129 HOW", MappedCustomerName: "UNFI EAST HOWELL NJ", Active: true},
	}
	for i := range seed {
		if err := store.UpsertCustomerMapping(&seed[i]); err != nil {
			t.Fatalf("Failed to seed customer mapping: %v", err)
		}
	}

	resolver := NewResolver(store, Options{})

	// Parser extracts just the trailing code; stored key has a numeric prefix.
	if got := resolver.CustomerNameOrUnknown("RCH", "unfi_east"); got != "UNFI EAST RICHBURG" {
		t.Errorf("Suffix code RCH: got %s", got)
	}
	if got := resolver.CustomerNameOrUnknown("how", "unfi_east"); got != "UNFI EAST HOWELL NJ" {
		t.Errorf("Suffix code how: got %s", got)
	}
	if got := resolver.CustomerNameOrUnknown("128 RCH", "unfi_east"); got != "UNFI EAST RICHBURG" {
		t.Errorf("Exact key: got %s", got)
	}
	if got := resolver.CustomerNameOrUnknown("ZZZ", "unfi_east"); got != "UNKNOWN" {
		t.Errorf("Miss should yield UNKNOWN, got %s", got)
	}
}

func TestResolveCustomerSweepsLegacyRows(t *testing.T) {
	store := newTestStore(t)

	// A legacy import filed a customer mapping into the store table.
	legacy := models.StoreMapping{
		Source: "kehe", RawStoreID: "123", MappedStoreName: "ACME",
		StoreType: "customer", Active: true,
	}
	if err := store.DB().Create(&legacy).Error; err != nil {
		t.Fatalf("Failed to seed legacy row: %v", err)
	}

	resolver := NewResolver(store, Options{})

	if got := resolver.CustomerNameOrUnknown("123", "kehe"); got != "ACME" {
		t.Errorf("Legacy row should resolve as customer after sweep, got %s", got)
	}

	var storeCount, customerCount int64
	store.DB().Model(&models.StoreMapping{}).Where("store_type = ?", "customer").Count(&storeCount)
	store.DB().Model(&models.CustomerMapping{}).Count(&customerCount)
	if storeCount != 0 {
		t.Errorf("Legacy rows remaining in store table: %d, want 0", storeCount)
	}
	if customerCount != 1 {
		t.Errorf("Customer rows after sweep: %d, want 1", customerCount)
	}
}

func TestLegacyMigrationIdempotent(t *testing.T) {
	store := newTestStore(t)

	legacy := models.StoreMapping{
		Source: "kehe", RawStoreID: "123", MappedStoreName: "ACME",
		StoreType: "customer", Active: true,
	}
	if err := store.DB().Create(&legacy).Error; err != nil {
		t.Fatalf("Failed to seed legacy row: %v", err)
	}

	migrated, err := store.MigrateLegacyCustomerMappings()
	if err != nil {
		t.Fatalf("First migration failed: %v", err)
	}
	if migrated != 1 {
		t.Errorf("First run migrated %d rows, want 1", migrated)
	}

	migrated, err = store.MigrateLegacyCustomerMappings()
	if err != nil {
		t.Fatalf("Second migration failed: %v", err)
	}
	if migrated != 0 {
		t.Errorf("Second run migrated %d rows, want 0 (idempotent)", migrated)
	}

	var customerCount int64
	store.DB().Model(&models.CustomerMapping{}).Count(&customerCount)
	if customerCount != 1 {
		t.Errorf("Customer rows: %d, want exactly 1", customerCount)
	}
}

func TestCacheInvalidateOnWrite(t *testing.T) {
	store := newTestStore(t)
	resolver := NewResolver(store, Options{})

	if err := store.UpsertStoreMapping(&models.StoreMapping{
		Source: "kehe", RawStoreID: "S1", MappedStoreName: "FIRST", Active: true,
	}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	if res := resolver.ResolveStore("S1", "kehe"); res.Value != "FIRST" {
		t.Fatalf("Initial resolve: got %s", res.Value)
	}

	// A write must invalidate the cached dictionary for the source.
	if err := store.UpsertStoreMapping(&models.StoreMapping{
		Source: "kehe", RawStoreID: "S1", MappedStoreName: "SECOND", Active: true,
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if res := resolver.ResolveStore("S1", "kehe"); res.Value != "SECOND" {
		t.Errorf("Stale cache after write: got %s, want SECOND", res.Value)
	}
}
