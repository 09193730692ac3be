package main

import (
	"fmt"
	"log"
	"time"

	"github.com/idi-foods/xorobridge/internal/config"
	"github.com/idi-foods/xorobridge/internal/database"
	"github.com/idi-foods/xorobridge/internal/mapping"
	"github.com/idi-foods/xorobridge/internal/models"
)

func main() {
	fmt.Println("🌱 xorobridge Demo Data Seeder")

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")
	fmt.Println()

	// Run migrations first
	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.ItemMapping{},
		&models.StoreMapping{},
		&models.CustomerMapping{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	if err := db.EnsureMappingIndexes(); err != nil {
		log.Fatalf("❌ Index creation failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")
	fmt.Println()

	// Check if data already exists
	var mappingCount int64
	db.Model(&models.ItemMapping{}).Count(&mappingCount)
	if mappingCount > 0 {
		fmt.Printf("⚠️  Database already has %d item mappings. Clear it first? (y/N): ", mappingCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE item_mappings CASCADE")
		db.Exec("TRUNCATE TABLE store_mappings CASCADE")
		db.Exec("TRUNCATE TABLE customer_mappings CASCADE")
		fmt.Println("✅ Data cleared")
	}

	fmt.Println()
	fmt.Println("📦 Creating demo mappings...")
	fmt.Println()

	store := mapping.NewStore(db.DB, time.Duration(cfg.Resolver.CacheTTLSeconds)*time.Second)

	// 1. Item mappings across key types
	fmt.Println("🔑 Creating item mappings...")
	items := []mapping.ItemRow{
		{Source: "kehe", KeyType: "vendor_item", RawItem: "00110368", MappedItem: "17-041-1",
			Vendor: "KeHE", MappedDescription: "Pork & Chive Dumplings 20oz", Active: "true"},
		{Source: "kehe", KeyType: "upc", RawItem: "812345678901", MappedItem: "17-041-1",
			Vendor: "KeHE", Active: "true"},
		{Source: "kehe", KeyType: "vendor_item", RawItem: "00110369", MappedItem: "17-042-1",
			Vendor: "KeHE", MappedDescription: "Veggie Dumplings 20oz", Active: "true"},
		{Source: "unfi_east", KeyType: "vendor_item", RawItem: "55-1020", MappedItem: "17-041-1",
			Vendor: "UNFI", Active: "true"},
		{Source: "wholefoods", KeyType: "sku_alias", RawItem: "WFM-DUMP-01", MappedItem: "17-041-1",
			Active: "true"},
	}
	itemResult := store.BulkUpsertItemMappings(items)
	if itemResult.Errors > 0 {
		log.Fatalf("❌ Item seed rejected: %v", itemResult.ErrorDetails)
	}
	fmt.Printf("   %d added, %d updated\n", itemResult.Added, itemResult.Updated)

	// 2. Store mappings
	fmt.Println("🏬 Creating store mappings...")
	stores := []mapping.StoreRow{
		{Source: "wholefoods", RawStoreID: "10447", MappedStoreName: "WFM Sarasota", StoreType: "retail", Active: "true"},
		{Source: "wholefoods", RawStoreID: "10501", MappedStoreName: "WFM Naples", StoreType: "retail", Active: "true"},
		{Source: "unfi_west", RawStoreID: "RIDGEFIELD", MappedStoreName: "KL - Richmond", StoreType: "warehouse", Active: "true"},
	}
	storeResult := store.BulkUpsertStoreMappings(stores)
	if storeResult.Errors > 0 {
		log.Fatalf("❌ Store seed rejected: %v", storeResult.ErrorDetails)
	}
	fmt.Printf("   %d added, %d updated\n", storeResult.Added, storeResult.Updated)

	// 3. Customer mappings
	fmt.Println("👥 Creating customer mappings...")
	customers := []mapping.CustomerRow{
		{Source: "unfi_east", RawCustomerID: "128 RCH", MappedCustomerName: "UNFI EAST RICHBURG", Active: "true"},
		{Source: "unfi_east", RawCustomerID: "204 HOW", MappedCustomerName: "UNFI EAST HOWELL", Active: "true"},
		{Source: "kehe", RawCustomerID: "DC-12", MappedCustomerName: "KeHE Distribution Center 12", Active: "true"},
	}
	customerResult := store.BulkUpsertCustomerMappings(customers)
	if customerResult.Errors > 0 {
		log.Fatalf("❌ Customer seed rejected: %v", customerResult.ErrorDetails)
	}
	fmt.Printf("   %d added, %d updated\n", customerResult.Added, customerResult.Updated)

	fmt.Println()
	fmt.Println("✅ Demo data seeded")
}
