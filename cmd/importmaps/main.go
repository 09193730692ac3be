package main

import (
	"flag"
	"log"
	"time"

	"github.com/idi-foods/xorobridge/internal/config"
	"github.com/idi-foods/xorobridge/internal/database"
	"github.com/idi-foods/xorobridge/internal/importer"
	"github.com/idi-foods/xorobridge/internal/mapping"
	"github.com/idi-foods/xorobridge/internal/models"
)

// importmaps loads a mapping file (.csv or .xlsx) into the mapping tables
// through the bulk upsert validator. The whole file is applied atomically; a
// single bad row prints the errors and leaves the tables untouched.
func main() {
	file := flag.String("file", "", "Path to the mapping file (.csv or .xlsx)")
	kind := flag.String("kind", "", "Mapping kind: items, stores or customers (default: detect from headers)")
	flag.Parse()

	if *file == "" {
		log.Fatal("Usage: importmaps -file <mappings.csv|mappings.xlsx> [-kind items|stores|customers]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(
		&models.ItemMapping{},
		&models.StoreMapping{},
		&models.CustomerMapping{},
	); err != nil {
		log.Printf("⚠️ Migration warning: %v", err)
	}
	if err := db.EnsureMappingIndexes(); err != nil {
		log.Printf("⚠️ Index warning: %v", err)
	}

	table, err := importer.ReadTable(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	fileKind := importer.Kind(*kind)
	if *kind == "" {
		fileKind, err = importer.DetectKind(table.Headers)
		if err != nil {
			log.Fatalf("Failed to detect mapping kind: %v", err)
		}
		log.Printf("📄 Detected %s file (%d rows)", fileKind, len(table.Records))
	}

	store := mapping.NewStore(db.DB, time.Duration(cfg.Resolver.CacheTTLSeconds)*time.Second)

	var result *mapping.BulkResult
	switch fileKind {
	case importer.KindItems:
		rows, rerr := importer.ItemRows(table)
		if rerr != nil {
			log.Fatalf("Failed to map columns: %v", rerr)
		}
		result = store.BulkUpsertItemMappings(rows)
	case importer.KindStores:
		rows, rerr := importer.StoreRows(table)
		if rerr != nil {
			log.Fatalf("Failed to map columns: %v", rerr)
		}
		result = store.BulkUpsertStoreMappings(rows)
	case importer.KindCustomers:
		rows, rerr := importer.CustomerRows(table)
		if rerr != nil {
			log.Fatalf("Failed to map columns: %v", rerr)
		}
		result = store.BulkUpsertCustomerMappings(rows)
	default:
		log.Fatalf("Unknown mapping kind %q", fileKind)
	}

	if result.Errors > 0 {
		log.Printf("❌ Import rejected: %d errors (batch %s)", result.Errors, result.BatchID)
		for _, detail := range result.ErrorDetails {
			log.Printf("   %s", detail)
		}
		return
	}

	log.Printf("✅ Import complete: %d added, %d updated (batch %s)", result.Added, result.Updated, result.BatchID)
}
