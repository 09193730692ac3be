package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/idi-foods/xorobridge/internal/config"
	"github.com/idi-foods/xorobridge/internal/database"
	"github.com/idi-foods/xorobridge/internal/handlers"
	"github.com/idi-foods/xorobridge/internal/mapping"
	"github.com/idi-foods/xorobridge/internal/models"
	"github.com/idi-foods/xorobridge/internal/orders"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.UserAuth{},
		&models.ItemMapping{},
		&models.StoreMapping{},
		&models.CustomerMapping{},
		&models.ProcessedOrder{},
		&models.OrderLineItem{},
		&models.ConversionHistory{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// Partial unique indexes behind the bulk upsert validator
	if err := db.EnsureMappingIndexes(); err != nil {
		log.Printf("⚠️ Index warning: %v\n", err)
	}

	// 4. Mapping store + resolver
	store := mapping.NewStore(db.DB, time.Duration(cfg.Resolver.CacheTTLSeconds)*time.Second)
	resolver := mapping.NewResolver(store, mapping.Options{
		AllowPartial: cfg.Resolver.AllowPartialMatch,
	})

	// Relocate legacy customer rows parked in store_mappings
	if moved, err := store.MigrateLegacyCustomerMappings(); err != nil {
		log.Printf("⚠️ Legacy customer migration failed: %v", err)
	} else if moved > 0 {
		log.Printf("✅ Relocated %d legacy customer mappings", moved)
	}

	orderSvc := orders.NewService(db.DB)

	// 5. Set up HTTP router
	router := handlers.NewRouter(db, store, resolver, orderSvc, cfg)

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
