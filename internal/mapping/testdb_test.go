package mapping

import (
	"testing"
	"time"

	"github.com/idi-foods/xorobridge/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an in-memory SQLite database with the mapping schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.ItemMapping{},
		&models.StoreMapping{},
		&models.CustomerMapping{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	return db
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(openTestDB(t), time.Minute)
}

func mustBulkItems(t *testing.T, s *Store, rows []ItemRow) *BulkResult {
	t.Helper()
	result := s.BulkUpsertItemMappings(rows)
	if result.Errors != 0 {
		t.Fatalf("Bulk upsert failed: %d errors: %v", result.Errors, result.ErrorDetails)
	}
	return result
}
