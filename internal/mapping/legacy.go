package mapping

import (
	"fmt"
	"log"
	"strings"

	"github.com/idi-foods/xorobridge/internal/models"
	"github.com/idi-foods/xorobridge/internal/normalize"
	"gorm.io/gorm"
)

// legacyCustomerStoreType tags store rows that are really customer mappings.
// Early import scripts filed customer mappings into store_mappings under this
// tag; the sweep below relocates them.
const legacyCustomerStoreType = "customer"

// MigrateLegacyCustomerMappings moves store rows tagged store_type='customer'
// into customer_mappings, de-duplicating by (canonical source, raw id), and
// deletes the legacy rows. Idempotent: a second run finds nothing. It runs
// lazily before the first customer resolution because old import scripts can
// reintroduce legacy rows at any time.
func (s *Store) MigrateLegacyCustomerMappings() (int, error) {
	var legacy []models.StoreMapping
	if err := s.db.Where("store_type = ?", legacyCustomerStoreType).Find(&legacy).Error; err != nil {
		return 0, fmt.Errorf("legacy customer scan failed: %w", err)
	}
	if len(legacy) == 0 {
		return 0, nil
	}

	migrated := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range legacy {
			source := normalize.CanonicalizeSource(row.Source)
			rawID := strings.TrimSpace(row.RawStoreID)
			if rawID == "" {
				// Nothing to key the customer row by; just drop the misfiled row.
				if err := tx.Delete(&models.StoreMapping{}, row.ID).Error; err != nil {
					return err
				}
				continue
			}

			var count int64
			if err := tx.Model(&models.CustomerMapping{}).
				Where("source = ? AND raw_customer_id = ?", source, rawID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				customer := models.CustomerMapping{
					Source:             source,
					RawCustomerID:      rawID,
					MappedCustomerName: row.MappedStoreName,
					CustomerType:       "store",
					Priority:           row.Priority,
					Active:             row.Active,
					Notes:              row.Notes,
				}
				if err := tx.Create(&customer).Error; err != nil {
					return err
				}
				migrated++
			}
			if err := tx.Delete(&models.StoreMapping{}, row.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("legacy customer migration failed: %w", err)
	}

	s.cache.InvalidateAll()
	log.Printf("🧹 Relocated %d legacy customer mapping(s) out of store_mappings (%d scanned)",
		migrated, len(legacy))
	return migrated, nil
}
