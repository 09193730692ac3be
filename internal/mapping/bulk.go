package mapping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/idi-foods/xorobridge/internal/models"
	"github.com/idi-foods/xorobridge/internal/normalize"
	"gorm.io/gorm"
)

// maxErrorDetails caps the human-readable error list returned to callers;
// the full error count is always reported.
const maxErrorDetails = 10

// errBatchRejected aborts the surrounding transaction when any row fails
// validation or conflict detection. All-or-nothing: a partially-bad import
// file never leaves the mapping tables in an intermediate state.
var errBatchRejected = errors.New("batch rejected")

// BulkResult is the structured outcome of a bulk upsert. Bulk upserts do not
// raise on bad rows; callers inspect the result.
type BulkResult struct {
	BatchID      string   `json:"batchId"`
	Added        int      `json:"added"`
	Updated      int      `json:"updated"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"errorDetails,omitempty"`
}

func newBulkResult() *BulkResult {
	return &BulkResult{BatchID: uuid.New().String()}
}

func (r *BulkResult) addError(format string, args ...interface{}) {
	r.Errors++
	r.ErrorDetails = append(r.ErrorDetails, fmt.Sprintf(format, args...))
}

// capDetails trims the detail list for display, appending a "+N more" marker.
func (r *BulkResult) capDetails() {
	if len(r.ErrorDetails) > maxErrorDetails {
		extra := len(r.ErrorDetails) - maxErrorDetails
		r.ErrorDetails = append(r.ErrorDetails[:maxErrorDetails], fmt.Sprintf("+%d more", extra))
	}
}

// ItemRow is one candidate item mapping row as it arrives from a flat file
// or the admin API. All fields are strings; the validator owns parsing.
type ItemRow struct {
	Source            string `json:"source"`
	KeyType           string `json:"keyType"`
	RawItem           string `json:"rawItem"`
	MappedItem        string `json:"mappedItem"`
	Priority          string `json:"priority"`
	Active            string `json:"active"`
	Vendor            string `json:"vendor"`
	MappedDescription string `json:"mappedDescription"`
	Notes             string `json:"notes"`
}

// StoreRow is one candidate store mapping row.
type StoreRow struct {
	Source          string `json:"source"`
	RawStoreID      string `json:"rawStoreId"`
	MappedStoreName string `json:"mappedStoreName"`
	StoreType       string `json:"storeType"`
	Priority        string `json:"priority"`
	Active          string `json:"active"`
	Notes           string `json:"notes"`
}

// CustomerRow is one candidate customer mapping row.
type CustomerRow struct {
	Source             string `json:"source"`
	RawCustomerID      string `json:"rawCustomerId"`
	MappedCustomerName string `json:"mappedCustomerName"`
	CustomerType       string `json:"customerType"`
	Priority           string `json:"priority"`
	Active             string `json:"active"`
	Notes              string `json:"notes"`
}

// parsePriority parses the priority column. An empty cell takes the default;
// anything else must be an integer. A parse failure is a row-level error, not
// a silent default, so a corrupt column cannot scramble priority semantics.
func parsePriority(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 100, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid priority value %q", s)
	}
	return n, nil
}

// parseActive parses the active column; an empty cell defaults to true.
func parseActive(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	return normalize.ParseBool(s)
}

// bulkRow is a validated row reduced to what the shared conflict/apply engine
// needs, independent of mapping kind.
type bulkRow struct {
	index  int
	key    string
	source string
	active bool

	findActive func(tx *gorm.DB) (uint, bool, error)
	findTarget func(tx *gorm.DB) (uint, bool, error)
	apply      func(tx *gorm.DB, targetID uint, exists bool) error
	created    *bool
}

// runBulk executes conflict detection and application for validated rows
// inside a single transaction. Phase 1 errors are already recorded in result;
// any error at all rolls the whole batch back.
func (s *Store) runBulk(result *BulkResult, rows []bulkRow) {
	defer result.capDetails()

	applied := 0
	updated := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// In-batch duplicate active keys: first member wins, the rest error.
		seen := make(map[string]int)
		survivors := rows[:0]
		for _, row := range rows {
			if row.active {
				if first, dup := seen[row.key]; dup {
					result.addError("Row %d: duplicate active mapping for (%s), first defined at row %d",
						row.index, row.key, first)
					continue
				}
				seen[row.key] = row.index
			}
			survivors = append(survivors, row)
		}

		// Cross-check surviving active rows against existing storage. A
		// conflict is an active entry the upsert would not itself update.
		for _, row := range survivors {
			if !row.active {
				continue
			}
			activeID, hasActive, err := row.findActive(tx)
			if err != nil {
				return fmt.Errorf("conflict check failed: %w", err)
			}
			if !hasActive {
				continue
			}
			targetID, hasTarget, err := row.findTarget(tx)
			if err != nil {
				return fmt.Errorf("conflict check failed: %w", err)
			}
			if !hasTarget || targetID != activeID {
				result.addError("Row %d: active mapping already exists for (%s)", row.index, row.key)
			}
		}

		if result.Errors > 0 {
			return errBatchRejected
		}

		for _, row := range survivors {
			targetID, exists, err := row.findTarget(tx)
			if err != nil {
				return fmt.Errorf("row %d: lookup failed: %w", row.index, err)
			}
			if err := row.apply(tx, targetID, exists); err != nil {
				return fmt.Errorf("row %d: apply failed: %w", row.index, err)
			}
			if exists {
				updated++
			} else {
				applied++
			}
		}
		return nil
	})

	if err != nil {
		if !errors.Is(err, errBatchRejected) {
			result.addError("database transaction error: %v", err)
		}
		return
	}

	result.Added = applied
	result.Updated = updated
}

// BulkUpsertItemMappings validates and applies a batch of item mapping rows
// atomically. Any invalid or conflicting row rejects the entire batch.
func (s *Store) BulkUpsertItemMappings(rows []ItemRow) *BulkResult {
	result := newBulkResult()
	validated := make([]bulkRow, 0, len(rows))
	sources := make(map[string]struct{})

	for idx, raw := range rows {
		rowNum := idx + 1
		source := normalize.CanonicalizeSource(raw.Source)
		rawItem := strings.TrimSpace(raw.RawItem)
		mappedItem := strings.TrimSpace(raw.MappedItem)
		keyType := string(normalize.NormalizeKeyType(raw.KeyType))

		if source == "" || rawItem == "" {
			result.addError("Row %d: missing source or raw_item", rowNum)
			continue
		}
		if mappedItem == "" {
			result.addError("Row %d: missing mapped_item", rowNum)
			continue
		}
		priority, err := parsePriority(raw.Priority)
		if err != nil {
			result.addError("Row %d: %v", rowNum, err)
			continue
		}
		active := parseActive(raw.Active)

		entry := models.ItemMapping{
			Source:            source,
			KeyType:           keyType,
			RawItem:           rawItem,
			MappedItem:        mappedItem,
			Priority:          priority,
			Active:            active,
			Vendor:            strings.TrimSpace(raw.Vendor),
			MappedDescription: strings.TrimSpace(raw.MappedDescription),
			Notes:             strings.TrimSpace(raw.Notes),
		}
		sources[source] = struct{}{}

		validated = append(validated, bulkRow{
			index:  rowNum,
			key:    fmt.Sprintf("%s, %s, %s", source, keyType, rawItem),
			source: source,
			active: active,
			findActive: func(tx *gorm.DB) (uint, bool, error) {
				return findID(tx.Model(&models.ItemMapping{}).
					Where("source = ? AND key_type = ? AND raw_item = ? AND active = ?",
						entry.Source, entry.KeyType, entry.RawItem, true))
			},
			findTarget: func(tx *gorm.DB) (uint, bool, error) {
				return findID(tx.Model(&models.ItemMapping{}).
					Where("source = ? AND raw_item = ? AND key_type = ?",
						entry.Source, entry.RawItem, entry.KeyType))
			},
			apply: func(tx *gorm.DB, targetID uint, exists bool) error {
				if exists {
					return tx.Model(&models.ItemMapping{}).Where("id = ?", targetID).
						Updates(map[string]interface{}{
							"mapped_item":        entry.MappedItem,
							"priority":           entry.Priority,
							"active":             entry.Active,
							"vendor":             entry.Vendor,
							"mapped_description": entry.MappedDescription,
							"notes":              entry.Notes,
							"updated_at":         time.Now().UTC(),
						}).Error
				}
				m := entry
				return tx.Create(&m).Error
			},
		})
	}

	s.runBulk(result, validated)
	if result.Errors == 0 {
		for source := range sources {
			s.cache.Invalidate(source)
		}
	}
	return result
}

// BulkUpsertStoreMappings validates and applies a batch of store mapping rows
// atomically, keyed by (source, raw_store_id).
func (s *Store) BulkUpsertStoreMappings(rows []StoreRow) *BulkResult {
	result := newBulkResult()
	validated := make([]bulkRow, 0, len(rows))
	sources := make(map[string]struct{})

	for idx, raw := range rows {
		rowNum := idx + 1
		source := normalize.CanonicalizeSource(raw.Source)
		rawID := strings.TrimSpace(raw.RawStoreID)
		mappedName := strings.TrimSpace(raw.MappedStoreName)

		if source == "" || rawID == "" {
			result.addError("Row %d: missing source or raw_store_id", rowNum)
			continue
		}
		if mappedName == "" {
			result.addError("Row %d: missing mapped_store_name", rowNum)
			continue
		}
		priority, err := parsePriority(raw.Priority)
		if err != nil {
			result.addError("Row %d: %v", rowNum, err)
			continue
		}

		entry := models.StoreMapping{
			Source:          source,
			RawStoreID:      rawID,
			MappedStoreName: mappedName,
			StoreType:       defaultString(raw.StoreType, "retail"),
			Priority:        priority,
			Active:          parseActive(raw.Active),
			Notes:           strings.TrimSpace(raw.Notes),
		}
		sources[source] = struct{}{}

		validated = append(validated, bulkRow{
			index:  rowNum,
			key:    fmt.Sprintf("%s, %s", source, rawID),
			source: source,
			active: entry.Active,
			findActive: func(tx *gorm.DB) (uint, bool, error) {
				return findID(tx.Model(&models.StoreMapping{}).
					Where("source = ? AND raw_store_id = ? AND active = ?", entry.Source, entry.RawStoreID, true))
			},
			findTarget: func(tx *gorm.DB) (uint, bool, error) {
				return findID(tx.Model(&models.StoreMapping{}).
					Where("source = ? AND raw_store_id = ?", entry.Source, entry.RawStoreID))
			},
			apply: func(tx *gorm.DB, targetID uint, exists bool) error {
				if exists {
					return tx.Model(&models.StoreMapping{}).Where("id = ?", targetID).
						Updates(map[string]interface{}{
							"mapped_store_name": entry.MappedStoreName,
							"store_type":        entry.StoreType,
							"priority":          entry.Priority,
							"active":            entry.Active,
							"notes":             entry.Notes,
							"updated_at":        time.Now().UTC(),
						}).Error
				}
				m := entry
				return tx.Create(&m).Error
			},
		})
	}

	s.runBulk(result, validated)
	if result.Errors == 0 {
		for source := range sources {
			s.cache.Invalidate(source)
		}
	}
	return result
}

// BulkUpsertCustomerMappings validates and applies a batch of customer
// mapping rows atomically, keyed by (source, raw_customer_id).
func (s *Store) BulkUpsertCustomerMappings(rows []CustomerRow) *BulkResult {
	result := newBulkResult()
	validated := make([]bulkRow, 0, len(rows))
	sources := make(map[string]struct{})

	for idx, raw := range rows {
		rowNum := idx + 1
		source := normalize.CanonicalizeSource(raw.Source)
		rawID := strings.TrimSpace(raw.RawCustomerID)
		mappedName := strings.TrimSpace(raw.MappedCustomerName)

		if source == "" || rawID == "" {
			result.addError("Row %d: missing source or raw_customer_id", rowNum)
			continue
		}
		if mappedName == "" {
			result.addError("Row %d: missing mapped_customer_name", rowNum)
			continue
		}
		priority, err := parsePriority(raw.Priority)
		if err != nil {
			result.addError("Row %d: %v", rowNum, err)
			continue
		}

		entry := models.CustomerMapping{
			Source:             source,
			RawCustomerID:      rawID,
			MappedCustomerName: mappedName,
			CustomerType:       defaultString(raw.CustomerType, "store"),
			Priority:           priority,
			Active:             parseActive(raw.Active),
			Notes:              strings.TrimSpace(raw.Notes),
		}
		sources[source] = struct{}{}

		validated = append(validated, bulkRow{
			index:  rowNum,
			key:    fmt.Sprintf("%s, %s", source, rawID),
			source: source,
			active: entry.Active,
			findActive: func(tx *gorm.DB) (uint, bool, error) {
				return findID(tx.Model(&models.CustomerMapping{}).
					Where("source = ? AND raw_customer_id = ? AND active = ?", entry.Source, entry.RawCustomerID, true))
			},
			findTarget: func(tx *gorm.DB) (uint, bool, error) {
				return findID(tx.Model(&models.CustomerMapping{}).
					Where("source = ? AND raw_customer_id = ?", entry.Source, entry.RawCustomerID))
			},
			apply: func(tx *gorm.DB, targetID uint, exists bool) error {
				if exists {
					return tx.Model(&models.CustomerMapping{}).Where("id = ?", targetID).
						Updates(map[string]interface{}{
							"mapped_customer_name": entry.MappedCustomerName,
							"customer_type":        entry.CustomerType,
							"priority":             entry.Priority,
							"active":               entry.Active,
							"notes":                entry.Notes,
							"updated_at":           time.Now().UTC(),
						}).Error
				}
				m := entry
				return tx.Create(&m).Error
			},
		})
	}

	s.runBulk(result, validated)
	if result.Errors == 0 {
		for source := range sources {
			s.cache.Invalidate(source)
		}
	}
	return result
}

// findID returns the id of the first matching row in primary-key order.
func findID(query *gorm.DB) (uint, bool, error) {
	var ids []uint
	if err := query.Order("id ASC").Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

func defaultString(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}
