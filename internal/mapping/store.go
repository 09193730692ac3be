package mapping

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/idi-foods/xorobridge/internal/models"
	"github.com/idi-foods/xorobridge/internal/normalize"
	"gorm.io/gorm"
)

// Store is the persistence boundary over the three mapping tables. It carries
// no business validation; invariant enforcement lives in the bulk upsert
// validator. Write paths invalidate the attached cache so resolvers never
// serve dictionaries older than the last import.
type Store struct {
	db    *gorm.DB
	cache *Cache
}

// NewStore creates a mapping store with a fresh cache.
func NewStore(db *gorm.DB, cacheTTL time.Duration) *Store {
	return &Store{
		db:    db,
		cache: NewCache(cacheTTL),
	}
}

// DB exposes the underlying handle for callers that compose transactions.
func (s *Store) DB() *gorm.DB { return s.db }

// Cache exposes the mapping cache shared with resolvers.
func (s *Store) Cache() *Cache { return s.cache }

// ItemFilter narrows ListItemMappings.
type ItemFilter struct {
	Source     string
	KeyType    normalize.KeyType
	ActiveOnly bool
	Search     string
}

// GetItemMapping returns the active (or any, when activeOnly is false) entry
// for the exact key tuple, preferring lower priority values. A miss returns
// (nil, nil); errors are storage failures only.
func (s *Store) GetItemMapping(source string, keyType normalize.KeyType, rawKey string, activeOnly bool) (*models.ItemMapping, error) {
	query := s.db.Where("source = ? AND key_type = ? AND raw_item = ?", source, string(keyType), rawKey)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var m models.ItemMapping
	err := query.Order("priority ASC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("item mapping lookup failed: %w", err)
	}
	return &m, nil
}

// ListItemMappings returns entries ordered by priority ascending, then
// created_at descending.
func (s *Store) ListItemMappings(f ItemFilter) ([]models.ItemMapping, error) {
	query := s.db.Model(&models.ItemMapping{})

	if f.Source != "" {
		query = query.Where("source = ?", f.Source)
	}
	if f.KeyType != "" {
		query = query.Where("key_type = ?", string(f.KeyType))
	}
	if f.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where(
			"LOWER(raw_item) LIKE ? OR LOWER(mapped_item) LIKE ? OR LOWER(vendor) LIKE ? OR LOWER(mapped_description) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var mappings []models.ItemMapping
	if err := query.Order("priority ASC, created_at DESC").Find(&mappings).Error; err != nil {
		return nil, fmt.Errorf("item mapping list failed: %w", err)
	}
	return mappings, nil
}

// UpsertItemMapping inserts or updates a single entry, matching on
// (source, raw_item, key_type). Updates preserve id and created_at.
func (s *Store) UpsertItemMapping(m *models.ItemMapping) error {
	defer s.cache.Invalidate(m.Source)

	var existing models.ItemMapping
	err := s.db.Where("source = ? AND raw_item = ? AND key_type = ?", m.Source, m.RawItem, m.KeyType).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(m).Error
	}
	if err != nil {
		return fmt.Errorf("item mapping upsert lookup failed: %w", err)
	}

	m.ID = existing.ID
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = time.Now().UTC()
	return s.db.Save(m).Error
}

// DeleteItemMappings permanently removes entries by id.
func (s *Store) DeleteItemMappings(ids []uint) (int64, error) {
	defer s.cache.InvalidateAll()
	result := s.db.Where("id IN ?", ids).Delete(&models.ItemMapping{})
	return result.RowsAffected, result.Error
}

// DeactivateItemMappings soft-deletes entries by id; rows stay for audit.
func (s *Store) DeactivateItemMappings(ids []uint) (int64, error) {
	defer s.cache.InvalidateAll()
	result := s.db.Model(&models.ItemMapping{}).Where("id IN ?", ids).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

// NameFilter narrows store/customer mapping listings.
type NameFilter struct {
	Source     string
	ActiveOnly bool
	Search     string
}

// GetStoreMapping returns the entry for the exact (source, raw_store_id)
// pair, preferring lower priority values. Legacy customer-tagged rows are
// excluded; a miss returns (nil, nil).
func (s *Store) GetStoreMapping(source, rawStoreID string, activeOnly bool) (*models.StoreMapping, error) {
	query := s.db.Where("source = ? AND raw_store_id = ? AND store_type <> ?", source, rawStoreID, legacyCustomerStoreType)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var m models.StoreMapping
	err := query.Order("priority ASC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store mapping lookup failed: %w", err)
	}
	return &m, nil
}

// GetCustomerMapping returns the entry for the exact (source, raw_customer_id)
// pair, preferring lower priority values. A miss returns (nil, nil).
func (s *Store) GetCustomerMapping(source, rawCustomerID string, activeOnly bool) (*models.CustomerMapping, error) {
	query := s.db.Where("source = ? AND raw_customer_id = ?", source, rawCustomerID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var m models.CustomerMapping
	err := query.Order("priority ASC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("customer mapping lookup failed: %w", err)
	}
	return &m, nil
}

// ListStoreMappings returns store entries ordered like item mappings.
func (s *Store) ListStoreMappings(f NameFilter) ([]models.StoreMapping, error) {
	query := s.db.Model(&models.StoreMapping{})
	if f.Source != "" {
		query = query.Where("source = ?", f.Source)
	}
	if f.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(raw_store_id) LIKE ? OR LOWER(mapped_store_name) LIKE ?", pattern, pattern)
	}

	var mappings []models.StoreMapping
	if err := query.Order("priority ASC, created_at DESC").Find(&mappings).Error; err != nil {
		return nil, fmt.Errorf("store mapping list failed: %w", err)
	}
	return mappings, nil
}

// ListCustomerMappings returns customer entries ordered like item mappings.
func (s *Store) ListCustomerMappings(f NameFilter) ([]models.CustomerMapping, error) {
	query := s.db.Model(&models.CustomerMapping{})
	if f.Source != "" {
		query = query.Where("source = ?", f.Source)
	}
	if f.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(raw_customer_id) LIKE ? OR LOWER(mapped_customer_name) LIKE ?", pattern, pattern)
	}

	var mappings []models.CustomerMapping
	if err := query.Order("priority ASC, created_at DESC").Find(&mappings).Error; err != nil {
		return nil, fmt.Errorf("customer mapping list failed: %w", err)
	}
	return mappings, nil
}

// UpsertStoreMapping inserts or updates a store entry by (source, raw_store_id).
func (s *Store) UpsertStoreMapping(m *models.StoreMapping) error {
	defer s.cache.Invalidate(m.Source)

	var existing models.StoreMapping
	err := s.db.Where("source = ? AND raw_store_id = ?", m.Source, m.RawStoreID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(m).Error
	}
	if err != nil {
		return fmt.Errorf("store mapping upsert lookup failed: %w", err)
	}

	m.ID = existing.ID
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = time.Now().UTC()
	return s.db.Save(m).Error
}

// UpsertCustomerMapping inserts or updates a customer entry by
// (source, raw_customer_id).
func (s *Store) UpsertCustomerMapping(m *models.CustomerMapping) error {
	defer s.cache.Invalidate(m.Source)

	var existing models.CustomerMapping
	err := s.db.Where("source = ? AND raw_customer_id = ?", m.Source, m.RawCustomerID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(m).Error
	}
	if err != nil {
		return fmt.Errorf("customer mapping upsert lookup failed: %w", err)
	}

	m.ID = existing.ID
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = time.Now().UTC()
	return s.db.Save(m).Error
}

// DeleteStoreMappings permanently removes store entries by id.
func (s *Store) DeleteStoreMappings(ids []uint) (int64, error) {
	defer s.cache.InvalidateAll()
	result := s.db.Where("id IN ?", ids).Delete(&models.StoreMapping{})
	return result.RowsAffected, result.Error
}

// DeleteCustomerMappings permanently removes customer entries by id.
func (s *Store) DeleteCustomerMappings(ids []uint) (int64, error) {
	defer s.cache.InvalidateAll()
	result := s.db.Where("id IN ?", ids).Delete(&models.CustomerMapping{})
	return result.RowsAffected, result.Error
}

// DeactivateStoreMappings soft-deletes store entries by id.
func (s *Store) DeactivateStoreMappings(ids []uint) (int64, error) {
	defer s.cache.InvalidateAll()
	result := s.db.Model(&models.StoreMapping{}).Where("id IN ?", ids).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

// DeactivateCustomerMappings soft-deletes customer entries by id.
func (s *Store) DeactivateCustomerMappings(ids []uint) (int64, error) {
	defer s.cache.InvalidateAll()
	result := s.db.Model(&models.CustomerMapping{}).Where("id IN ?", ids).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

// storeDictionary loads active raw→mapped store names for a source, excluding
// legacy customer-tagged rows.
func (s *Store) storeDictionary(source string) (map[string]string, error) {
	var mappings []models.StoreMapping
	err := s.db.Where("source = ? AND active = ? AND store_type <> ?", source, true, legacyCustomerStoreType).
		Order("priority ASC").Find(&mappings).Error
	if err != nil {
		return nil, fmt.Errorf("store dictionary load failed: %w", err)
	}

	dict := make(map[string]string, len(mappings))
	for _, m := range mappings {
		key := strings.TrimSpace(m.RawStoreID)
		if _, exists := dict[key]; !exists {
			dict[key] = m.MappedStoreName
		}
	}
	return dict, nil
}

// customerDictionary loads active raw→mapped customer names for a source.
func (s *Store) customerDictionary(source string) (map[string]string, error) {
	var mappings []models.CustomerMapping
	err := s.db.Where("source = ? AND active = ?", source, true).
		Order("priority ASC").Find(&mappings).Error
	if err != nil {
		return nil, fmt.Errorf("customer dictionary load failed: %w", err)
	}

	dict := make(map[string]string, len(mappings))
	for _, m := range mappings {
		key := strings.TrimSpace(m.RawCustomerID)
		if _, exists := dict[key]; !exists {
			dict[key] = m.MappedCustomerName
		}
	}
	return dict, nil
}
