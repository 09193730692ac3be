package orders

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/idi-foods/xorobridge/internal/models"
	"github.com/idi-foods/xorobridge/internal/normalize"
	"github.com/idi-foods/xorobridge/internal/parsers"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service persists converted orders and the per-file conversion log.
type Service struct {
	db *gorm.DB
}

// NewService creates an order persistence service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// conversionSummary is the jsonb payload stored with each history record.
type conversionSummary struct {
	Orders    []string `json:"orders"`
	LineItems int      `json:"lineItems"`
}

// SaveProcessedOrders stores parsed records grouped into orders, plus one
// ConversionHistory row describing the run. A failed save still leaves a
// history record so the conversion log shows every attempted file.
func (s *Service) SaveProcessedOrders(records []parsers.Record, source, filename string) error {
	source = normalize.CanonicalizeSource(source)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Group line records by order number; files without order numbers
		// collapse into one order keyed by the filename.
		orderNumbers := make([]string, 0)
		grouped := make(map[string][]parsers.Record)
		for _, rec := range records {
			num := rec.OrderNumber
			if num == "" {
				num = filename
			}
			if _, seen := grouped[num]; !seen {
				orderNumbers = append(orderNumbers, num)
			}
			grouped[num] = append(grouped[num], rec)
		}

		summary, merr := json.Marshal(conversionSummary{
			Orders:    orderNumbers,
			LineItems: len(records),
		})
		if merr != nil {
			return fmt.Errorf("failed to build conversion summary: %w", merr)
		}

		history := models.ConversionHistory{
			Filename:       filename,
			Source:         source,
			OrdersCount:    len(grouped),
			LineItemsCount: len(records),
			Success:        true,
			Summary:        datatypes.JSON(summary),
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record conversion: %w", err)
		}

		for _, num := range orderNumbers {
			group := grouped[num]
			head := group[0]

			order := models.ProcessedOrder{
				OrderNumber:     num,
				Source:          source,
				CustomerName:    defaultUnknown(head.CustomerName),
				RawCustomerName: head.RawCustomerName,
				OrderDate:       parseDate(head.OrderDate),
				SourceFile:      filename,
			}
			if err := tx.Create(&order).Error; err != nil {
				return fmt.Errorf("failed to save order %s: %w", num, err)
			}

			for _, rec := range group {
				qty := int(rec.Quantity)
				if qty == 0 {
					qty = 1
				}
				line := models.OrderLineItem{
					OrderID:         order.ID,
					ItemNumber:      defaultUnknown(rec.ItemNumber),
					RawItemNumber:   rec.RawItemNumber,
					ItemDescription: rec.ItemDescription,
					Quantity:        qty,
					UnitPrice:       rec.UnitPrice,
					TotalPrice:      rec.TotalPrice,
				}
				if err := tx.Create(&line).Error; err != nil {
					return fmt.Errorf("failed to save line item for order %s: %w", num, err)
				}
			}
		}

		return nil
	})

	if err != nil {
		log.Printf("❌ Order save failed for %s: %v", filename, err)
		failure := models.ConversionHistory{
			Filename:     filename,
			Source:       source,
			Success:      false,
			ErrorMessage: err.Error(),
		}
		if herr := s.db.Create(&failure).Error; herr != nil {
			log.Printf("⚠️ Could not record failed conversion for %s: %v", filename, herr)
		}
		return err
	}

	log.Printf("✅ Saved %d line items from %s (%s)", len(records), filename, source)
	return nil
}

// ConversionHistory returns the most recent conversion runs.
func (s *Service) ConversionHistory(limit int) ([]models.ConversionHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var history []models.ConversionHistory
	err := s.db.Order("conversion_date DESC").Limit(limit).Find(&history).Error
	return history, err
}

// ProcessedOrders returns recent orders with their line items, optionally
// filtered by source.
func (s *Service) ProcessedOrders(source string, limit int) ([]models.ProcessedOrder, error) {
	if limit <= 0 {
		limit = 100
	}
	query := s.db.Preload("LineItems").Order("processed_at DESC").Limit(limit)
	if source != "" {
		query = query.Where("source = ?", normalize.CanonicalizeSource(source))
	}
	var orders []models.ProcessedOrder
	err := query.Find(&orders).Error
	return orders, err
}

var orderDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"01/02/06",
}

// parseDate tries the date formats seen across vendor exports; anything
// unparseable stores as NULL rather than failing the order.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, format := range orderDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return &t
		}
	}
	return nil
}

func defaultUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}
