package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "ASC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "DESC" {
		return "DESC"
	}
	return "ASC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"sku":               true,
	"name":              true,
	"category":          true,
	"base_price":        true,
	"current_price":     true,
	"cost_price":        true,
	"inventory":         true,
	"sales_last30_days": true,
	"average_rating":    true,
}

// SaleSortFields contains allowed sort fields for sales records
var SaleSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"product_id": true,
	"date":       true,
	"units_sold": true,
	"price":      true,
	"revenue":    true,
}

// PriceChangeSortFields contains allowed sort fields for pricing history
var PriceChangeSortFields = map[string]bool{
	"id":              true,
	"product_id":      true,
	"old_price":       true,
	"new_price":       true,
	"adjustment_type": true,
	"timestamp":       true,
}
