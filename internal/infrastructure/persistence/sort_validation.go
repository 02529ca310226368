package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC.
// Anything other than "desc" (any case) is ASC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "desc") {
		return "DESC"
	}
	return "ASC"
}

// ValidateSortField checks the sort field against a whitelist of columns.
// Returns "" if the input is empty or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return ""
}

// MaterialSortFields contains allowed sort fields for raw materials
var MaterialSortFields = map[string]bool{
	"created_at":    true,
	"code":          true,
	"name":          true,
	"category":      true,
	"current_stock": true,
}

// VendorSortFields contains allowed sort fields for vendors
var VendorSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"status":     true,
}

// PurchaseSortFields contains allowed sort fields for stock purchases
var PurchaseSortFields = map[string]bool{
	"created_at":    true,
	"purchase_date": true,
	"material_name": true,
	"vendor_name":   true,
	"total_amount":  true,
}

// TaskSortFields contains allowed sort fields for tasks
var TaskSortFields = map[string]bool{
	"created_at":    true,
	"task_no":       true,
	"date_assigned": true,
	"material_name": true,
	"status":        true,
}

// StaffSortFields contains allowed sort fields for staff
var StaffSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"staff_id":   true,
	"status":     true,
}
