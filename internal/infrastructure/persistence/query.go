package persistence

import (
	"errors"
	"strings"

	"github.com/spicemill/stockledger/internal/domain/shared"
	"gorm.io/gorm"
)

// applyPaging applies search, ordering and pagination. Only columns listed in
// sortable can be ordered by; anything else falls back to fallbackOrder.
func applyPaging(query *gorm.DB, filter shared.Filter, searchColumn string, sortable map[string]bool, fallbackOrder string) *gorm.DB {
	if filter.Search != "" && searchColumn != "" {
		query = query.Where("LOWER("+searchColumn+") LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	if column := ValidateSortField(filter.OrderBy, sortable); column != "" {
		query = query.Order(column + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order(fallbackOrder)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
