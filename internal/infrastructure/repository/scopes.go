package repository

import (
	"strings"
	"time"

	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"gorm.io/gorm"
)

// SearchScope matches term case-insensitively against any of columns.
// LOWER/LIKE keeps it portable across postgres and sqlite.
func SearchScope(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + strings.ToLower(term) + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where(strings.Join(clauses, " OR "), args...)
	}
}

// InStockScope keeps rows with stock left to sell
func InStockScope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("quantity > 0")
	}
}

// NotExpiredScope drops batches whose expiry date is before now. Rows without
// an expiry date are kept.
func NotExpiredScope(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expiry_date IS NULL OR expiry_date >= ?", now)
	}
}

// PaginateScope applies offset and limit from params
func PaginateScope(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}
