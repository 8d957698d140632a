package persistence

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/storesync/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// orderClause builds a safe ORDER BY clause from a filter. Column names
// are validated against a strict identifier pattern because they end up
// in raw SQL.
func orderClause(filter shared.Filter) string {
	column := filter.OrderBy
	if column == "" || !identPattern.MatchString(column) {
		column = "created_at"
	}
	dir := strings.ToLower(filter.OrderDir)
	if dir != "asc" && dir != "desc" {
		dir = "desc"
	}
	return fmt.Sprintf("%s %s", column, dir)
}

// applyFilter applies pagination and ordering to a query
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = query.Order(orderClause(filter))

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}
