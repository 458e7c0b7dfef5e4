package persistence

import (
	"strings"

	"github.com/apparel/storefront/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a listing may be ordered by
type sortColumns map[string]struct{}

func columns(names ...string) sortColumns {
	s := make(sortColumns, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

var (
	productSortColumns = columns("created_at", "updated_at", "title", "real_price", "discount_price")
	orderSortColumns   = columns("created_at", "updated_at", "amount", "status", "payment_status", "payment_method")
)

// orderBy resolves the filter's ordering. Columns outside allowed fall back
// to created_at and anything but "asc" sorts descending.
func orderBy(f shared.Filter, allowed sortColumns) clause.OrderByColumn {
	col := strings.TrimSpace(f.OrderBy)
	if _, ok := allowed[col]; !ok {
		col = "created_at"
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: col},
		Desc:   !strings.EqualFold(strings.TrimSpace(f.OrderDir), "asc"),
	}
}

// page applies ordering and, when the filter names one, a page window.
// id breaks ties so pages never overlap.
func page(query *gorm.DB, f shared.Filter, allowed sortColumns) *gorm.DB {
	query = query.Order(orderBy(f, allowed)).Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	if f.Page > 0 && f.PageSize > 0 {
		query = query.Offset(f.Offset()).Limit(f.PageSize)
	}
	return query
}
