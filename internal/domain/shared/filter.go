package shared

// Filter carries the paging, ordering and free-text search shared by the
// product and order listings. OrderBy is checked against a whitelist by
// each repository.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter lists the newest rows first, twenty per page
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: 20, OrderBy: "created_at", OrderDir: "desc"}
}

// Offset is the number of rows before Page. Pages start at 1.
func (f Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
