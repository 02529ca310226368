package shared

// Filter holds paging, ordering and search options for list queries.
// Repositories only order by whitelisted columns.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter is page 1 of 50, ordered by name
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: 50, OrderBy: "name", OrderDir: "asc"}
}

// Offset returns the row offset for the filter's page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
