package request

// CatalogFilterRequest represents catalog search parameters
type CatalogFilterRequest struct {
	Search         string `form:"search"`
	InStock        bool   `form:"in_stock"`
	LowStock       bool   `form:"low_stock"`
	IncludeExpired bool   `form:"include_expired"`
	Page           int    `form:"page"`
	PerPage        int    `form:"per_page"`
}
