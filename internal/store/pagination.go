package store

// Export history page sizes
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams selects one page of export runs (1-indexed)
type PaginationParams struct {
	Page     int
	PageSize int
}

// PaginationResult describes where a page sits in the full listing
type PaginationResult struct {
	Total       int64
	TotalPages  int
	CurrentPage int
	PageSize    int
	HasPrev     bool
	HasNext     bool
}

// NewPaginationParams clamps page to >= 1 and pageSize to [1, MaxPageSize],
// using DefaultPageSize when pageSize is not positive.
func NewPaginationParams(page, pageSize int) PaginationParams {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return PaginationParams{Page: page, PageSize: pageSize}
}

// Offset is the number of rows skipped before this page
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// CalculatePagination builds page metadata for total rows. A page past the
// end is reported as-is so callers see an empty page rather than the last one.
func CalculatePagination(total int64, p PaginationParams) PaginationResult {
	pageSize := int64(p.PageSize)
	totalPages := int((total + pageSize - 1) / pageSize)

	return PaginationResult{
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
		HasPrev:     p.Page > 1,
		HasNext:     p.Page < totalPages,
	}
}
