package models

// Pagination carries page metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NewPagination clamps page inputs to sane bounds.
func NewPagination(page, pageSize, totalCount int) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return &Pagination{Page: page, PageSize: pageSize, TotalCount: totalCount}
}

// Offset converts the pagination into a SQL offset.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}
