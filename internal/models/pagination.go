package models

import "fmt"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PageRequest is a validated page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest validates page (>= 1) and limit (1..MaxPageLimit).
func NewPageRequest(page, limit int) (PageRequest, error) {
	if page < 1 {
		return PageRequest{}, NewFieldValidationError("page", "Page must be a positive integer")
	}
	if limit < 1 || limit > MaxPageLimit {
		return PageRequest{}, NewFieldValidationError("limit", fmt.Sprintf("Limit must be between 1 and %d", MaxPageLimit))
	}
	return PageRequest{Page: page, Limit: limit}, nil
}

// DefaultPage returns the first page with the default limit.
func DefaultPage() PageRequest {
	return PageRequest{Page: 1, Limit: DefaultPageLimit}
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageRef points at an adjacent page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination describes a page of results.
type Pagination struct {
	Total int64    `json:"total"`
	Page  int      `json:"page"`
	Pages int      `json:"pages"`
	Limit int      `json:"limit"`
	Next  *PageRef `json:"next,omitempty"`
	Prev  *PageRef `json:"prev,omitempty"`
}

// NewPagination computes pages = ceil(total/limit) and the adjacent page refs.
func NewPagination(req PageRequest, total int64) *Pagination {
	limit := int64(req.Limit)
	pages := int((total + limit - 1) / limit)

	p := &Pagination{
		Total: total,
		Page:  req.Page,
		Pages: pages,
		Limit: req.Limit,
	}
	if req.Page < pages {
		p.Next = &PageRef{Page: req.Page + 1, Limit: req.Limit}
	}
	if req.Page > 1 {
		p.Prev = &PageRef{Page: req.Page - 1, Limit: req.Limit}
	}
	return p
}
