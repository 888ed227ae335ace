package params

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 8
	MaxLimit     = 30
)

var ErrInvalidPage = errors.New("page and page size must be positive")

// URL: /products?page=2&limit=8
// → ParsePagination() → Pagination{Limit:8, Page:2, Offset:8}
// → repository requests rows [8, 15] ordered by title
// → ComputeMeta(total) fills TotalPages, HasNext, HasPrev
// Pagination holds pagination info and computed metadata.
type Pagination struct {
	Limit      int  `json:"limit"`  // items per page
	Offset     int  `json:"offset"` // first row of the window
	Page       int  `json:"page"`   // 1-based
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// New builds a Pagination for a 1-based page. Non-positive values are a
// caller error.
func New(page, limit int) (Pagination, error) {
	if page <= 0 || limit <= 0 {
		return Pagination{}, ErrInvalidPage
	}
	return Pagination{Limit: limit, Page: page, Offset: (page - 1) * limit}, nil
}

// ParsePagination parses ?limit=...&page=... safely. Keys are case sensitive.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{
		Limit: DefaultLimit,
		Page:  1,
	}

	if limitStr := strings.TrimSpace(q.Get("limit")); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			switch {
			case limit <= 0:
				p.Limit = DefaultLimit
			case limit > MaxLimit:
				p.Limit = MaxLimit
			default:
				p.Limit = limit
			}
		}
	}

	if pageStr := strings.TrimSpace(q.Get("page")); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			p.Page = page
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// Window returns the inclusive row range [from, to] of the page.
func (p Pagination) Window() (from, to int) {
	return p.Offset, p.Offset + p.Limit - 1
}

// ComputeMeta updates pagination after fetching total count.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = (p.Page * p.Limit) < total
}
