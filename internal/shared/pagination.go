package shared

import (
	"math"
	"strconv"
)

const (
	// DefaultPage is used when the page parameter is absent or unusable.
	DefaultPage = 1
	// DefaultLimit is used when the limit parameter is absent or unusable.
	DefaultLimit = 10
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
)

// PageRequest holds resolved pagination input for a list query.
type PageRequest struct {
	Page  int
	Limit int
	Skip  int
}

// ResolvePage turns raw page/limit strings into bounded pagination parameters.
// Non-numeric, absent, or non-positive input falls back to the defaults so the
// derived skip can never be negative.
func ResolvePage(rawPage, rawLimit string) PageRequest {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page <= 0 {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(rawLimit)
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit, Skip: (page - 1) * limit}
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, limit, total int) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = DefaultPage
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
