package pagination

import (
	apperrors "github.com/angelmondragon/dealerstock-backend/pkg/errors"
)

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 10
	// MaxPageSize caps how many rows any listing query can request.
	MaxPageSize = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Meta summarizes a paginated result for response envelopes.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int64 `json:"total_pages"`
}

// Normalize applies defaults and rejects out-of-range values.
func Normalize(p Params) (Params, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Page < 1 {
		return Params{}, apperrors.New(apperrors.CodeValidation, "page must be at least 1")
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return Params{}, apperrors.New(apperrors.CodeValidation, "page_size must be between 1 and %d", MaxPageSize)
	}
	return p, nil
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// MetaFor computes the page summary. TotalPages is at least 1 so clients
// always have a stable upper bound.
func MetaFor(p Params, totalItems int64) Meta {
	pages := totalItems / int64(p.PageSize)
	if totalItems%int64(p.PageSize) != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return Meta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: totalItems,
		TotalPages: pages,
	}
}
