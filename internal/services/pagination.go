package services

import (
	"fmt"
	"slices"
)

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalCount  int64 `json:"total_count"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// PagePolicy decides how requested page numbers and sizes are interpreted.
type PagePolicy struct {
	DefaultSize int
	MaxSize     int
	// AllowedSizes, when set, is the only accepted set of sizes; anything
	// else falls back to DefaultSize.
	AllowedSizes []int
	// Clamp snaps invalid or out-of-range pages to the first or last page.
	// Without it such pages are ErrNotFound.
	Clamp bool
}

var (
	// ListingPages serves the catalog listing.
	ListingPages = PagePolicy{DefaultSize: 12, AllowedSizes: []int{6, 12, 24}, Clamp: true}
	// APIPages serves JSON collection endpoints.
	APIPages = PagePolicy{DefaultSize: 10, MaxSize: 100}
)

func (p PagePolicy) size(requested int) int {
	if len(p.AllowedSizes) > 0 {
		if slices.Contains(p.AllowedSizes, requested) {
			return requested
		}
		return p.DefaultSize
	}
	if requested <= 0 {
		return p.DefaultSize
	}
	if p.MaxSize > 0 && requested > p.MaxSize {
		return p.MaxSize
	}
	return requested
}

// page resolves the requested page number; 0 means "not given".
func (p PagePolicy) page(requested int) (int, error) {
	switch {
	case requested == 0:
		return 1, nil
	case requested < 0 && p.Clamp:
		return 1, nil
	case requested < 0:
		return 0, fmt.Errorf("invalid page %d: %w", requested, ErrNotFound)
	}
	return requested, nil
}

func lastPage(total int64, size int) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// fetchPage loads the requested page through fetch, applying the policy.
func fetchPage[T any](policy PagePolicy, page, size int, fetch func(limit, offset int) ([]T, int64, error)) (*Page[T], error) {
	size = policy.size(size)
	page, err := policy.page(page)
	if err != nil {
		return nil, err
	}

	items, total, err := fetch(size, (page-1)*size)
	if err != nil {
		return nil, err
	}

	if last := lastPage(total, size); page > last {
		if !policy.Clamp {
			return nil, fmt.Errorf("page %d of %d: %w", page, last, ErrNotFound)
		}
		page = last
		if items, total, err = fetch(size, (page-1)*size); err != nil {
			return nil, err
		}
	}

	totalPages := lastPage(total, size)
	return &Page[T]{
		Items:       items,
		Page:        page,
		PageSize:    size,
		TotalCount:  total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}, nil
}
