package catalog

import (
	"errors"
)

var (
	ErrInvalidPage  = errors.New("invalid page number")
	ErrPageNotFound = errors.New("page not found")
)

// Paged is one page of a listing.
type Paged[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	MaxPage    int `json:"maxPage"`
}

// Paginate cuts items into pages of pageSize. The first page of an empty
// list is valid and empty; any page past the last one is ErrPageNotFound.
func Paginate[T any](items []T, page, pageSize int) (Paged[T], error) {
	if page < 1 || pageSize < 1 {
		return Paged[T]{}, ErrInvalidPage
	}

	totalItems := len(items)
	maxPage := (totalItems + pageSize - 1) / pageSize

	if totalItems == 0 && page == 1 {
		return Paged[T]{Data: []T{}, Page: 1, PageSize: pageSize}, nil
	}
	// Checked before multiplying so huge page numbers cannot overflow start.
	if page > maxPage {
		return Paged[T]{}, ErrPageNotFound
	}

	start := (page - 1) * pageSize

	end := min(start+pageSize, totalItems)

	return Paged[T]{
		Data:       items[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		MaxPage:    maxPage,
	}, nil
}
