package catalog

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Chip keys, in the order chips are rendered.
const (
	ChipSearch    = "search"
	ChipCategory  = "category"
	ChipMinPrice  = "min_price"
	ChipMaxPrice  = "max_price"
	ChipAvailable = "available"
)

// Filter is the set of constraints a client applies to the product list.
// The zero value matches every product.
type Filter struct {
	Search        string
	Categories    []string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	OnlyAvailable bool
}

// Chip is one active filter constraint, removable on its own.
type Chip struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// IsEmpty reports whether no constraint is active.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Search) == "" && len(f.Categories) == 0 &&
		f.MinPrice == nil && f.MaxPrice == nil && !f.OnlyAvailable
}

// Matches reports whether a single product satisfies every constraint.
func (f Filter) Matches(p Product) bool {
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		if !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) &&
			!strings.Contains(p.Minsan, search) {
			return false
		}
	}

	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category()) {
		return false
	}

	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}

	if f.OnlyAvailable && !p.Available {
		return false
	}

	return true
}

// Apply returns the products matching the filter, preserving order.
func (f Filter) Apply(products []Product) []Product {
	if f.IsEmpty() {
		return products
	}

	results := make([]Product, 0)
	for _, p := range products {
		if f.Matches(p) {
			results = append(results, p)
		}
	}
	return results
}

// Chips returns one chip per active constraint: search, categories in
// filter order, price bounds, then availability.
func (f Filter) Chips() []Chip {
	chips := make([]Chip, 0)

	if search := strings.TrimSpace(f.Search); search != "" {
		chips = append(chips, Chip{Key: ChipSearch, Label: "Search: " + search, Value: search})
	}

	for _, c := range f.Categories {
		chips = append(chips, Chip{Key: ChipCategory, Label: c, Value: c})
	}

	if f.MinPrice != nil {
		v := f.MinPrice.StringFixed(2)
		chips = append(chips, Chip{Key: ChipMinPrice, Label: "From €" + v, Value: v})
	}
	if f.MaxPrice != nil {
		v := f.MaxPrice.StringFixed(2)
		chips = append(chips, Chip{Key: ChipMaxPrice, Label: "Up to €" + v, Value: v})
	}

	if f.OnlyAvailable {
		chips = append(chips, Chip{Key: ChipAvailable, Label: "Available only", Value: "true"})
	}

	return chips
}

// Without returns a copy of the filter with the constraint behind one chip
// removed. Unknown keys leave the filter unchanged.
func (f Filter) Without(key, value string) Filter {
	out := f
	out.Categories = slices.Clone(f.Categories)

	switch key {
	case ChipSearch:
		out.Search = ""
	case ChipCategory:
		out.Categories = slices.DeleteFunc(out.Categories, func(c string) bool { return c == value })
		if len(out.Categories) == 0 {
			out.Categories = nil
		}
	case ChipMinPrice:
		out.MinPrice = nil
	case ChipMaxPrice:
		out.MaxPrice = nil
	case ChipAvailable:
		out.OnlyAvailable = false
	}

	return out
}
