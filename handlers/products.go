package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/giygas/minsan-api/catalog"
	"github.com/giygas/minsan-api/feed"
	"github.com/giygas/minsan-api/logging"
	"github.com/giygas/minsan-api/minsan"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Filter query parameters share the chip keys
const paramPage = "page"

// FilterChip is an active filter with the URL that drops it
type FilterChip struct {
	catalog.Chip
	Remove string `json:"remove"`
}

// ProductsResponse is one page of the filtered catalog
type ProductsResponse struct {
	catalog.Paged[catalog.ProductView]
	Filters             []FilterChip `json:"filters"`
	AvailableCategories []string     `json:"available_categories"`
}

// ServeProducts returns a filtered, paginated product listing
func (h *HTTPHandlerImpl) ServeProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter, err := h.parseFilter(query)
	if err != nil {
		logging.Warn("Unusual user input", "query", r.URL.RawQuery, "error", err)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page := 1
	if raw := query.Get(paramPage); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			logging.Warn("Unusual user input", "page", raw)
			h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
			return
		}
	}

	products := h.dataStore.GetProducts()
	matched := filter.Apply(products)

	paged, err := catalog.Paginate(catalog.Views(matched), page, h.pageSize)
	switch {
	case errors.Is(err, catalog.ErrInvalidPage):
		h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
		return
	case errors.Is(err, catalog.ErrPageNotFound):
		h.RespondWithError(w, http.StatusNotFound, "Page not found")
		return
	case err != nil:
		logging.Error("Failed to paginate products", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Offer every category the other constraints leave reachable.
	withoutCategories := filter
	withoutCategories.Categories = nil

	var available []string
	if withoutCategories.IsEmpty() {
		available = h.dataStore.GetAvailableCategories()
	} else {
		available = minsan.AvailableCategories(withoutCategories.Apply(products))
	}

	response := ProductsResponse{
		Paged:               paged,
		Filters:             h.filterChips(r.URL.Path, filter),
		AvailableCategories: available,
	}

	h.respondCached(w, r, response)
}

// FindProductByCode returns one product by MINSAN code
func (h *HTTPHandlerImpl) FindProductByCode(w http.ResponseWriter, r *http.Request) {
	input := chi.URLParam(r, "code")

	code, err := h.validator.ValidateMinsan(input)
	if err != nil {
		logging.Warn("Unusual user input", "minsan", input)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, exists := h.dataStore.GetProductsMap()[code]
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	h.respondCached(w, r, product.View())
}

// parseFilter reads the filter constraints from the query string
func (h *HTTPHandlerImpl) parseFilter(query url.Values) (catalog.Filter, error) {
	var filter catalog.Filter

	if search := strings.TrimSpace(query.Get(catalog.ChipSearch)); search != "" {
		if err := h.validator.ValidateInput(search); err != nil {
			return filter, err
		}
		filter.Search = search
	}

	for _, name := range query[catalog.ChipCategory] {
		if !minsan.IsKnown(name) {
			return filter, fmt.Errorf("unknown category: %s", name)
		}
		if !slices.Contains(filter.Categories, name) {
			filter.Categories = append(filter.Categories, name)
		}
	}

	var err error
	if filter.MinPrice, err = parsePriceParam(query, catalog.ChipMinPrice); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parsePriceParam(query, catalog.ChipMaxPrice); err != nil {
		return filter, err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return filter, fmt.Errorf("min_price cannot be greater than max_price")
	}

	if raw := query.Get(catalog.ChipAvailable); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid available value: %s", raw)
		}
		filter.OnlyAvailable = available
	}

	return filter, nil
}

func parsePriceParam(query url.Values, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil, nil
	}

	price, err := feed.ParsePrice(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %s", key, raw)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%s cannot be negative", key)
	}
	return &price, nil
}

// filterChips attaches to every chip the listing URL without that constraint
func (h *HTTPHandlerImpl) filterChips(path string, filter catalog.Filter) []FilterChip {
	chips := filter.Chips()
	out := make([]FilterChip, 0, len(chips))

	for _, chip := range chips {
		remove := path
		if encoded := filterQuery(filter.Without(chip.Key, chip.Value)).Encode(); encoded != "" {
			remove += "?" + encoded
		}
		out = append(out, FilterChip{Chip: chip, Remove: remove})
	}

	return out
}

// filterQuery is the inverse of parseFilter
func filterQuery(filter catalog.Filter) url.Values {
	values := url.Values{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		values.Set(catalog.ChipSearch, search)
	}
	for _, c := range filter.Categories {
		values.Add(catalog.ChipCategory, c)
	}
	if filter.MinPrice != nil {
		values.Set(catalog.ChipMinPrice, filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		values.Set(catalog.ChipMaxPrice, filter.MaxPrice.String())
	}
	if filter.OnlyAvailable {
		values.Set(catalog.ChipAvailable, "true")
	}

	return values
}
