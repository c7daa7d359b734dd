package handlers

import (
	"net/http"
	"strings"

	"github.com/giygas/minsan-api/logging"
	"github.com/giygas/minsan-api/minsan"
	"github.com/go-chi/chi/v5"
)

// otherCode addresses the Other category in URLs, since it has no digit
const otherCode = "other"

// CategoryResponse is one category with its product count in the current catalog
type CategoryResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// CategoriesResponse lists the table followed by Other
type CategoriesResponse struct {
	Categories    []CategoryResponse `json:"categories"`
	TotalProducts int                `json:"totalProducts"`
}

// ClassifyResponse is the result of classifying one code
type ClassifyResponse struct {
	Code        string `json:"code"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Known       bool   `json:"known"`
}

func (h *HTTPHandlerImpl) categoryResponse(c minsan.Category, counts map[string]int) CategoryResponse {
	return CategoryResponse{
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		Count:       counts[c.Name],
	}
}

// ServeCategories lists every category with its count. With ?name= it looks
// up a single category by exact name instead.
func (h *HTTPHandlerImpl) ServeCategories(w http.ResponseWriter, r *http.Request) {
	counts := h.dataStore.GetCategoryCounts()

	if r.URL.Query().Has("name") {
		name := r.URL.Query().Get("name")
		if !minsan.IsKnown(name) {
			logging.Warn("Unknown category name", "name", name)
			h.RespondWithError(w, http.StatusNotFound, "Category not found")
			return
		}

		category := minsan.Category{Name: name, Description: minsan.Describe(name)}
		category.Code, _ = minsan.CodeFor(name)
		h.respondCached(w, r, h.categoryResponse(category, counts))
		return
	}

	table := minsan.Categories()
	response := CategoriesResponse{
		Categories:    make([]CategoryResponse, 0, len(table)+1),
		TotalProducts: len(h.dataStore.GetProducts()),
	}
	for _, c := range table {
		response.Categories = append(response.Categories, h.categoryResponse(c, counts))
	}
	response.Categories = append(response.Categories, h.categoryResponse(minsan.Category{Name: minsan.Other}, counts))

	h.respondCached(w, r, response)
}

// ServeCategory returns one category by its digit, or "other"
func (h *HTTPHandlerImpl) ServeCategory(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var category minsan.Category
	if strings.EqualFold(code, otherCode) {
		category = minsan.Category{Name: minsan.Other}
	} else {
		c, ok := minsan.Lookup(code)
		if !ok {
			logging.Warn("Unusual user input", "category_code", code)
			h.RespondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		category = c
	}

	h.respondCached(w, r, h.categoryResponse(category, h.dataStore.GetCategoryCounts()))
}

// ClassifyCode returns the category of a MINSAN code, whether or not the
// product is in the catalog
func (h *HTTPHandlerImpl) ClassifyCode(w http.ResponseWriter, r *http.Request) {
	input := chi.URLParam(r, "code")

	code, err := h.validator.ValidateMinsan(input)
	if err != nil {
		logging.Warn("Unusual user input", "minsan", input)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	category := minsan.Classify(code)
	h.RespondWithJSON(w, http.StatusOK, ClassifyResponse{
		Code:        code,
		Category:    category,
		Description: minsan.Describe(category),
		Known:       category != minsan.Other,
	})
}
