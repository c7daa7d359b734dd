// Package catalog holds the product entities served by the API together with
// the filtering and pagination applied to them.
package catalog

import (
	"github.com/giygas/minsan-api/minsan"
	"github.com/shopspring/decimal"
)

// Product is one catalog entry as read from the product feed.
type Product struct {
	Minsan    string          `json:"minsan"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Available bool            `json:"available"`
}

// MinsanCode implements minsan.Coded.
func (p Product) MinsanCode() string {
	return p.Minsan
}

// Category returns the MINSAN category name of the product.
func (p Product) Category() string {
	return minsan.Classify(p.Minsan)
}

// AveragePrice is the unit price multiplied by the quantity.
func (p Product) AveragePrice() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// ProductView is the JSON shape returned by the API, with derived fields.
type ProductView struct {
	Product
	Category     string `json:"category"`
	AveragePrice string `json:"averagePrice"`
}

// View builds the response representation of the product.
func (p Product) View() ProductView {
	return ProductView{
		Product:      p,
		Category:     p.Category(),
		AveragePrice: p.AveragePrice().StringFixed(2),
	}
}

// Views converts a list of products in order.
func Views(products []Product) []ProductView {
	views := make([]ProductView, len(products))
	for i := range products {
		views[i] = products[i].View()
	}
	return views
}
