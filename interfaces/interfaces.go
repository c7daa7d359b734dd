// Package interfaces defines the core abstractions of the MINSAN catalog API
// so that storage, loading and validation can be swapped out in tests.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/minsan-api/catalog"
)

// DataQualityReport summarizes issues found in a freshly loaded catalog
type DataQualityReport struct {
	DuplicateCodes      []string       `json:"duplicateCodes"`
	InvalidProducts     int            `json:"invalidProducts"`
	NonStandardCodes    int            `json:"nonStandardCodes"` // codes that are not 9 digits
	UnavailableProducts int            `json:"unavailableProducts"`
	CategoryCounts      map[string]int `json:"categoryCounts"`
}

// DataStore is the thread-safe snapshot of the catalog, replaced atomically
// on every reload.
type DataStore interface {
	GetProducts() []catalog.Product
	GetProductsMap() map[string]catalog.Product
	GetCategoryCounts() map[string]int
	GetAvailableCategories() []string
	GetSnapshotID() string
	GetDataQualityReport() *DataQualityReport
	GetLastUpdated() time.Time
	GetServerStartTime() time.Time
	IsUpdating() bool

	UpdateData(products []catalog.Product, report *DataQualityReport)
	BeginUpdate() bool
	EndUpdate()
}

// FeedLoader fetches and parses the product feed.
type FeedLoader interface {
	Load(ctx context.Context) ([]catalog.Product, error)
}

// Scheduler manages automated catalog reloads.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler is the set of API endpoints.
type HTTPHandler interface {
	ServeCategories(w http.ResponseWriter, r *http.Request)
	ServeCategory(w http.ResponseWriter, r *http.Request)
	ClassifyCode(w http.ResponseWriter, r *http.Request)
	ServeProducts(w http.ResponseWriter, r *http.Request)
	FindProductByCode(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports service health from the data store state.
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// DataValidator validates user input and catalog data.
type DataValidator interface {
	ValidateInput(input string) error
	ValidateMinsan(input string) (string, error)
	ValidateProduct(p *catalog.Product) error
	ReportDataQuality(products []catalog.Product) *DataQualityReport
}
