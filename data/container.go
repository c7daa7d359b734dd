// Package data provides the atomically swapped catalog snapshot served by
// the API.
package data

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/giygas/minsan-api/catalog"
	"github.com/giygas/minsan-api/interfaces"
	"github.com/giygas/minsan-api/logging"
	"github.com/giygas/minsan-api/metrics"
	"github.com/giygas/minsan-api/minsan"
	"github.com/google/uuid"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// snapshot is everything derived from one feed load, swapped as a unit.
type snapshot struct {
	id             string
	products       []catalog.Product
	productsMap    map[string]catalog.Product
	categoryCounts map[string]int
	categories     []string
	report         *interfaces.DataQualityReport
	lastUpdated    time.Time
}

// DataContainer holds the current catalog snapshot for zero-downtime updates
type DataContainer struct {
	current         atomic.Pointer[snapshot]
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a container with an empty snapshot
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.current.Store(&snapshot{
		products:       make([]catalog.Product, 0),
		productsMap:    make(map[string]catalog.Product),
		categoryCounts: make(map[string]int),
		categories:     make([]string, 0),
		report:         &interfaces.DataQualityReport{CategoryCounts: map[string]int{}},
	})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

func (dc *DataContainer) load() *snapshot {
	if s := dc.current.Load(); s != nil {
		return s
	}
	logging.Warn("Catalog snapshot is missing")
	return &snapshot{
		productsMap:    map[string]catalog.Product{},
		categoryCounts: map[string]int{},
	}
}

// GetProducts returns the products in feed order
func (dc *DataContainer) GetProducts() []catalog.Product {
	return dc.load().products
}

// GetProductsMap returns products indexed by MINSAN code
func (dc *DataContainer) GetProductsMap() map[string]catalog.Product {
	return dc.load().productsMap
}

// GetCategoryCounts returns the number of products per category name
func (dc *DataContainer) GetCategoryCounts() map[string]int {
	return dc.load().categoryCounts
}

// GetAvailableCategories returns the sorted category names present in the catalog
func (dc *DataContainer) GetAvailableCategories() []string {
	return dc.load().categories
}

// GetSnapshotID identifies the current snapshot; empty before the first load
func (dc *DataContainer) GetSnapshotID() string {
	return dc.load().id
}

// GetDataQualityReport returns the report computed for the current snapshot
func (dc *DataContainer) GetDataQualityReport() *interfaces.DataQualityReport {
	return dc.load().report
}

// GetLastUpdated returns the time of the last successful update
func (dc *DataContainer) GetLastUpdated() time.Time {
	return dc.load().lastUpdated
}

// IsUpdating returns true while a reload is running
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime records when the server started
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if startTime, ok := dc.serverStartTime.Load().(time.Time); ok {
		return startTime
	}
	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData builds a new snapshot from products and swaps it in. When a
// code appears more than once the first occurrence is indexed.
func (dc *DataContainer) UpdateData(products []catalog.Product, report *interfaces.DataQualityReport) {
	if products == nil {
		products = make([]catalog.Product, 0)
	}

	productsMap := make(map[string]catalog.Product, len(products))
	categoryCounts := make(map[string]int)

	for _, p := range products {
		if _, exists := productsMap[p.Minsan]; !exists {
			productsMap[p.Minsan] = p
		}
		categoryCounts[p.Category()]++
	}

	if report == nil {
		report = &interfaces.DataQualityReport{CategoryCounts: categoryCounts}
	}

	dc.current.Store(&snapshot{
		id:             uuid.NewString(),
		products:       slices.Clip(products),
		productsMap:    productsMap,
		categoryCounts: categoryCounts,
		categories:     minsan.AvailableCategories(products),
		report:         report,
		lastUpdated:    time.Now(),
	})

	metrics.RecordCatalog(len(products), categoryCounts)
}

// BeginUpdate returns false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
