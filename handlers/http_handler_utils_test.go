package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/giygas/minsan-api/catalog"
	"github.com/giygas/minsan-api/interfaces"
	"github.com/giygas/minsan-api/minsan"
	"github.com/giygas/minsan-api/validation"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// ============================================================================
// TEST DATA
// ============================================================================

func testProduct(code, name, brand, price string, quantity int, available bool) catalog.Product {
	return catalog.Product{
		Minsan:    code,
		Name:      name,
		Brand:     brand,
		Price:     decimal.RequireFromString(price),
		Quantity:  quantity,
		Available: available,
	}
}

func testCatalog() []catalog.Product {
	return []catalog.Product{
		testProduct("012345678", "Tachipirina 500mg", "Angelini", "5.90", 1, true),
		testProduct("900000001", "Crema mani", "Neutrogena", "12.345", 3, true),
		testProduct("100000002", "Antiparassitario cane", "Frontline", "25.00", 1, false),
		testProduct("800000003", "Arnica gel", "Boiron", "9.50", 2, true),
		testProduct("500000004", "Prodotto sconosciuto", "Generico", "1.00", 1, true),
		testProduct("900000005", "Vitamina C", "Supradyn", "15.00", 1, false),
	}
}

// ============================================================================
// MOCK DATA STORE
// ============================================================================

// MockDataStore serves a fixed catalog
type MockDataStore struct {
	products    []catalog.Product
	categories  []string
	snapshotID  string
	lastUpdated time.Time
	updating    bool
}

// MockDataStoreBuilder builds MockDataStore instances
type MockDataStoreBuilder struct {
	store *MockDataStore
}

func NewMockDataStoreBuilder() *MockDataStoreBuilder {
	return &MockDataStoreBuilder{store: &MockDataStore{
		products:    []catalog.Product{},
		snapshotID:  "snapshot-1",
		lastUpdated: time.Date(2026, time.May, 10, 6, 0, 0, 0, time.UTC),
	}}
}

func (b *MockDataStoreBuilder) WithProducts(products []catalog.Product) *MockDataStoreBuilder {
	b.store.products = products
	return b
}

// WithAvailableCategories overrides the precomputed category list
func (b *MockDataStoreBuilder) WithAvailableCategories(categories []string) *MockDataStoreBuilder {
	b.store.categories = categories
	return b
}

func (b *MockDataStoreBuilder) WithSnapshotID(id string) *MockDataStoreBuilder {
	b.store.snapshotID = id
	return b
}

func (b *MockDataStoreBuilder) WithUpdating(updating bool) *MockDataStoreBuilder {
	b.store.updating = updating
	return b
}

func (b *MockDataStoreBuilder) Build() *MockDataStore {
	return b.store
}

func (m *MockDataStore) GetProducts() []catalog.Product { return m.products }

func (m *MockDataStore) GetProductsMap() map[string]catalog.Product {
	index := make(map[string]catalog.Product, len(m.products))
	for _, p := range m.products {
		if _, exists := index[p.Minsan]; !exists {
			index[p.Minsan] = p
		}
	}
	return index
}

func (m *MockDataStore) GetCategoryCounts() map[string]int {
	counts := make(map[string]int)
	for _, p := range m.products {
		counts[p.Category()]++
	}
	return counts
}

func (m *MockDataStore) GetAvailableCategories() []string {
	if m.categories != nil {
		return m.categories
	}
	return minsan.AvailableCategories(m.products)
}

func (m *MockDataStore) GetSnapshotID() string { return m.snapshotID }

func (m *MockDataStore) GetDataQualityReport() *interfaces.DataQualityReport {
	return &interfaces.DataQualityReport{CategoryCounts: m.GetCategoryCounts()}
}

func (m *MockDataStore) GetLastUpdated() time.Time     { return m.lastUpdated }
func (m *MockDataStore) GetServerStartTime() time.Time { return m.lastUpdated }
func (m *MockDataStore) IsUpdating() bool              { return m.updating }

func (m *MockDataStore) UpdateData(products []catalog.Product, report *interfaces.DataQualityReport) {
	m.products = products
}

func (m *MockDataStore) BeginUpdate() bool { return !m.updating }
func (m *MockDataStore) EndUpdate()        {}

// ============================================================================
// MOCK HEALTH CHECKER
// ============================================================================

type MockHealthChecker struct {
	status     string
	httpStatus int
}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, map[string]any{
		"last_update": "2026-05-10T06:00:00Z",
		"data":        map[string]any{"products": 6},
		"system":      map[string]any{"goroutines": 1},
	}, m.httpStatus
}

// ============================================================================
// HTTP HELPERS
// ============================================================================

func newTestHandler(products []catalog.Product) *HTTPHandlerImpl {
	store := NewMockDataStoreBuilder().WithProducts(products).Build()
	return NewHTTPHandler(store, validation.NewDataValidator(),
		&MockHealthChecker{status: "healthy", httpStatus: http.StatusOK}, 2, "06:00;18:00")
}

// HTTPTestHelper provides utilities for HTTP handler testing
type HTTPTestHelper struct {
	t *testing.T
}

func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	return &HTTPTestHelper{t: t}
}

// ExecuteRequest executes an HTTP handler with given chi URL parameters
func (h *HTTPTestHelper) ExecuteRequest(handler http.HandlerFunc, path string, urlParams map[string]string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if len(urlParams) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range urlParams {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// AssertJSONResponse asserts that response contains valid JSON with expected status
func (h *HTTPTestHelper) AssertJSONResponse(resp *httptest.ResponseRecorder, expectedStatus int, target any) {
	h.t.Helper()
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	if err := json.Unmarshal(resp.Body.Bytes(), target); err != nil {
		h.t.Errorf("Response should be valid JSON, got error: %v (body %q)", err, resp.Body.String())
	}
}

// AssertErrorResponse asserts that response contains an error with expected status
func (h *HTTPTestHelper) AssertErrorResponse(resp *httptest.ResponseRecorder, expectedStatus int) {
	h.t.Helper()
	var errorResp map[string]any
	h.AssertJSONResponse(resp, expectedStatus, &errorResp)

	for _, field := range []string{"error", "message", "code"} {
		if _, ok := errorResp[field]; !ok {
			h.t.Errorf("Error response should have %s field", field)
		}
	}
	if errorResp["code"] != float64(expectedStatus) {
		h.t.Errorf("Expected code %d in body, got %v", expectedStatus, errorResp["code"])
	}
}
