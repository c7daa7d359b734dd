package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/giygas/minsan-api/catalog"
	"github.com/giygas/minsan-api/interfaces"
	"github.com/shopspring/decimal"
)

// mockSchedulerDataStore records what the scheduler writes
type mockSchedulerDataStore struct {
	mu          sync.Mutex
	products    []catalog.Product
	report      *interfaces.DataQualityReport
	lastUpdated time.Time
	updating    bool
	updateCount int
}

func (m *mockSchedulerDataStore) GetProducts() []catalog.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products
}
func (m *mockSchedulerDataStore) GetProductsMap() map[string]catalog.Product { return nil }
func (m *mockSchedulerDataStore) GetCategoryCounts() map[string]int           { return nil }
func (m *mockSchedulerDataStore) GetAvailableCategories() []string            { return nil }
func (m *mockSchedulerDataStore) GetSnapshotID() string                       { return "mock" }
func (m *mockSchedulerDataStore) GetDataQualityReport() *interfaces.DataQualityReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.report
}
func (m *mockSchedulerDataStore) GetLastUpdated() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUpdated
}
func (m *mockSchedulerDataStore) GetServerStartTime() time.Time { return time.Time{} }
func (m *mockSchedulerDataStore) IsUpdating() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updating
}

func (m *mockSchedulerDataStore) UpdateData(products []catalog.Product, report *interfaces.DataQualityReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
	m.report = report
	m.lastUpdated = time.Now()
	m.updateCount++
}

func (m *mockSchedulerDataStore) BeginUpdate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updating {
		return false
	}
	m.updating = true
	return true
}

func (m *mockSchedulerDataStore) EndUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updating = false
}

// mockFeedLoader returns a fixed catalog or an error
type mockFeedLoader struct {
	loadCount int
	err       error
	products  []catalog.Product
}

func (m *mockFeedLoader) Load(ctx context.Context) ([]catalog.Product, error) {
	m.loadCount++
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{Minsan: "012345678", Name: "Tachipirina", Price: decimal.RequireFromString("5.90"), Quantity: 1, Available: true},
		{Minsan: "900000001", Name: "Crema", Price: decimal.RequireFromString("12.50"), Quantity: 2, Available: false},
		{Minsan: "012345678", Name: "Tachipirina bis", Price: decimal.RequireFromString("5.90"), Quantity: 1, Available: true},
	}
}

func TestScheduler_SuccessfulUpdate(t *testing.T) {
	store := &mockSchedulerDataStore{}
	loader := &mockFeedLoader{products: testProducts()}
	s := NewScheduler(store, loader, "")

	if err := s.updateData(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if loader.loadCount != 1 {
		t.Errorf("Expected loader to be called once, got %d", loader.loadCount)
	}
	if store.updateCount != 1 {
		t.Errorf("Expected 1 store update, got %d", store.updateCount)
	}
	if len(store.GetProducts()) != 3 {
		t.Errorf("Expected 3 products, got %d", len(store.GetProducts()))
	}

	report := store.GetDataQualityReport()
	if report == nil {
		t.Fatal("Expected a data quality report")
	}
	if len(report.DuplicateCodes) != 1 || report.DuplicateCodes[0] != "012345678" {
		t.Errorf("Expected duplicate 012345678, got %v", report.DuplicateCodes)
	}
	if report.UnavailableProducts != 1 {
		t.Errorf("Expected 1 unavailable product, got %d", report.UnavailableProducts)
	}
	if store.IsUpdating() {
		t.Error("Update flag should be released")
	}
}

func TestScheduler_LoadFailureKeepsSnapshot(t *testing.T) {
	store := &mockSchedulerDataStore{}
	loader := &mockFeedLoader{products: testProducts()}
	s := NewScheduler(store, loader, "")

	if err := s.updateData(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	loader.err = errors.New("connection refused")
	err := s.updateData()
	if err == nil {
		t.Fatal("Expected error on load failure")
	}
	if !errors.Is(err, loader.err) {
		t.Errorf("Expected wrapped loader error, got %v", err)
	}
	if store.updateCount != 1 {
		t.Errorf("Failed load should not touch the store, got %d updates", store.updateCount)
	}
	if len(store.GetProducts()) != 3 {
		t.Error("Previous catalog should be kept")
	}
	if store.IsUpdating() {
		t.Error("Update flag should be released after a failure")
	}
}

func TestScheduler_ConcurrentUpdatePrevention(t *testing.T) {
	store := &mockSchedulerDataStore{updating: true}
	loader := &mockFeedLoader{products: testProducts()}
	s := NewScheduler(store, loader, "")

	if err := s.updateData(); err != nil {
		t.Errorf("Skipped update should not be an error, got %v", err)
	}
	if loader.loadCount != 0 {
		t.Errorf("Loader should not run while another update is in progress, got %d calls", loader.loadCount)
	}
	if store.updateCount != 0 {
		t.Errorf("Expected no store update, got %d", store.updateCount)
	}
}

func TestScheduler_StartFailsOnInitialLoad(t *testing.T) {
	store := &mockSchedulerDataStore{}
	loader := &mockFeedLoader{err: errors.New("feed missing")}
	s := NewScheduler(store, loader, "")
	defer s.Stop()

	if err := s.Start(); err == nil {
		t.Fatal("Expected Start to fail when the initial load fails")
	}
}

func TestScheduler_StartAndStop(t *testing.T) {
	store := &mockSchedulerDataStore{}
	loader := &mockFeedLoader{products: testProducts()}
	s := NewScheduler(store, loader, "03:15;21:45")

	if err := s.Start(); err != nil {
		t.Fatalf("Expected Start to succeed, got %v", err)
	}
	if store.updateCount != 1 {
		t.Errorf("Expected initial load, got %d updates", store.updateCount)
	}

	s.Stop()
	s.Stop()

	select {
	case <-s.ctx.Done():
	default:
		t.Error("Stop should cancel the scheduler context")
	}
}

func TestScheduler_StartRejectsBadSchedule(t *testing.T) {
	store := &mockSchedulerDataStore{}
	loader := &mockFeedLoader{products: testProducts()}
	s := NewScheduler(store, loader, "25:99")
	defer s.Stop()

	if err := s.Start(); err == nil {
		t.Error("Expected error for an invalid schedule")
	}
}

func TestCalculateNextUpdate(t *testing.T) {
	loc := time.UTC
	day := func(d, h, m int) time.Time { return time.Date(2026, time.March, d, h, m, 0, 0, loc) }

	tests := []struct {
		name     string
		now      time.Time
		schedule string
		expected time.Time
	}{
		{"before first", day(10, 5, 0), DefaultSchedule, day(10, 6, 0)},
		{"between", day(10, 12, 0), DefaultSchedule, day(10, 18, 0)},
		{"exactly at first", day(10, 6, 0), DefaultSchedule, day(10, 18, 0)},
		{"after last", day(10, 19, 30), DefaultSchedule, day(11, 6, 0)},
		{"unsorted times", day(10, 7, 0), "18:00; 06:00", day(10, 18, 0)},
		{"single time", day(10, 23, 59), "00:30", day(11, 0, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateNextUpdate(tt.now, tt.schedule)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCalculateNextUpdateInvalid(t *testing.T) {
	for _, schedule := range []string{"", ";", "6am", "24:00"} {
		if _, err := CalculateNextUpdate(time.Now(), schedule); err == nil {
			t.Errorf("Expected error for schedule %q", schedule)
		}
	}
}
