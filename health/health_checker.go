// Package health derives the service health from the catalog snapshot.
package health

import (
	"fmt"
	"math"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/minsan-api/interfaces"
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
	now       func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(dataStore interfaces.DataStore) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		dataStore: dataStore,
		now:       time.Now,
	}
}

// HealthCheck returns the status string, response details and HTTP status.
// An empty catalog or data older than 48h is unhealthy; older than 24h, or
// stuck in an update for more than 6h, is degraded.
func (h *HealthCheckerImpl) HealthCheck() (status string, details map[string]any, httpStatus int) {
	products := h.dataStore.GetProducts()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()

	now := h.now()
	dataAge := now.Sub(lastUpdate)

	switch {
	case len(products) == 0:
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	case dataAge > 48*time.Hour:
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	case dataAge > 24*time.Hour:
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	case isUpdating && dataAge > 6*time.Hour:
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	default:
		status, httpStatus = "healthy", http.StatusOK
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var uptime time.Duration
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		uptime = now.Sub(start)
	}

	details = map[string]any{
		"last_update":    lastUpdate.Format(time.RFC3339),
		"data_age_hours": math.Round(dataAge.Hours()*10) / 10,
		"uptime":         FormatUptime(uptime),
		"data": map[string]any{
			"products":    len(products),
			"categories":  h.dataStore.GetCategoryCounts(),
			"snapshot":    h.dataStore.GetSnapshotID(),
			"is_updating": isUpdating,
			"quality":     h.dataStore.GetDataQualityReport(),
		},
		"system": map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	}

	return status, details, httpStatus
}

// FormatUptime renders a duration as "1d 2h 3m 4s", dropping leading zero units
func FormatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
