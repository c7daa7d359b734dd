// Package handlers provides HTTP request handlers for the MINSAN API endpoints.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/giygas/minsan-api/interfaces"
	"github.com/giygas/minsan-api/logging"
	"github.com/giygas/minsan-api/scheduler"
)

// DefaultPageSize is used when the handler is built with a non-positive page size
const DefaultPageSize = 20

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	healthChecker interfaces.HealthChecker
	pageSize      int
	schedule      string
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies.
// schedule is the feed reload schedule reported by the health endpoint.
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator,
	healthChecker interfaces.HealthChecker, pageSize int, schedule string) *HTTPHandlerImpl {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		healthChecker: healthChecker,
		pageSize:      pageSize,
		schedule:      schedule,
	}
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if w.Header().Get("Last-Modified") == "" {
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// respondCached writes a 200 response tagged with the current snapshot, or
// 304 when the client already holds it.
func (h *HTTPHandlerImpl) respondCached(w http.ResponseWriter, r *http.Request, payload any) {
	if snapshot := h.dataStore.GetSnapshotID(); snapshot != "" {
		etag := GenerateETag([]byte(snapshot + r.URL.RequestURI()))
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "public, max-age=300")

		if lastUpdated := h.dataStore.GetLastUpdated(); !lastUpdated.IsZero() {
			w.Header().Set("Last-Modified", lastUpdated.UTC().Format(http.TimeFormat))
		}

		if CheckETag(r, etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	h.RespondWithJSON(w, http.StatusOK, payload)
}

// GenerateETag returns a quoted 16 hex character tag for data
func GenerateETag(data []byte) string {
	sum := sha256.Sum256(data)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}

// CheckETag reports whether the If-None-Match header names etag. Weak
// validators compare equal to their strong form.
func CheckETag(r *http.Request, etag string) bool {
	header := r.Header.Get("If-None-Match")
	if header == "" {
		return false
	}

	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.healthChecker.HealthCheck()

	response := make(map[string]any, len(details)+2)
	for k, v := range details {
		response[k] = v
	}
	response["status"] = status

	if next, err := scheduler.CalculateNextUpdate(time.Now(), h.schedule); err == nil {
		response["next_update"] = next.Format(time.RFC3339)
	}

	w.Header().Set("Cache-Control", "no-cache")
	h.RespondWithJSON(w, httpStatus, response)
}
