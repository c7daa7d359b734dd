// Package scheduler provides automated catalog reloads and stale data monitoring
// for the MINSAN API. It runs the feed loader on a gocron schedule and swaps
// the result into the data store.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/giygas/minsan-api/interfaces"
	"github.com/giygas/minsan-api/logging"
	"github.com/giygas/minsan-api/metrics"
	"github.com/giygas/minsan-api/minsan"
	"github.com/giygas/minsan-api/validation"
	"github.com/go-co-op/gocron"
)

// DefaultSchedule reloads the feed twice a day
const DefaultSchedule = "06:00;18:00"

// Reload results recorded in metrics
const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultSkipped = "skipped"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles catalog reloads and health monitoring using dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	loader    interfaces.FeedLoader
	validator interfaces.DataValidator
	schedule  string
	scheduler *gocron.Scheduler

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// An empty schedule falls back to DefaultSchedule.
func NewScheduler(dataStore interfaces.DataStore, loader interfaces.FeedLoader, schedule string) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		dataStore: dataStore,
		loader:    loader,
		validator: validation.NewDataValidator(),
		schedule:  schedule,
		scheduler: gocron.NewScheduler(time.Local),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start performs the initial load, schedules reloads and starts health monitoring
func (s *Scheduler) Start() error {
	if err := s.updateData(); err != nil {
		logging.Error("Failed to perform initial data load", "error", err)
		return fmt.Errorf("initial data load failed: %w", err)
	}

	_, err := s.scheduler.Every(1).Days().At(s.schedule).Do(func() {
		if err := s.updateData(); err != nil {
			logging.Error("Failed to update data", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule updates", "error", err, "schedule", s.schedule)
		return fmt.Errorf("failed to schedule updates: %w", err)
	}

	s.scheduler.StartAsync()

	if next, err := CalculateNextUpdate(time.Now(), s.schedule); err == nil {
		logging.Info("Catalog reloads scheduled", "schedule", s.schedule, "next_update", next.Format(time.RFC3339))
	}

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler and cancels any running download
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.scheduler.Stop()
	})
}

// updateData loads the feed and swaps a new snapshot into the data store.
// On failure the previous snapshot keeps being served.
func (s *Scheduler) updateData() error {
	if !s.dataStore.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		metrics.RecordReload(resultSkipped)
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info(fmt.Sprintf("Starting catalog update at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	products, err := s.loader.Load(s.ctx)
	if err != nil {
		metrics.RecordReload(resultFailure)
		return fmt.Errorf("failed to load product feed: %w", err)
	}

	report := s.validator.ReportDataQuality(products)

	if len(report.DuplicateCodes) > 0 {
		logging.Warn("Duplicate MINSAN codes detected",
			"total", len(report.DuplicateCodes),
			"code_list", report.DuplicateCodes,
		)
	}

	if report.InvalidProducts > 0 {
		logging.Warn("Invalid products in feed", "count", report.InvalidProducts)
	}

	if report.NonStandardCodes > 0 {
		logging.Info("Codes with non standard length", "count", report.NonStandardCodes)
	}

	if n := report.CategoryCounts[minsan.Other]; n > 0 {
		logging.Info("Products outside the known categories", "count", n)
	}

	s.dataStore.UpdateData(products, report)
	metrics.RecordReload(resultSuccess)

	logging.Info("Catalog update completed",
		"duration", time.Since(start).String(),
		"product_count", len(products),
		"snapshot", s.dataStore.GetSnapshotID(),
	)

	return nil
}

// startHealthMonitoring warns when the data has not been refreshed for more than 25 hours
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				lastUpdate := s.dataStore.GetLastUpdated()
				if time.Since(lastUpdate) > 25*time.Hour {
					logging.Warn("Data hasn't been updated in over 25 hours", "last_update", lastUpdate.Format(time.RFC3339))
				}
			}
		}
	}()
}

// CalculateNextUpdate returns the first scheduled time strictly after now.
// schedule is a ";" separated list of HH:MM times in now's location.
func CalculateNextUpdate(now time.Time, schedule string) (time.Time, error) {
	var minutes []int
	for _, part := range strings.Split(schedule, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := time.Parse("15:04", part)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid schedule time %q: %w", part, err)
		}
		minutes = append(minutes, t.Hour()*60+t.Minute())
	}
	if len(minutes) == 0 {
		return time.Time{}, fmt.Errorf("empty schedule")
	}
	sort.Ints(minutes)

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, m := range minutes {
		candidate := midnight.Add(time.Duration(m) * time.Minute)
		if candidate.After(now) {
			return candidate, nil
		}
	}

	tomorrow := midnight.AddDate(0, 0, 1)
	return tomorrow.Add(time.Duration(minutes[0]) * time.Minute), nil
}
