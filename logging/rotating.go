package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const filePrefix = "minsan-"

var numberedFileRegex = regexp.MustCompile(`^minsan-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingWriter writes to one log file per ISO week, starting a numbered
// sibling file whenever the size cap would be exceeded.
type RotatingWriter struct {
	mu          sync.Mutex
	dir         string
	retention   time.Duration
	maxFileSize int64
	now         func() time.Time

	file *os.File
	week string
	size int64

	stop chan struct{}
	done chan struct{}
}

// NewRotatingWriter opens the file for the current week and starts the
// daily cleanup of files older than retentionWeeks.
func NewRotatingWriter(dir string, retentionWeeks int, maxFileSize int64) (*RotatingWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{
		dir:         dir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		now:         time.Now,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	w.mu.Lock()
	err := w.rotate(weekKey(w.now()), false)
	w.mu.Unlock()
	if err != nil {
		return nil, err
	}

	go w.cleanupLoop(24 * time.Hour)
	return w, nil
}

// weekKey returns the ISO week in YYYY-Www form
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write implements io.Writer.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	week := weekKey(w.now())
	full := w.maxFileSize > 0 && w.size+int64(len(p)) > w.maxFileSize && w.size > 0

	if week != w.week || full {
		if err := w.rotate(week, full && week == w.week); err != nil {
			return 0, err
		}
	}

	if w.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// rotate switches to the right file for week. Caller holds mu.
func (w *RotatingWriter) rotate(week string, sizeExceeded bool) error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}

	name := w.pickFile(week, sizeExceeded)
	path := filepath.Join(w.dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	w.file = file
	w.week = week
	w.size = 0
	if info, err := file.Stat(); err == nil {
		w.size = info.Size()
	}
	return nil
}

// pickFile returns the base file for the week unless it, or the latest
// numbered file, is already full.
func (w *RotatingWriter) pickFile(week string, sizeExceeded bool) string {
	base := fmt.Sprintf("%s%s.log", filePrefix, week)

	if !sizeExceeded && !w.isFull(filepath.Join(w.dir, base)) {
		highest, _ := w.highestNumbered(week)
		if highest == 0 {
			return base
		}
	}

	highest, lastPath := w.highestNumbered(week)
	if lastPath != "" && !sizeExceeded && !w.isFull(lastPath) {
		return filepath.Base(lastPath)
	}
	return fmt.Sprintf("%s%s_%02d.log", filePrefix, week, highest+1)
}

func (w *RotatingWriter) isFull(path string) bool {
	if w.maxFileSize <= 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Size() >= w.maxFileSize
}

func (w *RotatingWriter) highestNumbered(week string) (int, string) {
	matches, _ := filepath.Glob(filepath.Join(w.dir, fmt.Sprintf("%s%s_??.log", filePrefix, week)))

	highest := 0
	var path string
	for _, match := range matches {
		m := numberedFileRegex.FindStringSubmatch(filepath.Base(match))
		if len(m) < 2 {
			continue
		}
		if num, _ := strconv.Atoi(m[1]); num > highest {
			highest = num
			path = match
		}
	}
	return highest, path
}

func (w *RotatingWriter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(w.done)

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			if _, err := w.cleanup(); err != nil {
				Warn("Failed to cleanup old logs", "error", err)
			}
		}
	}
}

// cleanup removes log files last modified before the retention window.
func (w *RotatingWriter) cleanup() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := w.now().Add(-w.retention)
	deleted := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(w.dir, name)); err == nil {
				deleted++
			}
		}
	}

	return deleted, nil
}

// Close stops the cleanup goroutine and closes the current file.
func (w *RotatingWriter) Close() error {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}

	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}
