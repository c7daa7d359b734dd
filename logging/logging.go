// Package logging wraps log/slog with a console handler and a rotating JSON
// file handler, plus package-level helpers usable before initialization.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/giygas/minsan-api/config"
)

// LoggingService owns the process logger and its file writer.
type LoggingService struct {
	Logger *slog.Logger
	writer *RotatingWriter
}

var (
	mu                    sync.RWMutex
	DefaultLoggingService *LoggingService
)

// Options configure InitLogger.
type Options struct {
	Dir            string // empty disables file logging
	Env            config.Environment
	Level          string
	Verbose        bool
	RetentionWeeks int
	MaxFileSize    int64
	Console        io.Writer // defaults to os.Stdout
}

// InitLogger installs the global logger and makes it slog's default.
func InitLogger(opts Options) *LoggingService {
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.RetentionWeeks <= 0 {
		opts.RetentionWeeks = 4
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(opts.Console, &slog.HandlerOptions{
			Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
		}),
	}

	service := &LoggingService{}

	if opts.Dir != "" {
		writer, err := NewRotatingWriter(opts.Dir, opts.RetentionWeeks, opts.MaxFileSize)
		if err != nil {
			slog.New(handlers[0]).Error("Failed to initialize rotating logger, logging to console only", "error", err)
		} else {
			service.writer = writer
			handlers = append(handlers, slog.NewJSONHandler(writer, &slog.HandlerOptions{
				Level: parseLogLevel(opts.Level),
			}))
		}
	}

	if len(handlers) == 1 {
		service.Logger = slog.New(handlers[0])
	} else {
		service.Logger = slog.New(&multiHandler{handlers: handlers})
	}

	mu.Lock()
	previous := DefaultLoggingService
	DefaultLoggingService = service
	mu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}

	slog.SetDefault(service.Logger)
	return service
}

// Close releases the log file, if any.
func (s *LoggingService) Close() error {
	if s == nil || s.writer == nil {
		return nil
	}
	return s.writer.Close()
}

// Logger returns the global logger, or a stderr logger before InitLogger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return DefaultLoggingService.Logger
}

func Info(msg string, args ...any)  { Logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }
func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel picks the console level. An explicit level wins except
// in tests, which stay quiet unless verbose.
func GetConsoleLogLevel(env config.Environment, level string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if level != "" {
		return parseLogLevel(level)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// multiHandler fans records out to several handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}
