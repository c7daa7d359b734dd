package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giygas/minsan-api/config"
	"github.com/giygas/minsan-api/data"
	"github.com/giygas/minsan-api/feed"
	"github.com/giygas/minsan-api/logging"
	"github.com/giygas/minsan-api/scheduler"
	"github.com/giygas/minsan-api/server"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logService := logging.InitLogger(logging.Options{
		Dir:            cfg.LogDir,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logService.Close()

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	loader := feed.NewLoader(cfg.FeedSource)
	sched := scheduler.NewScheduler(dataContainer, loader, cfg.FeedSchedule)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, dataContainer)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		logging.Info("Received signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

// loadEnv reads .env from the working directory, then from the executable's directory
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		return
	}

	exPath := filepath.Dir(ex)
	if err := godotenv.Load(filepath.Join(exPath, ".env")); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}
}
