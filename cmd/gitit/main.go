package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ashhhleyyy/gitit/internal/api"
	"github.com/ashhhleyyy/gitit/internal/browse"
	"github.com/ashhhleyyy/gitit/internal/config"
	"github.com/ashhhleyyy/gitit/internal/mirror"
)

func main() {
	// Load environment variables; a missing .env file is fine
	_ = godotenv.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	for _, skipped := range cfg.Skipped {
		logger.WithField("repository", skipped.Name).Warnf("Skipping invalid repository entry: %v", skipped.Reason)
	}
	if len(cfg.Repos) == 0 {
		logger.Fatal("No valid repositories configured")
	}

	registry := mirror.NewRegistry(cfg)
	engine := mirror.NewEngine(cfg, logger)
	scheduler := mirror.NewScheduler(engine, registry, cfg, logger)

	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "web":
		runServer(cfg, registry, scheduler, logger)
	case "sync":
		runSync(scheduler, logger, os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: gitit <web|sync> [flags]")
	os.Exit(2)
}

// runSync syncs all repositories (or one, with --repo) and exits non-zero if
// any sync failed.
func runSync(scheduler *mirror.Scheduler, logger *logrus.Logger, args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	repoName := fs.String("repo", "", "sync a single repository by name")
	fs.Parse(args)

	ctx := context.Background()
	if *repoName != "" {
		if _, err := scheduler.SyncByName(ctx, *repoName); err != nil {
			logger.Fatalf("Sync failed: %v", err)
		}
		return
	}

	failed := 0
	for _, result := range scheduler.SyncAll(ctx) {
		if result.Err != nil {
			failed++
			logger.WithField("repository", result.Name).Errorf("Sync failed: %v", result.Err)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runServer(cfg *config.Config, registry *mirror.Registry, scheduler *mirror.Scheduler, logger *logrus.Logger) {
	browser := browse.NewService(registry, logger)
	handler := api.NewHandler(browser, scheduler, cfg, logger)
	router := api.SetupRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Start periodic sync if configured
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Start(ctx, cfg.Sync.Interval())

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server exited properly")
}
