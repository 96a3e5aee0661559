// ====================================
// File: cmd/engine/main.go
// ====================================
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/attenomics/curve-engine/internal/config"
	"github.com/attenomics/curve-engine/internal/engine"
	"github.com/attenomics/curve-engine/internal/logger"
	"github.com/attenomics/curve-engine/internal/storage"
	"github.com/attenomics/curve-engine/internal/storage/postgres"
	"github.com/attenomics/curve-engine/internal/task"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("configs/config.json")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("🚀 Starting curve engine")

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdownCh
		log.Info("📡 Signal received: " + sig.String())
		cancel()
	}()

	var journal storage.Storage
	if cfg.PostgresURL != "" {
		store, err := postgres.NewStorage(cfg.PostgresURL, log.Logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.RunMigrations(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		journal = store
		log.Info("💾 Trade journal enabled")
	}

	eng := engine.New(engine.Options{
		Logger:          log.Logger,
		Journal:         journal,
		EventBufferSize: cfg.EventBufferSize,
	})

	if err := eng.Initialize(cfg.AuthorityKey(), cfg.ProtocolFeeKey()); err != nil {
		return fmt.Errorf("initialize registry: %w", err)
	}
	if err := eng.InitializeSwapRouter(ctx); err != nil {
		return fmt.Errorf("initialize swap router: %w", err)
	}

	wallets, err := task.LoadWallets("configs/wallets.yaml")
	if err != nil {
		return fmt.Errorf("load wallets: %w", err)
	}

	manager := task.NewManager(log.WithComponent("tasks"))
	tasks, err := manager.LoadTasks(cfg.TasksFile)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	log.Info(fmt.Sprintf("📋 Loaded %d scenario tasks", len(tasks)))

	runner := task.NewRunner(eng, wallets, cfg.Workers, log.WithComponent("runner"))
	if err := runner.FundActors(); err != nil {
		return err
	}

	if err := runner.Run(ctx, tasks); err != nil {
		return fmt.Errorf("scenario failed: %w", err)
	}
	log.Info("✅ All tasks finished")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := eng.Shutdown(shutdownCtx); err != nil {
		log.Warn("Shutdown incomplete", zap.Error(err))
	}
	return nil
}
