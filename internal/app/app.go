package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/oysterdash/internal/controllers/restserver"
	"github.com/chrissnell/oysterdash/internal/samples"
	"github.com/chrissnell/oysterdash/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	source, err := samples.NewSource(a.cfg.Source, a.logger)
	if err != nil {
		return err
	}
	cache := samples.NewCache(source, a.cfg.Source.CacheTTL)
	defer func() {
		if err := cache.Close(); err != nil {
			a.logger.Warnf("error closing sample source: %v", err)
		}
	}()

	// Load once up front so a bad path or schema shows up at startup. A
	// failure here is not fatal; every session retries the load.
	if s, err := cache.Get(ctx); err != nil {
		a.logger.Warnf("initial sample load failed: %v", err)
	} else {
		a.logger.Infof("loaded %d samples from %s source", len(s), a.cfg.Source.Type)
	}

	ctrl, err := restserver.NewController(ctx, &wg, a.cfg, cache, a.logger)
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	a.logger.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for a shutdown signal or a listener failure
	var serveErr error
	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	case serveErr = <-ctrl.Err():
		a.logger.Error("dashboard server stopped unexpectedly, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	if serveErr != nil {
		return fmt.Errorf("dashboard server failed: %w", serveErr)
	}
	return nil
}
