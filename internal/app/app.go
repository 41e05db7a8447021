package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/windshear/internal/controllers/restserver"
	"github.com/chrissnell/windshear/internal/observability"
	"github.com/chrissnell/windshear/pkg/config"
	"github.com/chrissnell/windshear/pkg/shear"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
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

// NewReporter builds the diagnostic reporter named in the configuration
func NewReporter(name string, logger *zap.SugaredLogger) shear.Reporter {
	switch name {
	case config.ReporterStdout:
		return shear.NewWriterReporter(os.Stdout)
	case config.ReporterNone:
		return shear.NopReporter{}
	default:
		return shear.NewZapReporter(logger)
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	calc := shear.NewCalculator(NewReporter(a.cfg.Reporter, a.logger))

	rc, err := restserver.NewController(ctx, &wg, a.cfg.Server, calc, metrics, reg, a.logger)
	if err != nil {
		return err
	}
	if err := rc.StartController(); err != nil {
		return err
	}

	a.logger.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}
