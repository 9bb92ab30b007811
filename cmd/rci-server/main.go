package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ericrodrz/rci-service/internal/adapter/httpapi"
	"github.com/ericrodrz/rci-service/internal/adapter/planfile"
	"github.com/ericrodrz/rci-service/internal/adapter/postal"
	"github.com/ericrodrz/rci-service/internal/bridges"
	"github.com/ericrodrz/rci-service/internal/config"
	"github.com/ericrodrz/rci-service/internal/debt"
	"github.com/ericrodrz/rci-service/internal/eal"
	"github.com/ericrodrz/rci-service/internal/hazard"
	"github.com/ericrodrz/rci-service/internal/observability"
	"github.com/ericrodrz/rci-service/internal/rci"
	"github.com/ericrodrz/rci-service/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store := &hazard.Store{}
	buildSnapshot := func(_ context.Context) error {
		start := time.Now()
		rows, err := planfile.Load(cfg.HazardPlansPath)
		if err != nil {
			metrics.SnapshotReloadErrors.Inc()
			return err
		}
		snapshot, err := hazard.BuildSnapshot(rows)
		if err != nil {
			metrics.SnapshotReloadErrors.Inc()
			return err
		}
		store.Publish(snapshot)
		metrics.SnapshotBuilds.Inc()
		metrics.SnapshotBuildDuration.Observe(time.Since(start).Seconds())
		metrics.SnapshotRecords.Set(float64(len(snapshot.Records())))
		logger.Info("hazard snapshot published", "records", len(snapshot.Records()))
		return nil
	}

	// The first build is fatal on failure: a resolver without global stats
	// would return nonsense.
	if err := buildSnapshot(context.Background()); err != nil {
		logger.Error("initial snapshot build failed", "error", err)
		os.Exit(1)
	}

	// ZIP geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var locator rci.Locator
	if cfg.MapboxEnabled {
		client := postal.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		locator = postal.NewCachedLocator(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("ZIP geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("ZIP geocoding disabled; only explicit coverage queries will resolve")
	}

	calc := rci.NewCalculator(
		store,
		locator,
		loadDebt(cfg, logger),
		loadBridges(cfg, logger),
		loadEAL(cfg, logger),
		logger,
		metrics,
	)

	srv := httpapi.NewServer(cfg.HTTPAddr, calc, store, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if cfg.WatchPlans {
		w := watcher.New(cfg.HazardPlansPath, buildSnapshot, logger)
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("dataset watcher error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// The three collaborator datasets are optional: a missing path disables the
// component, a load failure logs and disables it rather than blocking the
// hazard resolver.

func loadDebt(cfg *config.Config, logger *slog.Logger) *debt.Analyzer {
	if cfg.DebtRevenuePath == "" {
		return nil
	}
	a, err := debt.Load(cfg.DebtRevenuePath)
	if err != nil {
		logger.Error("debt dataset unavailable", "error", err)
		return nil
	}
	logger.Info("debt dataset loaded", "path", cfg.DebtRevenuePath)
	return a
}

func loadBridges(cfg *config.Config, logger *slog.Logger) *bridges.Index {
	if cfg.BridgeWorkbookPath == "" {
		return nil
	}
	ix, err := bridges.Load(cfg.BridgeWorkbookPath)
	if err != nil {
		logger.Error("bridge dataset unavailable", "error", err)
		return nil
	}
	logger.Info("bridge dataset loaded", "counties", len(ix.Records()))
	return ix
}

func loadEAL(cfg *config.Config, logger *slog.Logger) *eal.Table {
	if cfg.EALTablePath == "" {
		return nil
	}
	t, err := eal.Load(cfg.EALTablePath)
	if err != nil {
		logger.Error("EAL dataset unavailable", "error", err)
		return nil
	}
	logger.Info("EAL dataset loaded", "path", cfg.EALTablePath)
	return t
}
