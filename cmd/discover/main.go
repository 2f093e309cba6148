package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/discover/internal/config"
	"github.com/kailas-cloud/discover/internal/db"
	dbRedis "github.com/kailas-cloud/discover/internal/db/redis"
	dbValkey "github.com/kailas-cloud/discover/internal/db/valkey"
	"github.com/kailas-cloud/discover/internal/domain/discovery/request"
	"github.com/kailas-cloud/discover/internal/domain/discovery/response"
	"github.com/kailas-cloud/discover/internal/domain/hierarchy"
	"github.com/kailas-cloud/discover/internal/domain/schemactx"
	logpkg "github.com/kailas-cloud/discover/internal/logger"
	"github.com/kailas-cloud/discover/internal/metrics"
	"github.com/kailas-cloud/discover/internal/pathfilter"
	"github.com/kailas-cloud/discover/internal/repository/corpus"
	hierarchyrepo "github.com/kailas-cloud/discover/internal/repository/hierarchy"
	itemsrepo "github.com/kailas-cloud/discover/internal/repository/items"
	"github.com/kailas-cloud/discover/internal/schema"
	chiTransport "github.com/kailas-cloud/discover/internal/transport/chi"
	discoveryuc "github.com/kailas-cloud/discover/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/discover/internal/usecase/health"
	"github.com/kailas-cloud/discover/internal/version"
)

// itemSource is what the composition root needs from a catalog backend.
type itemSource interface {
	discoveryuc.ItemSource
	healthuc.ItemCounter
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting discover API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()

	// Catalog backend
	var (
		store  db.Store
		source itemSource
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		c, err := corpus.Load(ctx, cfg.Catalog.DataDir, logger)
		if err != nil {
			logger.Fatal("Failed to load catalog corpus", zap.Error(err))
		}
		logger.Info("Loaded catalog corpus", zap.Int("items", len(c.Items())), zap.String("dir", cfg.Catalog.DataDir))
		source = c
	default:
		store, err = openStore(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")

		source = itemsrepo.New(store,
			itemsrepo.WithKeyPrefix(cfg.Storage.KeyPrefix),
			itemsrepo.WithBatchSize(cfg.Storage.BatchSize),
		)
	}

	types, err := loadHierarchy(ctx, cfg, store, logger)
	if err != nil {
		logger.Fatal("Failed to load type hierarchy", zap.Error(err))
	}
	logger.Info("Type hierarchy ready", zap.Int("types", types.Len()))

	filters, err := pathfilter.New(pathfilter.Language(cfg.Discovery.FilterLanguage), cfg.Discovery.FilterCacheSize)
	if err != nil {
		logger.Fatal("Failed to create filter compiler", zap.Error(err))
	}

	metrics.RegisterDiscoveryMetrics()

	resolver := schemactx.NewResolver(types, cfg.Catalog.BaseContext, cfg.Catalog.ItemContextTemplate)
	synth := response.NewSynthesizer(types, resolver, envelopeSettings(cfg.Catalog), nil)
	discoverySvc := discoveryuc.New(source, types, resolver, filters, synth, request.Limits{
		DefaultPage:  cfg.Discovery.DefaultPage,
		DefaultLimit: cfg.Discovery.DefaultLimit,
		MaxLimit:     cfg.Discovery.MaxLimit,
	})

	// Pass a nil interface, not a typed nil pointer, when there is no store.
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, source)

	server := chiTransport.NewServer(discoverySvc, healthSvc, cfg.Catalog.NetworkID, logger)
	r := chiTransport.NewRouter(server, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverValkey:
		return dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
	case config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// loadHierarchy builds the type table from schema definitions on disk, or
// from the edges the loader saved next to the items.
func loadHierarchy(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger) (*hierarchy.Table, error) {
	if cfg.Catalog.HierarchySource == config.HierarchyFromStore {
		edges, err := hierarchyrepo.New(store, cfg.Storage.KeyPrefix).Load(ctx)
		if err != nil {
			return nil, err
		}
		return hierarchy.New(edges)
	}

	loader, err := schema.NewLoader(nil, logger)
	if err != nil {
		return nil, err
	}
	return loader.Table(ctx, cfg.Catalog.SchemasDir)
}

func envelopeSettings(cfg config.CatalogConfig) response.Settings {
	families := make([]response.Family, 0, len(cfg.Families))
	for _, f := range cfg.Families {
		families = append(families, response.Family{Root: f.Root, Name: f.Name, ShortDesc: f.ShortDesc})
	}
	return response.Settings{
		ProviderID: cfg.ProviderID,
		StartDate:  cfg.TimePeriod.Start,
		EndDate:    cfg.TimePeriod.End,
		Families:   families,
		Fallback:   response.Family{Name: cfg.Fallback.Name, ShortDesc: cfg.Fallback.ShortDesc},
	}
}
