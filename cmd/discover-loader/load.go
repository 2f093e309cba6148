package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/discover/internal/config"
	"github.com/kailas-cloud/discover/internal/db"
	dbRedis "github.com/kailas-cloud/discover/internal/db/redis"
	dbValkey "github.com/kailas-cloud/discover/internal/db/valkey"
	"github.com/kailas-cloud/discover/internal/domain/hierarchy"
	"github.com/kailas-cloud/discover/internal/domain/item"
	"github.com/kailas-cloud/discover/internal/repository/corpus"
	hierarchyrepo "github.com/kailas-cloud/discover/internal/repository/hierarchy"
	itemsrepo "github.com/kailas-cloud/discover/internal/repository/items"
	"github.com/kailas-cloud/discover/internal/schema"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace stored items and hierarchy with the files on disk",
	Long: `Reads every *.jsonld file in the data directory, clears the items under the
configured key prefix, recreates the search index and writes the items in
file order. The type hierarchy discovered from the schema definitions is
saved alongside so servers can use hierarchy_source: store.`,
	Args: cobra.NoArgs,
	RunE: runLoadCmd,
}

var skipHierarchy bool

func init() {
	loadCmd.Flags().StringVar(&dataDir, "data-dir", "", "Catalog data directory (overrides catalog.data_dir)")
	loadCmd.Flags().BoolVar(&skipHierarchy, "skip-hierarchy", false, "Do not replace the stored type hierarchy")
	rootCmd.AddCommand(loadCmd)
}

// itemWriter replaces the stored corpus.
type itemWriter interface {
	Replace(ctx context.Context, items []item.Item) (int, error)
}

// edgeWriter replaces the stored hierarchy.
type edgeWriter interface {
	Save(ctx context.Context, edges []hierarchy.Edge) error
}

func runLoadCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	items := itemsrepo.New(store,
		itemsrepo.WithKeyPrefix(cfg.Storage.KeyPrefix),
		itemsrepo.WithBatchSize(cfg.Storage.BatchSize),
	)
	var edges edgeWriter
	if !skipHierarchy {
		edges = hierarchyrepo.New(store, cfg.Storage.KeyPrefix)
	}

	return runLoad(ctx, cmd.OutOrStdout(), cfg.Catalog, items, edges, logger)
}

// runLoad validates the hierarchy before touching the store so a broken
// schema set never leaves a half-written catalog. edges may be nil.
func runLoad(ctx context.Context, out io.Writer, cfg config.CatalogConfig, items itemWriter, edges edgeWriter, logger *zap.Logger) error {
	var (
		discovered []hierarchy.Edge
		table      *hierarchy.Table
	)
	if edges != nil {
		loader, err := schema.NewLoader(nil, logger)
		if err != nil {
			return err
		}
		discovered, err = loader.Edges(ctx, cfg.SchemasDir)
		if err != nil {
			return err
		}
		if table, err = hierarchy.New(discovered); err != nil {
			return fmt.Errorf("type hierarchy: %w", err)
		}
	}

	c, err := corpus.Load(ctx, cfg.DataDir, logger)
	if err != nil {
		return err
	}

	n, err := items.Replace(ctx, c.Items())
	if err != nil {
		return fmt.Errorf("replace items: %w", err)
	}
	fmt.Fprintf(out, "Loaded %d items from %s\n", n, cfg.DataDir)

	if edges != nil {
		if err := edges.Save(ctx, discovered); err != nil {
			return fmt.Errorf("save hierarchy: %w", err)
		}
		fmt.Fprintf(out, "Saved hierarchy of %d types from %s\n", table.Len(), cfg.SchemasDir)
	}
	return nil
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
		return nil, fmt.Errorf("database.driver %q has no store to load into", cfg.Driver)
	}
}
