// Command discover-loader loads a JSON-LD catalog corpus and its type
// hierarchy into Redis or Valkey for the discover server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/discover/internal/config"
	logpkg "github.com/kailas-cloud/discover/internal/logger"
	"github.com/kailas-cloud/discover/internal/version"
)

var (
	envName    string
	dataDir    string
	schemasDir string
)

var rootCmd = &cobra.Command{
	Use:           "discover-loader",
	Short:         "Load catalog items and type hierarchy into the discover store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("discover-loader %s\n", version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(), "Config environment (config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&schemasDir, "schemas-dir", "", "Schema definitions directory (overrides catalog.schemas_dir)")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment's config and applies directory overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(envName)
	if err != nil {
		return config.Config{}, err
	}
	if dataDir != "" {
		cfg.Catalog.DataDir = dataDir
	}
	if schemasDir != "" {
		cfg.Catalog.SchemasDir = schemasDir
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	l, err := logpkg.NewLogger(envName, cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return l, nil
}
