package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the discover service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Database drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// Hierarchy sources.
const (
	HierarchyFromFiles = "files"
	HierarchyFromStore = "store"
)

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`     // debug, info, warn, error (default: determined by env)
	FilePath   string `yaml:"file_path"` // optional rotated log file, teed with stdout
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis, valkey (default: memory)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CatalogConfig locates the catalog sources and describes the response envelope.
type CatalogConfig struct {
	SchemasDir          string           `yaml:"schemas_dir"`
	DataDir             string           `yaml:"data_dir"`
	HierarchySource     string           `yaml:"hierarchy_source"` // files, store (default: files)
	BaseContext         string           `yaml:"base_context"`
	ItemContextTemplate string           `yaml:"item_context_template"`
	NetworkID           string           `yaml:"network_id"`
	ProviderID          string           `yaml:"provider_id"`
	TimePeriod          TimePeriodConfig `yaml:"time_period"`
	Families            []FamilyConfig   `yaml:"families"`
	Fallback            FamilyConfig     `yaml:"fallback"`
}

// TimePeriodConfig is the catalog validity window.
type TimePeriodConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// FamilyConfig maps a type subtree to a catalog descriptor.
type FamilyConfig struct {
	Root      string `yaml:"root"`
	Name      string `yaml:"name"`
	ShortDesc string `yaml:"short_desc"`
}

// DiscoveryConfig holds pagination and filter settings.
type DiscoveryConfig struct {
	DefaultPage     int    `yaml:"default_page"`
	DefaultLimit    int    `yaml:"default_limit"`
	MaxLimit        int    `yaml:"max_limit"`
	FilterLanguage  string `yaml:"filter_language"` // jsonpath, jq (default: jsonpath)
	FilterCacheSize int    `yaml:"filter_cache_size"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
	BatchSize int    `yaml:"batch_size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMemory
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Catalog.HierarchySource == "" {
		c.Catalog.HierarchySource = HierarchyFromFiles
	}
	if c.Catalog.NetworkID == "" {
		c.Catalog.NetworkID = "beckn-network"
	}
	if c.Catalog.ProviderID == "" {
		c.Catalog.ProviderID = "tech-store-001"
	}
	if c.Catalog.TimePeriod.Start == "" {
		c.Catalog.TimePeriod.Start = "2025-01-27"
	}
	if c.Catalog.TimePeriod.End == "" {
		c.Catalog.TimePeriod.End = "2026-12-31"
	}
	if c.Catalog.Families == nil {
		c.Catalog.Families = []FamilyConfig{
			{Root: "beckn:ElectronicItem", Name: "Electronic Catalog", ShortDesc: "Latest elecronics, smartphones and telivisons"},
			{Root: "beckn:GroceryItem", Name: "Grocery Catalog", ShortDesc: "Fresh groceries and organic products"},
		}
	}
	if c.Catalog.Fallback.Name == "" {
		c.Catalog.Fallback = FamilyConfig{Name: "Beckn Catalog", ShortDesc: "Items catalog"}
	}
	if c.Discovery.DefaultPage <= 0 {
		c.Discovery.DefaultPage = 1
	}
	if c.Discovery.DefaultLimit <= 0 {
		c.Discovery.DefaultLimit = 20
	}
	if c.Discovery.MaxLimit <= 0 {
		c.Discovery.MaxLimit = 100
	}
	if c.Discovery.FilterLanguage == "" {
		c.Discovery.FilterLanguage = "jsonpath"
	}
	if c.Discovery.FilterCacheSize <= 0 {
		c.Discovery.FilterCacheSize = 256
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "discover:"
	}
	if c.Storage.BatchSize <= 0 {
		c.Storage.BatchSize = 500
	}
	if c.Logging.FilePath != "" {
		if c.Logging.MaxSizeMB <= 0 {
			c.Logging.MaxSizeMB = 100
		}
		if c.Logging.MaxBackups <= 0 {
			c.Logging.MaxBackups = 3
		}
		if c.Logging.MaxAgeDays <= 0 {
			c.Logging.MaxAgeDays = 28
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverMemory:
		if c.Catalog.DataDir == "" {
			return fmt.Errorf("catalog.data_dir is required for the memory driver")
		}
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the %s driver", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be memory, redis or valkey, got %q", c.Database.Driver)
	}

	switch c.Catalog.HierarchySource {
	case HierarchyFromFiles:
		if c.Catalog.SchemasDir == "" {
			return fmt.Errorf("catalog.schemas_dir is required when hierarchy_source is files")
		}
	case HierarchyFromStore:
		if c.Database.Driver == DriverMemory {
			return fmt.Errorf("catalog.hierarchy_source store requires a redis or valkey database")
		}
	default:
		return fmt.Errorf("catalog.hierarchy_source must be files or store, got %q", c.Catalog.HierarchySource)
	}

	for i, f := range c.Catalog.Families {
		if f.Root == "" || f.Name == "" {
			return fmt.Errorf("catalog.families[%d] needs root and name", i)
		}
	}

	if c.Discovery.DefaultLimit > c.Discovery.MaxLimit {
		return fmt.Errorf(
			"discovery.default_limit (%d) exceeds discovery.max_limit (%d)",
			c.Discovery.DefaultLimit, c.Discovery.MaxLimit,
		)
	}
	switch c.Discovery.FilterLanguage {
	case "jsonpath", "jq":
	default:
		return fmt.Errorf("discovery.filter_language must be jsonpath or jq, got %q", c.Discovery.FilterLanguage)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
