package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Dir is the per-project configuration directory.
const Dir = ".docq"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// LoaderOption configures a Loader.
type LoaderOption func(*loader)

// WithConfigFile reads path instead of searching .docq/ under the root. The
// file must exist.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) {
		l.configFile = path
	}
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DOCQ_*)
// 2. Config file (.docq/config.yml or .docq/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, Dir))
	}

	// Replace . with _ in env var names (e.g., DOCQ_PREMISES_MIN_STEPS)
	v.SetEnvPrefix("DOCQ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range envKeys {
		v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when searching; an explicit one must exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// envKeys are the scalar keys that can be overridden from the environment.
var envKeys = []string{
	"paths.library_dir",
	"paths.export_dir",
	"extraction.workers",
	"premises.max_constants",
	"premises.min_steps",
	"premises.min_name_length",
	"premises.cache_size",
	"chunking.chunk_size",
	"chunking.overlap",
	"chunking.max_annotations",
	"benchmark.num_documents",
	"storage.database",
	"logging.level",
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.library_dir", defaults.Paths.LibraryDir)
	v.SetDefault("paths.export_dir", defaults.Paths.ExportDir)
	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("extraction.workers", defaults.Extraction.Workers)

	v.SetDefault("premises.max_constants", defaults.Premises.MaxConstants)
	v.SetDefault("premises.min_steps", defaults.Premises.MinSteps)
	v.SetDefault("premises.min_name_length", defaults.Premises.MinNameLength)
	v.SetDefault("premises.cache_size", defaults.Premises.CacheSize)

	v.SetDefault("chunking.chunk_size", defaults.Chunking.ChunkSize)
	v.SetDefault("chunking.overlap", defaults.Chunking.Overlap)
	v.SetDefault("chunking.max_annotations", defaults.Chunking.MaxAnnotations)

	v.SetDefault("benchmark.num_documents", defaults.Benchmark.NumDocuments)

	v.SetDefault("storage.database", defaults.Storage.Database)

	v.SetDefault("logging.level", defaults.Logging.Level)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig(opts ...LoaderOption) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd, opts...).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string, opts ...LoaderOption) (*Config, error) {
	return NewLoader(rootDir, opts...).Load()
}
