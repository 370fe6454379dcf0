// Package config loads docq configuration from .docq/config.yml with
// DOCQ_* environment variable overrides.
//
// Priority, highest first:
//  1. Environment variables (DOCQ_PREMISES_MIN_STEPS, ...)
//  2. Config file (.docq/config.yml, or the file given with --config)
//  3. Built-in defaults
package config

import (
	"github.com/LLM4Rocq/LLM4Docq/internal/benchmark"
	"github.com/LLM4Rocq/LLM4Docq/internal/chunk"
	"github.com/LLM4Rocq/LLM4Docq/internal/corpus"
	"github.com/LLM4Rocq/LLM4Docq/internal/premise"
)

// Config represents the complete docq configuration.
type Config struct {
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Premises   PremisesConfig   `yaml:"premises" mapstructure:"premises"`
	Chunking   ChunkingConfig   `yaml:"chunking" mapstructure:"chunking"`
	Benchmark  BenchmarkConfig  `yaml:"benchmark" mapstructure:"benchmark"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// PathsConfig locates the library and the output, and selects the units.
type PathsConfig struct {
	LibraryDir string   `yaml:"library_dir" mapstructure:"library_dir"` // root of the .v sources
	ExportDir  string   `yaml:"export_dir" mapstructure:"export_dir"`   // root of all stage outputs
	Include    []string `yaml:"include" mapstructure:"include"`         // glob patterns for units
	Ignore     []string `yaml:"ignore" mapstructure:"ignore"`           // glob patterns to skip
}

// ExtractionConfig tunes the stage runner.
type ExtractionConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // units processed concurrently
}

// PremisesConfig tunes premise resolution.
type PremisesConfig struct {
	MaxConstants  int `yaml:"max_constants" mapstructure:"max_constants"`
	MinSteps      int `yaml:"min_steps" mapstructure:"min_steps"`
	MinNameLength int `yaml:"min_name_length" mapstructure:"min_name_length"`
	CacheSize     int `yaml:"cache_size" mapstructure:"cache_size"` // 0 disables the step cache
}

// ChunkingConfig bounds line-range chunks.
type ChunkingConfig struct {
	ChunkSize      int `yaml:"chunk_size" mapstructure:"chunk_size"`
	Overlap        int `yaml:"overlap" mapstructure:"overlap"`
	MaxAnnotations int `yaml:"max_annotations" mapstructure:"max_annotations"`
}

// BenchmarkConfig sizes the benchmark split.
type BenchmarkConfig struct {
	NumDocuments int `yaml:"num_documents" mapstructure:"num_documents"`
}

// StorageConfig enables SQLite persistence of runs.
type StorageConfig struct {
	Database string `yaml:"database" mapstructure:"database"` // empty disables persistence
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	premises := premise.DefaultOptions()
	chunking := chunk.DefaultOptions()
	return &Config{
		Paths: PathsConfig{
			LibraryDir: "export/mathcomp",
			ExportDir:  "export/output",
			Include:    []string{"**/*.v"},
			Ignore: []string{
				".git/**",
				"_build/**",
				".docq/**",
			},
		},
		Extraction: ExtractionConfig{
			Workers: corpus.DefaultWorkers,
		},
		Premises: PremisesConfig{
			MaxConstants:  premises.MaxConstants,
			MinSteps:      premises.MinSteps,
			MinNameLength: premises.MinNameLength,
			CacheSize:     premises.CacheSize,
		},
		Chunking: ChunkingConfig{
			ChunkSize:      chunking.ChunkSize,
			Overlap:        chunking.Overlap,
			MaxAnnotations: chunking.MaxAnnotations,
		},
		Benchmark: BenchmarkConfig{
			NumDocuments: benchmark.DefaultNumDocuments,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// PremiseOptions converts the premises section for the resolver.
func (c *Config) PremiseOptions() premise.Options {
	return premise.Options{
		MaxConstants:  c.Premises.MaxConstants,
		MinNameLength: c.Premises.MinNameLength,
		MinSteps:      c.Premises.MinSteps,
		CacheSize:     c.Premises.CacheSize,
	}
}

// ChunkOptions converts the chunking section for the splitter.
func (c *Config) ChunkOptions() chunk.Options {
	return chunk.Options{
		ChunkSize:      c.Chunking.ChunkSize,
		Overlap:        c.Chunking.Overlap,
		MaxAnnotations: c.Chunking.MaxAnnotations,
	}
}
