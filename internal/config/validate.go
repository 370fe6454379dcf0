package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

var (
	// ErrEmptyPath indicates a missing library or export directory
	ErrEmptyPath = errors.New("empty path")

	// ErrEmptyPatterns indicates no include patterns
	ErrEmptyPatterns = errors.New("empty include patterns")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidPremises indicates invalid premise resolution settings
	ErrInvalidPremises = errors.New("invalid premise settings")

	// ErrInvalidChunkSize indicates invalid chunk size configuration
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidOverlap indicates invalid overlap configuration
	ErrInvalidOverlap = errors.New("invalid overlap")

	// ErrInvalidNumDocuments indicates a non-positive benchmark size
	ErrInvalidNumDocuments = errors.New("invalid number of documents")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	for _, check := range []func(*Config) error{
		validatePaths,
		validateExtraction,
		validatePremises,
		validateChunking,
		validateBenchmark,
		validateLogging,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validatePaths(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Paths.LibraryDir) == "" {
		errs = append(errs, fmt.Errorf("%w: library_dir is required", ErrEmptyPath))
	}
	if strings.TrimSpace(cfg.Paths.ExportDir) == "" {
		errs = append(errs, fmt.Errorf("%w: export_dir is required", ErrEmptyPath))
	}
	if len(cfg.Paths.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one pattern required", ErrEmptyPatterns))
	}

	return joinErrors(errs)
}

func validateExtraction(cfg *Config) error {
	if cfg.Extraction.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Extraction.Workers)
	}
	return nil
}

func validatePremises(cfg *Config) error {
	var errs []error
	p := cfg.Premises

	if p.MaxConstants < 1 {
		errs = append(errs, fmt.Errorf("%w: max_constants must be at least 1, got %d", ErrInvalidPremises, p.MaxConstants))
	}
	if p.MinSteps < 0 {
		errs = append(errs, fmt.Errorf("%w: min_steps cannot be negative, got %d", ErrInvalidPremises, p.MinSteps))
	}
	if p.MinNameLength < 0 {
		errs = append(errs, fmt.Errorf("%w: min_name_length cannot be negative, got %d", ErrInvalidPremises, p.MinNameLength))
	}
	if p.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidPremises, p.CacheSize))
	}

	return joinErrors(errs)
}

func validateChunking(cfg *Config) error {
	var errs []error
	c := cfg.Chunking

	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunkSize, c.ChunkSize))
	}
	if c.MaxAnnotations <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_annotations must be positive, got %d", ErrInvalidChunkSize, c.MaxAnnotations))
	}
	if c.Overlap < 0 {
		errs = append(errs, fmt.Errorf("%w: overlap cannot be negative, got %d", ErrInvalidOverlap, c.Overlap))
	}
	if c.ChunkSize > 0 && c.Overlap >= c.ChunkSize {
		errs = append(errs, fmt.Errorf("%w: overlap (%d) should be less than chunk_size (%d)", ErrInvalidOverlap, c.Overlap, c.ChunkSize))
	}

	return joinErrors(errs)
}

func validateBenchmark(cfg *Config) error {
	if cfg.Benchmark.NumDocuments <= 0 {
		return fmt.Errorf("%w: num_documents must be positive, got %d", ErrInvalidNumDocuments, cfg.Benchmark.NumDocuments)
	}
	return nil
}

func validateLogging(cfg *Config) error {
	if _, err := zapcore.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.Logging.Level)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
