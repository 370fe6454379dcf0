package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/LLM4Rocq/LLM4Docq/internal/config"
	"github.com/LLM4Rocq/LLM4Docq/internal/metrics"
	"github.com/LLM4Rocq/LLM4Docq/internal/storage"
)

var (
	cfgFile     string
	verbose     bool
	quietFlag   bool
	metricsFile string

	logger   = zap.NewNop()
	logLevel = zap.NewAtomicLevel()
	registry = metrics.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docq",
	Short: "docq - Rocq library skeletons and proof-step premises",
	Long: `docq extracts the declarations of a Rocq/Coq library, resolves which
library constants each proof step refers to, and builds documentation and
premise-selection benchmarks from the result.

Typical pipeline:
  docq preprocess     # strip proofs and comments from a library copy
  docq skeleton       # every named declaration, with line ranges
  docq statements     # every proved theorem, with its proof
  docq premises       # annotate proof steps with their premises
  docq select         # pick a diverse benchmark split`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		zapConfig.Level = logLevel
		if verbose {
			logLevel.SetLevel(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer func() { _ = logger.Sync() }()
		if metricsFile == "" {
			return nil
		}
		if err := registry.WriteFile(metricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .docq/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write run metrics to this file in Prometheus text format")
}

// loadConfig loads the project configuration and applies its log level
// unless --verbose is set.
func loadConfig() (*config.Config, error) {
	var opts []config.LoaderOption
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if !verbose {
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err == nil {
			logLevel.SetLevel(level)
		}
	}
	return cfg, nil
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openStore opens the configured database, or returns nil when persistence
// is disabled.
func openStore(cfg *config.Config) (*storage.Store, error) {
	if cfg.Storage.Database == "" {
		return nil, nil
	}
	store, err := storage.Open(cfg.Storage.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// printf writes to stdout unless --quiet is set.
func printf(format string, args ...any) {
	if quietFlag {
		return
	}
	fmt.Printf(format, args...)
}
