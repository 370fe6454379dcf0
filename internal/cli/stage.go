package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/LLM4Rocq/LLM4Docq/internal/config"
	"github.com/LLM4Rocq/LLM4Docq/internal/corpus"
	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// stageDir returns dir when set, otherwise the named directory under the
// configured export root.
func stageDir(cfg *config.Config, dir, name string) string {
	if dir != "" {
		return dir
	}
	return filepath.Join(cfg.Paths.ExportDir, name)
}

// libraryDir returns dir when set, otherwise the configured library root.
func libraryDir(cfg *config.Config, dir string) string {
	if dir != "" {
		return dir
	}
	return cfg.Paths.LibraryDir
}

// stageRunner runs a corpus stage from an input tree to an output tree.
type stageRunner struct {
	cfg       *config.Config
	stage     corpus.Stage
	input     string
	output    string
	progress  corpus.ProgressReporter
	discovery *corpus.Discovery
	processor *corpus.Processor
}

func newStageRunner(cfg *config.Config, stage corpus.Stage, input, output string) (*stageRunner, error) {
	d, err := corpus.NewDiscovery(input, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery: %w", err)
	}
	progress := NewCLIProgressReporter(quietFlag)
	return &stageRunner{
		cfg:       cfg,
		stage:     stage,
		input:     input,
		output:    output,
		progress:  progress,
		discovery: d,
		processor: corpus.NewProcessor(cfg.Extraction.Workers,
			corpus.WithLogger(logger),
			corpus.WithMetrics(registry),
			corpus.WithProgress(progress)),
	}, nil
}

// runAll processes every discovered unit.
func (r *stageRunner) runAll(ctx context.Context) (*corpus.Result, error) {
	r.progress.OnDiscoveryStart()
	paths, err := r.discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("failed to discover units: %w", err)
	}
	r.progress.OnDiscoveryComplete(len(paths))

	return r.run(ctx, paths)
}

// run processes the given units and reports completion.
func (r *stageRunner) run(ctx context.Context, paths []string) (*corpus.Result, error) {
	start := time.Now()
	res, err := r.processor.Run(ctx, r.stage, r.input, paths)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s cancelled", r.stage.Name)
		}
		return nil, fmt.Errorf("%s failed: %w", r.stage.Name, err)
	}

	r.progress.OnComplete(&corpus.Stats{
		Stage:    r.stage.Name,
		Units:    len(res.Units),
		Entries:  res.Entries(),
		Duration: time.Since(start),
	})
	return res, nil
}

// write stores the rewritten units and the dataset under the output tree.
func (r *stageRunner) write(res *corpus.Result) error {
	r.progress.OnWriting()

	w, err := corpus.NewAtomicWriter(r.output)
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	defer w.Close()

	if err := corpus.WriteResult(w, res); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	logger.Info("results written",
		zap.String("stage", r.stage.Name),
		zap.String("output", r.output))
	return nil
}

// persistDataset records ds as a new run of command when storage is enabled.
func persistDataset(cfg *config.Config, command string, ds rocq.Dataset) error {
	store, err := openStore(cfg)
	if err != nil || store == nil {
		return err
	}
	defer store.Close()

	runID, err := store.BeginRun(command)
	if err != nil {
		return err
	}
	if err := store.WriteEntries(runID, ds); err != nil {
		return fmt.Errorf("failed to persist entries: %w", err)
	}
	logger.Info("run persisted",
		zap.String("command", command),
		zap.String("run_id", runID),
		zap.Int("entries", ds.Len()))
	return nil
}
