package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LLM4Rocq/LLM4Docq/internal/corpus"
)

var (
	skeletonInput  string
	skeletonOutput string
	watchFlag      bool
)

// skeletonCmd represents the skeleton command
var skeletonCmd = &cobra.Command{
	Use:   "skeleton",
	Short: "Extract every named declaration of the library",
	Long: `Skeleton extracts every Lemma, Definition, Notation, Fact, Theorem, Record
and Fixpoint of every unit, qualified by its enclosing modules, with the line
range it occupies in the rewritten unit.

The output tree holds the rewritten units and result.json, which maps each
unit id to its entries keyed by qualified name.

Examples:
  # Extract the configured library into <export_dir>/skeleton
  docq skeleton

  # Keep the output up to date while editing the library
  docq skeleton --watch
`,
	RunE: runSkeleton,
}

func init() {
	rootCmd.AddCommand(skeletonCmd)
	skeletonCmd.Flags().StringVar(&skeletonInput, "input", "", "library root (default paths.library_dir)")
	skeletonCmd.Flags().StringVar(&skeletonOutput, "output", "", "output root (default <export_dir>/skeleton)")
	skeletonCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for unit changes and re-extract incrementally")
}

func runSkeleton(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner, err := newStageRunner(cfg, corpus.Skeleton(),
		libraryDir(cfg, skeletonInput),
		stageDir(cfg, skeletonOutput, corpus.StageSkeleton))
	if err != nil {
		return err
	}

	res, err := runner.runAll(ctx)
	if err != nil {
		return err
	}
	if err := runner.write(res); err != nil {
		return err
	}
	printKindCounts(res.Dataset)

	if err := persistDataset(cfg, corpus.StageSkeleton, res.Dataset); err != nil {
		return err
	}

	if !watchFlag {
		return nil
	}
	return watchSkeleton(ctx, runner, res)
}

// watchSkeleton re-extracts changed units and rewrites the output until ctx
// is cancelled. A unit that fails is reported and left as it was.
func watchSkeleton(ctx context.Context, runner *stageRunner, res *corpus.Result) error {
	var mu sync.Mutex
	onChange := func(ctx context.Context, changed []string) {
		mu.Lock()
		defer mu.Unlock()

		var present []string
		for _, rel := range changed {
			_, err := os.Stat(filepath.Join(runner.input, filepath.FromSlash(rel)))
			if errors.Is(err, fs.ErrNotExist) {
				removeUnit(res, corpus.UnitID(rel))
				continue
			}
			present = append(present, rel)
		}

		if len(present) > 0 {
			update, err := runner.run(ctx, present)
			if err != nil {
				logger.Warn("re-extraction failed", zap.Error(err))
				return
			}
			mergeResult(res, update)
		}

		if err := runner.write(res); err != nil {
			logger.Error("failed to write results", zap.Error(err))
			return
		}
		logger.Info("skeleton updated", zap.Strings("units", changed))
	}

	w, err := corpus.NewWatcher(runner.discovery, corpus.DefaultDebounce, onChange, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	printf("Watching %s for changes (Ctrl+C to stop)...\n", runner.input)
	w.Start(ctx)
	<-ctx.Done()
	w.Stop()

	printf("Watch mode stopped\n")
	return nil
}

// mergeResult replaces the units of update in res.
func mergeResult(res, update *corpus.Result) {
	for _, u := range update.Units {
		removeUnit(res, u.ID)
		res.Units = append(res.Units, u)
		res.Rewritten[u.ID] = update.Rewritten[u.ID]
		res.Dataset[u.ID] = update.Dataset[u.ID]
	}
}

func removeUnit(res *corpus.Result, id string) {
	for i, u := range res.Units {
		if u.ID == id {
			res.Units = append(res.Units[:i], res.Units[i+1:]...)
			break
		}
	}
	delete(res.Rewritten, id)
	delete(res.Dataset, id)
}
