package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LLM4Rocq/LLM4Docq/internal/benchmark"
	"github.com/LLM4Rocq/LLM4Docq/internal/config"
	"github.com/LLM4Rocq/LLM4Docq/internal/corpus"
	"github.com/LLM4Rocq/LLM4Docq/internal/premise"
)

var (
	premisesSkeleton   string
	premisesStatements string
	premisesOutput     string
	premisesWorkspace  string
)

// premisesCmd represents the premises command
var premisesCmd = &cobra.Command{
	Use:   "premises",
	Short: "Annotate proof steps with the library constants they use",
	Long: `Premises builds a constant index from a skeleton dataset, splits every proof
of a statements dataset into steps and resolves, for each step, the library
constants it names. Names declared in more than one place are left out of
the index.

A step is valid when it names between one and premises.max_constants
constants. A proof with a valid step and at least premises.min_steps steps is
a benchmark candidate and is written as term_<unit>_<name>.json; existing
candidate files are kept.

Examples:
  docq premises
  docq premises --skeleton out/skeleton --statements out/statements --output out/premises
`,
	RunE: runPremises,
}

func init() {
	rootCmd.AddCommand(premisesCmd)
	addDatasetFlags(premisesCmd, &premisesSkeleton, &premisesStatements)
	premisesCmd.Flags().StringVar(&premisesOutput, "output", "", "candidate directory (default <export_dir>/premises)")
	premisesCmd.Flags().StringVar(&premisesWorkspace, "workspace", "", "library root recorded in candidates (default paths.library_dir)")
}

// addDatasetFlags registers the skeleton and statements dataset flags.
func addDatasetFlags(cmd *cobra.Command, skeleton, statements *string) {
	cmd.Flags().StringVar(skeleton, "skeleton", "", "skeleton dataset (default <export_dir>/skeleton)")
	cmd.Flags().StringVar(statements, "statements", "", "statements dataset (default <export_dir>/statements)")
}

func runPremises(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	proofs, err := annotate(ctx, cfg, premisesSkeleton, premisesStatements)
	if err != nil {
		return err
	}

	stats := premise.Summarize(proofs, cfg.Premises.MinSteps)
	registry.StepsResolved.Add(float64(stats.Steps))
	registry.ValidSteps.Add(float64(stats.ValidSteps))
	registry.EligibleProofs.Add(float64(stats.Eligible))

	output := stageDir(cfg, premisesOutput, "premises")
	w, err := corpus.NewAtomicWriter(output)
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	defer w.Close()

	cands := benchmark.Candidates(proofs, cfg.Premises.MinSteps, libraryDir(cfg, premisesWorkspace))
	written, err := benchmark.WriteCandidates(w, cands)
	if err != nil {
		return err
	}

	printf("✓ Annotated %s proofs (%s steps, %s valid)\n",
		formatNumber(stats.Proofs), formatNumber(stats.Steps), formatNumber(stats.ValidSteps))
	printf("  Premises: %s current file, %s outside file\n",
		formatNumber(stats.Local), formatNumber(stats.Foreign))
	printf("  Number of valid elements: %s (%s new files)\n",
		formatNumber(stats.Eligible), formatNumber(written))

	return persistAnnotations(cfg, proofs)
}

// annotate loads both datasets, indexes the skeleton and annotates every
// statement.
func annotate(ctx context.Context, cfg *config.Config, skeletonPath, statementsPath string) ([]premise.AnnotatedProof, error) {
	skeleton, err := corpus.LoadDataset(stageDir(cfg, skeletonPath, corpus.StageSkeleton))
	if err != nil {
		return nil, err
	}
	statements, err := corpus.LoadDataset(stageDir(cfg, statementsPath, corpus.StageStatements))
	if err != nil {
		return nil, err
	}

	index := premise.NewIndex(skeleton)
	excluded := index.Excluded()
	registry.AmbiguousNames.Set(float64(len(excluded)))
	logger.Info("constant index built",
		zap.Int("constants", index.Len()),
		zap.Int("ambiguous", len(excluded)))

	resolver, err := premise.NewResolver(index, cfg.PremiseOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}
	defer resolver.Close()

	proofs, err := resolver.AnnotateDataset(ctx, statements, cfg.Extraction.Workers)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("annotation cancelled")
		}
		return nil, fmt.Errorf("annotation failed: %w", err)
	}
	return proofs, nil
}

// persistAnnotations records the annotated proofs as a new run when storage
// is enabled.
func persistAnnotations(cfg *config.Config, proofs []premise.AnnotatedProof) error {
	store, err := openStore(cfg)
	if err != nil || store == nil {
		return err
	}
	defer store.Close()

	runID, err := store.BeginRun("premises")
	if err != nil {
		return err
	}
	if err := store.WriteAnnotations(runID, proofs); err != nil {
		return fmt.Errorf("failed to persist annotations: %w", err)
	}
	logger.Info("run persisted", zap.String("command", "premises"), zap.String("run_id", runID))
	return nil
}
