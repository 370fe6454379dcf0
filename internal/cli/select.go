package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LLM4Rocq/LLM4Docq/internal/benchmark"
	"github.com/LLM4Rocq/LLM4Docq/internal/corpus"
)

var (
	selectInput        string
	selectOutput       string
	selectNumDocuments int
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick a diverse benchmark split from the candidates",
	Long: `Select reads the candidates written by "docq premises" and builds two
splits. In the current_file split each proof is cut after its first valid
step that uses a premise of its own unit; in the outside_file split, after
its first valid step that uses a premise of another unit.

Each split keeps up to benchmark.num_documents candidates, chosen greedily so
that their docstrings (or statements, when undocumented) are as dissimilar
as possible. The result is written to <output>/result.json.

Examples:
  docq select
  docq select --num-documents 50
`,
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)
	selectCmd.Flags().StringVar(&selectInput, "input", "", "candidate directory (default <export_dir>/premises)")
	selectCmd.Flags().StringVar(&selectOutput, "output", "", "output directory (default <export_dir>/select)")
	selectCmd.Flags().IntVarP(&selectNumDocuments, "num-documents", "n", 0, "candidates per split (default benchmark.num_documents)")
}

func runSelect(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	n := cfg.Benchmark.NumDocuments
	if selectNumDocuments > 0 {
		n = selectNumDocuments
	}

	input := stageDir(cfg, selectInput, "premises")
	cands, err := benchmark.LoadCandidates(input)
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		return fmt.Errorf("no candidates found in %s", filepath.Clean(input))
	}

	split, err := benchmark.BuildSplit(ctx, cands, n)
	if err != nil {
		return err
	}

	w, err := corpus.NewAtomicWriter(stageDir(cfg, selectOutput, "select"))
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	defer w.Close()
	if err := w.WriteJSON(corpus.ResultFile, split); err != nil {
		return err
	}

	printf("✓ Selected %s current_file and %s outside_file proofs from %s candidates\n",
		formatNumber(len(split.Local)), formatNumber(len(split.Foreign)), formatNumber(len(cands)))
	return nil
}
