package cli

import (
	"github.com/spf13/cobra"

	"github.com/LLM4Rocq/LLM4Docq/internal/benchmark"
	"github.com/LLM4Rocq/LLM4Docq/internal/corpus"
)

var (
	statementsInput      string
	statementsOutput     string
	statementsDocstrings string
)

// statementsCmd represents the statements command
var statementsCmd = &cobra.Command{
	Use:   "statements",
	Short: "Extract every proved Lemma, Fact and Theorem with its proof",
	Long: `Statements strips comments from every unit, checks that its proof blocks
are balanced, and extracts each Lemma, Fact and Theorem followed by a
"Proof. ... Qed." or "Proof. ... Abort." block.

With --docstrings, each extracted entry takes its docstring from the entry
with the same unit and qualified name in an earlier dataset; an entry
without a counterpart is an error.

Examples:
  docq statements
  docq statements --docstrings export/output/docstrings/result.json
`,
	RunE: runStatements,
}

func init() {
	rootCmd.AddCommand(statementsCmd)
	statementsCmd.Flags().StringVar(&statementsInput, "input", "", "library root (default paths.library_dir)")
	statementsCmd.Flags().StringVar(&statementsOutput, "output", "", "output root (default <export_dir>/statements)")
	statementsCmd.Flags().StringVar(&statementsDocstrings, "docstrings", "", "dataset to take docstrings from")
}

func runStatements(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner, err := newStageRunner(cfg, corpus.Statements(),
		libraryDir(cfg, statementsInput),
		stageDir(cfg, statementsOutput, corpus.StageStatements))
	if err != nil {
		return err
	}

	res, err := runner.runAll(ctx)
	if err != nil {
		return err
	}

	if statementsDocstrings != "" {
		docstrings, err := corpus.LoadDataset(statementsDocstrings)
		if err != nil {
			return err
		}
		if err := benchmark.MergeDocstrings(res.Dataset, docstrings); err != nil {
			return err
		}
	}

	if err := runner.write(res); err != nil {
		return err
	}
	printKindCounts(res.Dataset)

	return persistDataset(cfg, corpus.StageStatements, res.Dataset)
}
