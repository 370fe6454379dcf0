package cli

import (
	"github.com/spf13/cobra"

	"github.com/LLM4Rocq/LLM4Docq/internal/corpus"
)

var (
	preprocessInput  string
	preprocessOutput string
)

// preprocessCmd represents the preprocess command
var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Strip proofs and comments from a copy of the library",
	Long: `Preprocess writes a copy of every unit with its proofs removed, its
comments removed and runs of blank lines squeezed to one.

Each unit is first checked for balanced proof blocks: every "Proof." must be
closed by "Qed." or "Abort.". The run stops at the first unit
that fails the check.

Examples:
  # Preprocess the configured library into <export_dir>/preprocess
  docq preprocess

  # Choose the directories explicitly
  docq preprocess --input export/mathcomp --output export/output/step_0
`,
	RunE: runPreprocess,
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
	preprocessCmd.Flags().StringVar(&preprocessInput, "input", "", "library root (default paths.library_dir)")
	preprocessCmd.Flags().StringVar(&preprocessOutput, "output", "", "output root (default <export_dir>/preprocess)")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner, err := newStageRunner(cfg, corpus.Preprocess(),
		libraryDir(cfg, preprocessInput),
		stageDir(cfg, preprocessOutput, corpus.StagePreprocess))
	if err != nil {
		return err
	}

	res, err := runner.runAll(ctx)
	if err != nil {
		return err
	}
	return runner.write(res)
}
