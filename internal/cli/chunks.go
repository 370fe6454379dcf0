package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LLM4Rocq/LLM4Docq/internal/chunk"
	"github.com/LLM4Rocq/LLM4Docq/internal/corpus"
	"github.com/LLM4Rocq/LLM4Docq/internal/storage"
)

var (
	chunksInput  string
	chunksOutput string
)

// chunksCmd represents the chunks command
var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "Split rewritten units into line ranges for documentation",
	Long: `Chunks reads a skeleton output tree (rewritten units plus result.json) and
splits every unit into line ranges of at most chunking.chunk_size lines,
each carrying at most chunking.max_annotations declarations that end inside
it. Consecutive chunks share chunking.overlap lines.

Every chunk is written as <unit>#chunk_<k>.json.

Examples:
  docq chunks
  docq chunks --input out/skeleton --output out/chunks
`,
	RunE: runChunks,
}

func init() {
	rootCmd.AddCommand(chunksCmd)
	chunksCmd.Flags().StringVar(&chunksInput, "input", "", "skeleton output tree (default <export_dir>/skeleton)")
	chunksCmd.Flags().StringVar(&chunksOutput, "output", "", "output directory (default <export_dir>/chunks)")
}

func runChunks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	input := stageDir(cfg, chunksInput, corpus.StageSkeleton)
	ds, err := corpus.LoadDataset(input)
	if err != nil {
		return err
	}

	w, err := corpus.NewAtomicWriter(stageDir(cfg, chunksOutput, "chunks"))
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	defer w.Close()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	var runID string
	if store != nil {
		defer store.Close()
		if runID, err = store.BeginRun("chunks"); err != nil {
			return err
		}
	}

	opts := cfg.ChunkOptions()
	total := 0
	for _, unit := range ds.Units() {
		source, err := os.ReadFile(corpus.UnitPath(input, unit))
		if err != nil {
			return fmt.Errorf("failed to read unit %s: %w", unit, err)
		}

		chunks := chunk.Split(unit, string(source), ds[unit], opts)
		for _, c := range chunks {
			if err := w.WriteJSON(c.FileName(), c); err != nil {
				return err
			}
		}
		if err := persistChunks(store, runID, chunks); err != nil {
			return err
		}

		logger.Debug("unit chunked", zap.String("unit", unit), zap.Int("chunks", len(chunks)))
		total += len(chunks)
	}

	printf("✓ Wrote %s chunks for %s units\n", formatNumber(total), formatNumber(len(ds)))
	return nil
}

func persistChunks(store *storage.Store, runID string, chunks []chunk.Chunk) error {
	if store == nil {
		return nil
	}
	if err := store.WriteChunks(runID, chunks); err != nil {
		return fmt.Errorf("failed to persist chunks: %w", err)
	}
	return nil
}
