package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LLM4Rocq/LLM4Docq/internal/corpus"
	"github.com/LLM4Rocq/LLM4Docq/internal/search"
)

var (
	searchDataset string
	searchKind    string
	searchUnit    string
	searchLimit   int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Keyword search over the declarations of a dataset",
	Long: `Search indexes the docstrings and statements of a dataset in memory and
runs a query against them. The query uses bleve query-string syntax:
"+commutative -nat", "name:addn*", "\"matrix product\"".

Examples:
  docq search commutative
  docq search --kind Lemma --limit 5 "addn mul"
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchDataset, "dataset", "", "dataset to search (default <export_dir>/skeleton)")
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "only declarations of this kind")
	searchCmd.Flags().StringVar(&searchUnit, "unit", "", "only declarations of this unit")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", search.DefaultLimit, "maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ds, err := corpus.LoadDataset(stageDir(cfg, searchDataset, corpus.StageSkeleton))
	if err != nil {
		return err
	}

	idx, err := search.NewIndex(ctx, search.EntryDocuments(ds))
	if err != nil {
		return err
	}
	defer idx.Close()

	results, err := idx.Search(ctx, strings.Join(args, " "), &search.Options{
		Limit: searchLimit,
		Kind:  searchKind,
		Unit:  searchUnit,
	})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No matches")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-8.3f %s  %s (%s)\n", r.Score, r.Document.Unit, r.Document.Name, r.Document.Kind)
		for _, h := range r.Highlights {
			fmt.Printf("         %s\n", strings.ReplaceAll(h, "\n", " "))
		}
	}
	return nil
}
