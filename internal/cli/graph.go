package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LLM4Rocq/LLM4Docq/internal/premise"
)

var (
	graphSkeleton   string
	graphStatements string
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show which units cite premises from which other units",
	Long: `Graph annotates the statements like "docq premises" and prints the unit
dependency graph induced by outside_file premises, dependencies before the
units that use them. Groups of units that cite each other are reported as
cycles.

Examples:
  docq graph
`,
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addDatasetFlags(graphCmd, &graphSkeleton, &graphStatements)
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	proofs, err := annotate(ctx, cfg, graphSkeleton, graphStatements)
	if err != nil {
		return err
	}

	g, err := premise.NewDependencyGraph(proofs)
	if err != nil {
		return err
	}

	cycles, err := g.Cycles()
	if err != nil {
		return err
	}
	for _, c := range cycles {
		fmt.Printf("cycle: %s\n", strings.Join(c, " <-> "))
	}

	order, err := g.Order()
	if err != nil {
		// Cyclic graphs have no dependency order; fall back to sorted units.
		if order, err = g.Units(); err != nil {
			return err
		}
	}
	for _, unit := range order {
		deps, err := g.Dependencies(unit)
		if err != nil {
			return err
		}
		if len(deps) == 0 {
			fmt.Println(unit)
			continue
		}
		fmt.Printf("%s -> %s\n", unit, strings.Join(deps, ", "))
	}
	return nil
}
