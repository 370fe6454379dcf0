package cli

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/LLM4Rocq/LLM4Docq/internal/corpus"
	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// CLIProgressReporter implements progress reporting with progress bars.
// OnUnitProcessed may be called from several workers at once.
type CLIProgressReporter struct {
	quiet   bool
	mu      sync.Mutex
	unitBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering units...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(units int) {
	if c.quiet {
		return
	}
	log.Printf("Found %s units\n", formatNumber(units))
}

func (c *CLIProgressReporter) OnProcessingStart(stage string, total int) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.unitBar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(fmt.Sprintf("Running %s", stage)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("units/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnUnitProcessed(unit string) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unitBar != nil {
		c.unitBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnWriting() {
	if c.quiet {
		return
	}
	c.mu.Lock()
	if c.unitBar != nil {
		c.unitBar.Finish()
		c.unitBar = nil
	}
	c.mu.Unlock()
	log.Println("Writing results...")
}

func (c *CLIProgressReporter) OnComplete(stats *corpus.Stats) {
	if c.quiet {
		return
	}
	fmt.Printf("✓ %s complete: %s units, %s entries in %.1fs\n",
		stats.Stage,
		formatNumber(stats.Units),
		formatNumber(stats.Entries),
		stats.Duration.Seconds())
}

// printKindCounts prints the number of entries of each kind, by kind name.
func printKindCounts(ds rocq.Dataset) {
	counts := ds.KindCounts()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		printf("  %s: %s\n", k, formatNumber(counts[rocq.Kind(k)]))
	}
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 1000 && n > -1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	sign := ""
	if str[0] == '-' {
		sign, str = "-", str[1:]
	}
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return sign + result
}
