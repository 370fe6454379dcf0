package corpus

import "time"

// Stats summarizes one stage run.
type Stats struct {
	Stage    string
	Units    int
	Entries  int
	Duration time.Duration
}

// ProgressReporter provides callbacks for reporting stage progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when unit discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when unit discovery finishes.
	OnDiscoveryComplete(units int)

	// OnProcessingStart is called before units are processed.
	OnProcessingStart(stage string, total int)

	// OnUnitProcessed is called after each unit, from any worker.
	OnUnitProcessed(unit string)

	// OnWriting is called when results start being written.
	OnWriting()

	// OnComplete is called when the stage completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                         {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(units int)             {}
func (n *NoOpProgressReporter) OnProcessingStart(stage string, total int) {}
func (n *NoOpProgressReporter) OnUnitProcessed(unit string)               {}
func (n *NoOpProgressReporter) OnWriting()                                {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)                   {}
