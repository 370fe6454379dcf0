package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LLM4Rocq/LLM4Docq/internal/metrics"
	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 8

// UnitError is a failure confined to one unit.
type UnitError struct {
	Unit string
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("unit %s: %v", e.Unit, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// Result is the outcome of running a stage over a set of units.
type Result struct {
	Stage     string
	Units     []Unit            // sorted by id
	Rewritten map[string]string // rewritten text by unit id
	Dataset   rocq.Dataset      // nil for stages that do not extract
}

// Entries returns the number of extracted entries.
func (r *Result) Entries() int {
	return r.Dataset.Len()
}

// Processor runs a stage over many units with a bounded worker pool.
// Units are independent, so one unit never observes another's state.
type Processor struct {
	workers  int
	logger   *zap.Logger
	metrics  *metrics.Registry
	progress ProgressReporter
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records unit outcomes on reg.
func WithMetrics(reg *metrics.Registry) ProcessorOption {
	return func(p *Processor) { p.metrics = reg }
}

// WithProgress sets the progress reporter.
func WithProgress(progress ProgressReporter) ProcessorOption {
	return func(p *Processor) {
		if progress != nil {
			p.progress = progress
		}
	}
}

// NewProcessor creates a processor with at most workers concurrent units.
func NewProcessor(workers int, opts ...ProcessorOption) *Processor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	p := &Processor{
		workers:  workers,
		logger:   zap.NewNop(),
		progress: &NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run applies stage to every unit listed in relPaths (relative to root).
// The first failing unit cancels the run and is returned as a *UnitError.
func (p *Processor) Run(ctx context.Context, stage Stage, root string, relPaths []string) (*Result, error) {
	start := time.Now()
	res := &Result{
		Stage:     stage.Name,
		Rewritten: make(map[string]string, len(relPaths)),
	}
	if stage.Extracts() {
		res.Dataset = make(rocq.Dataset, len(relPaths))
	}

	p.progress.OnProcessingStart(stage.Name, len(relPaths))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, rel := range relPaths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			unit, rewritten, entries, err := p.process(stage, root, rel)
			if err != nil {
				p.recordFailure(stage.Name, unit.ID, err)
				return &UnitError{Unit: unit.ID, Err: err}
			}
			p.recordSuccess(stage.Name, entries)

			mu.Lock()
			res.Units = append(res.Units, unit)
			res.Rewritten[unit.ID] = rewritten
			if res.Dataset != nil {
				res.Dataset[unit.ID] = entries
			}
			mu.Unlock()

			p.progress.OnUnitProcessed(unit.ID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(res.Units, func(a, b Unit) int {
		return strings.Compare(a.ID, b.ID)
	})

	p.logger.Info("stage complete",
		zap.String("stage", stage.Name),
		zap.Int("units", len(res.Units)),
		zap.Int("entries", res.Entries()),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (p *Processor) process(stage Stage, root, rel string) (Unit, string, map[string]*rocq.Entry, error) {
	started := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.StageDuration.WithLabelValues(stage.Name).Observe(time.Since(started).Seconds())
		}
	}()

	unit := Unit{ID: UnitID(rel), RelPath: rel}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return unit, "", nil, fmt.Errorf("read: %w", err)
	}
	unit = NewUnit(rel, string(data))

	rewritten, entries, err := stage.Run(unit.Text)
	if err != nil {
		return unit, "", nil, err
	}

	p.logger.Debug("unit processed",
		zap.String("stage", stage.Name),
		zap.String("unit", unit.ID),
		zap.Int("entries", len(entries)))
	return unit, rewritten, entries, nil
}

func (p *Processor) recordSuccess(stage string, entries map[string]*rocq.Entry) {
	if p.metrics == nil {
		return
	}
	p.metrics.UnitsProcessed.WithLabelValues(stage).Inc()
	for _, e := range entries {
		p.metrics.EntriesExtracted.WithLabelValues(stage, string(e.Kind)).Inc()
	}
}

func (p *Processor) recordFailure(stage, unit string, err error) {
	p.logger.Error("unit failed",
		zap.String("stage", stage),
		zap.String("unit", unit),
		zap.Error(err))
	if p.metrics != nil {
		p.metrics.UnitsFailed.WithLabelValues(stage, metrics.FailureReason(err)).Inc()
	}
}
