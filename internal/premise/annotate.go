package premise

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// AnnotatedStep is a proof step with its premises and validity.
type AnnotatedStep struct {
	Text     string
	Premises Premises
	Valid    bool
}

// MarshalJSON encodes the step as a [text, premises, is_valid] triple.
func (s AnnotatedStep) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Text, s.Premises, s.Valid})
}

// UnmarshalJSON decodes the triple written by MarshalJSON.
func (s *AnnotatedStep) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode step: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("decode step: want 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &s.Text); err != nil {
		return fmt.Errorf("decode step text: %w", err)
	}
	if err := json.Unmarshal(raw[1], &s.Premises); err != nil {
		return fmt.Errorf("decode step premises: %w", err)
	}
	if err := json.Unmarshal(raw[2], &s.Valid); err != nil {
		return fmt.Errorf("decode step validity: %w", err)
	}
	return nil
}

// AnnotatedProof holds every annotated step of one proof-bearing entry.
type AnnotatedProof struct {
	Unit         string
	Entry        *rocq.Entry
	Steps        []AnnotatedStep
	OverallValid bool // at least one step is valid
}

// Eligible reports whether the proof can enter the benchmark: some step is
// valid and the proof has at least minSteps steps.
func (p AnnotatedProof) Eligible(minSteps int) bool {
	return p.OverallValid && len(p.Steps) >= minSteps
}

// Annotate segments the proof of e, a statement of unit, and resolves every step.
func (r *Resolver) Annotate(unit string, e *rocq.Entry) AnnotatedProof {
	proof := AnnotatedProof{Unit: unit, Entry: e}
	for _, step := range rocq.Segment(e.Proof) {
		p := r.Resolve(step.Text, unit)
		valid := r.Valid(p)
		proof.OverallValid = proof.OverallValid || valid
		proof.Steps = append(proof.Steps, AnnotatedStep{Text: step.Text, Premises: p, Valid: valid})
	}
	return proof
}

// AnnotateDataset annotates every statement, fanning out over units with at
// most workers goroutines. Results are ordered by unit, then qualified name.
func (r *Resolver) AnnotateDataset(ctx context.Context, statements rocq.Dataset, workers int) ([]AnnotatedProof, error) {
	units := statements.Units()
	perUnit := make([][]AnnotatedProof, len(units))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, unit := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var proofs []AnnotatedProof
			for _, fqn := range statements.Names(unit) {
				e := statements[unit][fqn]
				if e == nil {
					continue
				}
				proofs = append(proofs, r.Annotate(unit, e))
			}
			perUnit[i] = proofs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []AnnotatedProof
	for _, proofs := range perUnit {
		out = append(out, proofs...)
	}
	return out, nil
}

// Stats summarizes a set of annotated proofs.
type Stats struct {
	Proofs     int
	Eligible   int
	Steps      int
	ValidSteps int
	Local      int
	Foreign    int
}

// Summarize counts proofs, steps and references.
func Summarize(proofs []AnnotatedProof, minSteps int) Stats {
	var s Stats
	for _, p := range proofs {
		s.Proofs++
		if p.Eligible(minSteps) {
			s.Eligible++
		}
		for _, step := range p.Steps {
			s.Steps++
			if step.Valid {
				s.ValidSteps++
			}
			s.Local += len(step.Premises.Local)
			s.Foreign += len(step.Premises.Foreign)
		}
	}
	return s
}
