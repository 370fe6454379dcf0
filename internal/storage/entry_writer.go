package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/LLM4Rocq/LLM4Docq/internal/premise"
	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// WriteEntries stores every entry of ds under runID.
func (s *Store) WriteEntries(runID string, ds rocq.Dataset) error {
	if ds.Len() == 0 {
		return nil
	}

	return s.withTx(func(runner sq.BaseRunner) error {
		for _, unit := range ds.Units() {
			for _, fqn := range ds.Names(unit) {
				e := ds[unit][fqn]
				if e == nil {
					continue
				}
				_, err := sq.Insert("entries").
					Columns("run_id", "unit", "fqn", "name", "kind", "docstring", "start_line", "end_line", "statement", "proof").
					Values(runID, unit, fqn, e.Name, string(e.Kind), e.Docstring, e.StartLine, e.EndLine, e.Text, nullableString(e.Proof)).
					RunWith(runner).
					Exec()
				if err != nil {
					return fmt.Errorf("failed to insert entry %s in %s: %w", fqn, unit, err)
				}
			}
		}
		return nil
	})
}

// WriteAnnotations stores the steps of every proof and the premises of every
// step under runID.
func (s *Store) WriteAnnotations(runID string, proofs []premise.AnnotatedProof) error {
	if len(proofs) == 0 {
		return nil
	}

	return s.withTx(func(runner sq.BaseRunner) error {
		for _, p := range proofs {
			fqn := p.Entry.QualifiedName
			if fqn == "" {
				fqn = p.Entry.Name
			}
			for i, step := range p.Steps {
				_, err := sq.Insert("steps").
					Columns("run_id", "unit", "fqn", "step_index", "text", "is_valid").
					Values(runID, p.Unit, fqn, i, step.Text, boolToInt(step.Valid)).
					RunWith(runner).
					Exec()
				if err != nil {
					return fmt.Errorf("failed to insert step %d of %s: %w", i, fqn, err)
				}

				if err := insertPremises(runner, runID, p.Unit, fqn, i, scopeLocal, step.Premises.Local); err != nil {
					return err
				}
				if err := insertPremises(runner, runID, p.Unit, fqn, i, scopeForeign, step.Premises.Foreign); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Premise scopes as stored.
const (
	scopeLocal   = "current_file"
	scopeForeign = "outside_file"
)

func insertPremises(runner sq.BaseRunner, runID, unit, fqn string, stepIndex int, scope string, refs []premise.Reference) error {
	for _, ref := range refs {
		_, err := sq.Insert("premises").
			Columns("run_id", "unit", "fqn", "step_index", "scope", "ref_unit", "ref_name").
			Values(runID, unit, fqn, stepIndex, scope, ref.Unit, ref.RelativeName).
			RunWith(runner).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert premise %s of %s: %w", ref.RelativeName, fqn, err)
		}
	}
	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
