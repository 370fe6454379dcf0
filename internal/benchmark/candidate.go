// Package benchmark turns annotated proofs into benchmark records: one
// candidate file per eligible theorem, then a split of mutually dissimilar
// candidates per premise scope.
package benchmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/LLM4Rocq/LLM4Docq/internal/corpus"
	"github.com/LLM4Rocq/LLM4Docq/internal/premise"
	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// ErrMissingDocstring is returned when a declaration has no counterpart in
// the docstring dataset.
var ErrMissingDocstring = errors.New("missing docstring")

// Candidate is a theorem with its annotated proof and the location of its
// source, serialized flat alongside the entry fields.
type Candidate struct {
	rocq.Entry
	Steps        []premise.AnnotatedStep `json:"steps"`
	Parent       string                  `json:"parent"`
	RelativeName string                  `json:"relative_name"`
	FQN          string                  `json:"fqn"`
	Workspace    string                  `json:"workspace"`
	FilePath     string                  `json:"filepath"`
}

// NewCandidate builds the record for p. workspace is the library root the
// unit's source lives under.
func NewCandidate(p premise.AnnotatedProof, workspace string) Candidate {
	rel := p.Entry.QualifiedName
	if rel == "" {
		rel = p.Entry.Name
	}
	return Candidate{
		Entry:        *p.Entry,
		Steps:        p.Steps,
		Parent:       p.Unit,
		RelativeName: rel,
		FQN:          p.Unit + "." + rel,
		Workspace:    workspace,
		FilePath:     corpus.UnitPath(workspace, p.Unit),
	}
}

// FileName is the name the candidate is stored under, with dots replaced.
func (c Candidate) FileName() string {
	return fmt.Sprintf("term_%s_%s.json",
		strings.ReplaceAll(c.Parent, ".", "_"),
		strings.ReplaceAll(c.RelativeName, ".", "_"))
}

// Document is the text used to compare candidates: the docstring, or the
// statement when there is none.
func (c Candidate) Document() string {
	if c.Docstring != "" {
		return c.Docstring
	}
	return c.Text
}

// Candidates keeps the eligible proofs.
func Candidates(proofs []premise.AnnotatedProof, minSteps int, workspace string) []Candidate {
	var out []Candidate
	for _, p := range proofs {
		if p.Eligible(minSteps) {
			out = append(out, NewCandidate(p, workspace))
		}
	}
	return out
}

// WriteCandidates stores each candidate under its file name, leaving files
// that already exist untouched. It returns the number of files written.
func WriteCandidates(w *corpus.AtomicWriter, cands []Candidate) (int, error) {
	written := 0
	for _, c := range cands {
		name := c.FileName()
		if w.Exists(name) {
			continue
		}
		if err := w.WriteJSON(name, c); err != nil {
			return written, fmt.Errorf("write candidate %s: %w", c.FQN, err)
		}
		written++
	}
	return written, nil
}

// LoadCandidates reads every candidate file in dir, ordered by file name.
func LoadCandidates(dir string) ([]Candidate, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "term_*.json"))
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	slices.Sort(paths)

	cands := make([]Candidate, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read candidate: %w", err)
		}
		var c Candidate
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse candidate %s: %w", path, err)
		}
		c.QualifiedName = c.RelativeName
		cands = append(cands, c)
	}
	return cands, nil
}

// MergeDocstrings copies the docstring of every entry in target from the
// entry with the same unit and qualified name in source. Every target entry
// must have a counterpart.
func MergeDocstrings(target, source rocq.Dataset) error {
	for _, unit := range target.Units() {
		for _, fqn := range target.Names(unit) {
			from, ok := source[unit][fqn]
			if !ok || from == nil {
				return fmt.Errorf("%w for %s in %s", ErrMissingDocstring, fqn, unit)
			}
			if e := target[unit][fqn]; e != nil {
				e.Docstring = from.Docstring
			}
		}
	}
	return nil
}
