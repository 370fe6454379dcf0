package benchmark

import (
	"context"
	"fmt"

	"github.com/LLM4Rocq/LLM4Docq/internal/search"
)

// DefaultNumDocuments is the size of each split.
const DefaultNumDocuments = 200

// Scope selects which premises a split is about.
type Scope string

const (
	ScopeLocal   Scope = "current_file"
	ScopeForeign Scope = "outside_file"
)

// Truncate cuts the proof of c after its first valid step that references a
// premise in scope. It reports false when no step qualifies.
func Truncate(c Candidate, scope Scope) (Candidate, bool) {
	for i, step := range c.Steps {
		refs := step.Premises.Local
		if scope == ScopeForeign {
			refs = step.Premises.Foreign
		}
		if step.Valid && len(refs) > 0 {
			c.Steps = c.Steps[:i+1:i+1]
			return c, true
		}
	}
	return c, false
}

// Split is the benchmark: candidates truncated at a local premise, and
// candidates truncated at a foreign one.
type Split struct {
	Local   []Candidate `json:"current_file"`
	Foreign []Candidate `json:"outside_file"`
}

// BuildSplit truncates every candidate for both scopes and keeps up to n
// mutually dissimilar candidates per scope.
func BuildSplit(ctx context.Context, cands []Candidate, n int) (Split, error) {
	local, err := selectScope(ctx, cands, ScopeLocal, n)
	if err != nil {
		return Split{}, fmt.Errorf("select %s: %w", ScopeLocal, err)
	}
	foreign, err := selectScope(ctx, cands, ScopeForeign, n)
	if err != nil {
		return Split{}, fmt.Errorf("select %s: %w", ScopeForeign, err)
	}
	return Split{Local: local, Foreign: foreign}, nil
}

func selectScope(ctx context.Context, cands []Candidate, scope Scope, n int) ([]Candidate, error) {
	var pool []Candidate
	var docs []string
	for _, c := range cands {
		if t, ok := Truncate(c, scope); ok {
			pool = append(pool, t)
			docs = append(docs, c.Document())
		}
	}

	picked, err := search.SelectDiverse(ctx, docs, n)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(picked))
	for _, i := range picked {
		out = append(out, pool[i])
	}
	return out, nil
}
