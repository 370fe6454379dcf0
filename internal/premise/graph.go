package premise

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dominikbraun/graph"
)

// DependencyGraph records which units cite premises from which other units.
// An edge a -> b means a proof in a uses a declaration of b.
type DependencyGraph struct {
	g graph.Graph[string, string]
}

// NewDependencyGraph builds the unit graph induced by foreign premises.
func NewDependencyGraph(proofs []AnnotatedProof) (*DependencyGraph, error) {
	g := graph.New(graph.StringHash, graph.Directed())

	addVertex := func(unit string) error {
		if err := g.AddVertex(unit); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return fmt.Errorf("add unit %s: %w", unit, err)
		}
		return nil
	}

	for _, p := range proofs {
		if err := addVertex(p.Unit); err != nil {
			return nil, err
		}
		for _, step := range p.Steps {
			for _, ref := range step.Premises.Foreign {
				if err := addVertex(ref.Unit); err != nil {
					return nil, err
				}
				if err := g.AddEdge(p.Unit, ref.Unit); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
					return nil, fmt.Errorf("add dependency %s -> %s: %w", p.Unit, ref.Unit, err)
				}
			}
		}
	}
	return &DependencyGraph{g: g}, nil
}

// Units returns every unit in the graph in sorted order.
func (d *DependencyGraph) Units() ([]string, error) {
	adj, err := d.g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("read adjacency: %w", err)
	}
	units := make([]string, 0, len(adj))
	for u := range adj {
		units = append(units, u)
	}
	slices.Sort(units)
	return units, nil
}

// Dependencies returns the units cited by unit, sorted.
func (d *DependencyGraph) Dependencies(unit string) ([]string, error) {
	adj, err := d.g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("read adjacency: %w", err)
	}
	edges, ok := adj[unit]
	if !ok {
		return nil, fmt.Errorf("unit %s: %w", unit, graph.ErrVertexNotFound)
	}
	deps := make([]string, 0, len(edges))
	for target := range edges {
		deps = append(deps, target)
	}
	slices.Sort(deps)
	return deps, nil
}

// Cycles returns the groups of units that cite each other, each group
// sorted, groups ordered by their first unit.
func (d *DependencyGraph) Cycles() ([][]string, error) {
	components, err := graph.StronglyConnectedComponents(d.g)
	if err != nil {
		return nil, fmt.Errorf("strongly connected components: %w", err)
	}
	var cycles [][]string
	for _, c := range components {
		if len(c) < 2 {
			continue
		}
		slices.Sort(c)
		cycles = append(cycles, c)
	}
	slices.SortFunc(cycles, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return cycles, nil
}

// Order returns the units so that every unit comes after the units it cites.
// It fails when the graph has a cycle.
func (d *DependencyGraph) Order() ([]string, error) {
	order, err := graph.StableTopologicalSort(d.g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("topological sort: %w", err)
	}
	slices.Reverse(order)
	return order, nil
}
