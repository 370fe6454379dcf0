package rocq

import (
	"maps"
	"slices"
)

// Dataset maps unit ids to their entry tables (fully qualified name to entry).
// It is the shape of every result.json written by the extraction stages.
type Dataset map[string]map[string]*Entry

// Units returns the unit ids in sorted order.
func (d Dataset) Units() []string {
	return slices.Sorted(maps.Keys(d))
}

// Names returns the fully qualified names of one unit in sorted order.
func (d Dataset) Names(unit string) []string {
	return slices.Sorted(maps.Keys(d[unit]))
}

// Normalize sets QualifiedName on every entry from its key. Datasets read
// back from JSON need this since the field is not serialized.
func (d Dataset) Normalize() {
	for _, entries := range d {
		for fqn, e := range entries {
			if e != nil {
				e.QualifiedName = fqn
			}
		}
	}
}

// Len returns the total number of entries.
func (d Dataset) Len() int {
	n := 0
	for _, entries := range d {
		n += len(entries)
	}
	return n
}

// KindCounts returns the number of entries per kind.
func (d Dataset) KindCounts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, entries := range d {
		for _, e := range entries {
			counts[e.Kind]++
		}
	}
	return counts
}
