// Package premise resolves the constants referenced by proof steps against a
// corpus-wide index of declarations.
package premise

import (
	"maps"
	"slices"

	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// Constant is an indexed declaration together with where it lives.
type Constant struct {
	Unit         string
	RelativeName string // fully qualified name inside Unit
	Entry        *rocq.Entry
}

// Index maps bare declaration names to the single declaration carrying that
// name across the whole corpus. A name seen more than once is excluded for
// good: it never resolves, whichever occurrence came first.
//
// An Index is immutable once built and safe for concurrent readers.
type Index struct {
	constants map[string]Constant
	excluded  map[string]struct{}
}

// NewIndex builds the index from a skeleton dataset in one pass.
func NewIndex(ds rocq.Dataset) *Index {
	idx := &Index{
		constants: make(map[string]Constant),
		excluded:  make(map[string]struct{}),
	}
	for _, unit := range ds.Units() {
		for _, fqn := range ds.Names(unit) {
			e := ds[unit][fqn]
			if e == nil {
				continue
			}
			idx.add(Constant{Unit: unit, RelativeName: fqn, Entry: e})
		}
	}
	return idx
}

func (idx *Index) add(c Constant) {
	name := c.Entry.Name
	if _, ok := idx.excluded[name]; ok {
		return
	}
	if _, ok := idx.constants[name]; ok {
		delete(idx.constants, name)
		idx.excluded[name] = struct{}{}
		return
	}
	idx.constants[name] = c
}

// Lookup returns the declaration named name, if it is unambiguous.
func (idx *Index) Lookup(name string) (Constant, bool) {
	c, ok := idx.constants[name]
	return c, ok
}

// Len returns the number of resolvable names.
func (idx *Index) Len() int {
	return len(idx.constants)
}

// Excluded returns the ambiguous names in sorted order.
func (idx *Index) Excluded() []string {
	return slices.Sorted(maps.Keys(idx.excluded))
}
