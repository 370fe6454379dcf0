package premise

import (
	"encoding/json"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/maypok86/otter"
)

// Resolver defaults
const (
	DefaultMaxConstants  = 1
	DefaultMinNameLength = 4
	DefaultMinSteps      = 3
	DefaultCacheSize     = 10_000
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9.@_]+`)

// Options tunes premise resolution.
type Options struct {
	MaxConstants  int // a step is valid with 1..MaxConstants references
	MinNameLength int // shorter names are ignored as noise
	MinSteps      int // minimum proof length for benchmark eligibility
	CacheSize     int // memoized steps; 0 disables the cache
}

// DefaultOptions returns the settings used to build the benchmark.
func DefaultOptions() Options {
	return Options{
		MaxConstants:  DefaultMaxConstants,
		MinNameLength: DefaultMinNameLength,
		MinSteps:      DefaultMinSteps,
		CacheSize:     DefaultCacheSize,
	}
}

// Reference points at a premise: owning unit, name inside that unit and the
// declaration text.
type Reference struct {
	Unit         string
	RelativeName string
	Statement    string
}

// MarshalJSON encodes a reference as a [unit, relative_name, statement] triple.
func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{r.Unit, r.RelativeName, r.Statement})
}

// UnmarshalJSON decodes the triple written by MarshalJSON.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var triple [3]string
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("decode reference: %w", err)
	}
	r.Unit, r.RelativeName, r.Statement = triple[0], triple[1], triple[2]
	return nil
}

// Premises splits the references of one step by scope.
type Premises struct {
	Local   []Reference `json:"current_file"`
	Foreign []Reference `json:"outside_file"`
}

// Total returns the number of references in both scopes.
func (p Premises) Total() int {
	return len(p.Local) + len(p.Foreign)
}

// Resolver classifies the constants of proof steps. It is safe for
// concurrent use once constructed.
type Resolver struct {
	index  *Index
	opts   Options
	cache  otter.Cache[string, Premises]
	cached bool
}

// NewResolver returns a resolver over a fully built index.
func NewResolver(index *Index, opts Options) (*Resolver, error) {
	r := &Resolver{index: index, opts: opts}
	if opts.CacheSize > 0 {
		cache, err := otter.MustBuilder[string, Premises](opts.CacheSize).Build()
		if err != nil {
			return nil, fmt.Errorf("build premise cache: %w", err)
		}
		r.cache = cache
		r.cached = true
	}
	return r, nil
}

// Options returns the resolver settings.
func (r *Resolver) Options() Options {
	return r.opts
}

// Resolve returns the premises referenced by step, a proof step of unit.
// Each token found in the index counts once per occurrence. Tokens are looked
// up as matched, so a name directly followed by a sentence period is not a
// reference.
func (r *Resolver) Resolve(step, unit string) Premises {
	key := unit + "\x00" + step
	if r.cached {
		if p, ok := r.cache.Get(key); ok {
			return p
		}
	}

	p := Premises{Local: []Reference{}, Foreign: []Reference{}}
	for _, token := range tokenPattern.FindAllString(step, -1) {
		c, ok := r.index.Lookup(token)
		if !ok {
			continue
		}
		if utf8.RuneCountInString(c.Entry.Name) < r.opts.MinNameLength {
			continue
		}
		ref := Reference{Unit: c.Unit, RelativeName: c.RelativeName, Statement: c.Entry.Text}
		if c.Unit == unit {
			p.Local = append(p.Local, ref)
		} else {
			p.Foreign = append(p.Foreign, ref)
		}
	}

	if r.cached {
		r.cache.Set(key, p)
	}
	return p
}

// Valid reports whether p has between 1 and MaxConstants references.
func (r *Resolver) Valid(p Premises) bool {
	total := p.Total()
	return total >= 1 && total <= r.opts.MaxConstants
}

// Close releases the cache.
func (r *Resolver) Close() {
	if r.cached {
		r.cache.Close()
	}
}
