// Package chunk splits a unit into line ranges small enough for a
// documentation prompt, each carrying the declarations it completes.
package chunk

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// Defaults
const (
	DefaultChunkSize      = 500
	DefaultOverlap        = 0
	DefaultMaxAnnotations = 50
)

// Options bounds the chunks.
type Options struct {
	ChunkSize      int // maximum lines per chunk
	Overlap        int // lines repeated at the start of the next chunk
	MaxAnnotations int // maximum declarations per chunk
}

// DefaultOptions returns the default chunk bounds.
func DefaultOptions() Options {
	return Options{
		ChunkSize:      DefaultChunkSize,
		Overlap:        DefaultOverlap,
		MaxAnnotations: DefaultMaxAnnotations,
	}
}

// Annotation is a declaration to document, encoded as [fqn, entry].
type Annotation struct {
	QualifiedName string
	Entry         *rocq.Entry
}

// MarshalJSON encodes the annotation as a [fqn, entry] pair.
func (a Annotation) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.QualifiedName, a.Entry})
}

// UnmarshalJSON decodes the pair written by MarshalJSON.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode annotation: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("decode annotation: want 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &a.QualifiedName); err != nil {
		return fmt.Errorf("decode annotation name: %w", err)
	}
	a.Entry = new(rocq.Entry)
	if err := json.Unmarshal(raw[1], a.Entry); err != nil {
		return fmt.Errorf("decode annotation entry: %w", err)
	}
	a.Entry.QualifiedName = a.QualifiedName
	return nil
}

// Chunk is a line range of a unit.
type Chunk struct {
	Unit        string       `json:"unit"`
	Index       int          `json:"index"`
	StartLine   int          `json:"start_line"` // 1-based, inclusive
	EndLine     int          `json:"end_line"`   // 1-based, inclusive
	Source      string       `json:"source"`
	Annotations []Annotation `json:"annotations"`
}

// Missing returns the bare names of the declarations to document, one per
// annotation, in order.
func (c Chunk) Missing() []string {
	names := make([]string, len(c.Annotations))
	for i, a := range c.Annotations {
		name := a.Entry.Name
		if dot := strings.LastIndex(name, "."); dot >= 0 {
			name = name[dot+1:]
		}
		names[i] = name
	}
	return names
}

// FileName is the name the chunk is stored under.
func (c Chunk) FileName() string {
	return fmt.Sprintf("%s#chunk_%d.json", c.Unit, c.Index)
}

// Split cuts the source of a unit into chunks. Lines are consumed one at a
// time; every declaration whose end line has been reached joins the current
// chunk, at most one per line. A chunk is closed once it spans ChunkSize lines
// or holds MaxAnnotations declarations, and the next one starts Overlap lines
// earlier. Splitting stops when the lines or the declarations run out.
func Split(unit, source string, entries map[string]*rocq.Entry, opts Options) []Chunk {
	lines := strings.Split(source, "\n")
	items := sortedByEnd(entries)

	var chunks []Chunk
	var pending []Annotation
	start, end, next := 0, 0, 0

	emit := func() {
		chunks = append(chunks, Chunk{
			Unit:        unit,
			Index:       len(chunks),
			StartLine:   start + 1,
			EndLine:     end,
			Source:      strings.Join(lines[start:end], "\n"),
			Annotations: pending,
		})
	}

	for end < len(lines) && next < len(items) {
		if end-start >= opts.ChunkSize || len(pending) >= opts.MaxAnnotations {
			emit()
			start = max(end-opts.Overlap, 0)
			pending = nil
		}

		end++
		if items[next].Entry.EndLine <= end {
			pending = append(pending, items[next])
			next++
		}
	}
	if len(pending) > 0 {
		emit()
	}
	return chunks
}

// sortedByEnd orders entries by end line, ties broken by qualified name.
func sortedByEnd(entries map[string]*rocq.Entry) []Annotation {
	items := make([]Annotation, 0, len(entries))
	for fqn, e := range entries {
		if e != nil {
			items = append(items, Annotation{QualifiedName: fqn, Entry: e})
		}
	}
	slices.SortFunc(items, func(a, b Annotation) int {
		if a.Entry.EndLine != b.Entry.EndLine {
			return a.Entry.EndLine - b.Entry.EndLine
		}
		return strings.Compare(a.QualifiedName, b.QualifiedName)
	})
	return items
}
