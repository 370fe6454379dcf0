// Package corpus discovers the units of a proof library, runs extraction
// stages over them in parallel and writes the results.
package corpus

import (
	"path/filepath"
	"strings"

	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// SourceExt is the extension of Rocq source files.
const SourceExt = ".v"

// Unit is one compilation unit of the library.
type Unit struct {
	ID      string   // dotted relative path without extension
	RelPath string   // slash-separated path relative to the library root
	Text    string   // contents as read
	Modules []string // top-level module names in order
}

// UnitID derives the unit id from a slash-separated relative path:
// "algebra/ssralg.v" becomes "algebra.ssralg".
func UnitID(relPath string) string {
	relPath = strings.TrimSuffix(filepath.ToSlash(relPath), SourceExt)
	return strings.ReplaceAll(relPath, "/", ".")
}

// UnitPath returns the source path of a unit id under root.
func UnitPath(root, id string) string {
	return filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(id, ".", "/"))+SourceExt)
}

// NewUnit builds a unit from its relative path and contents. Module names
// are filled in best effort; a text that does not parse keeps none.
func NewUnit(relPath, text string) Unit {
	u := Unit{ID: UnitID(relPath), RelPath: filepath.ToSlash(relPath), Text: text}
	if nodes, err := rocq.Parse(text); err == nil {
		u.Modules = rocq.Modules(nodes)
	}
	return u
}
