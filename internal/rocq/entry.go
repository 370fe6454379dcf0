package rocq

import (
	"regexp"
	"strings"
)

// Kind is the declaration keyword an entry was introduced with.
type Kind string

const (
	KindLemma      Kind = "Lemma"
	KindDefinition Kind = "Definition"
	KindNotation   Kind = "Notation"
	KindFact       Kind = "Fact"
	KindTheorem    Kind = "Theorem"
	KindRecord     Kind = "Record"
	KindFixpoint   Kind = "Fixpoint"
)

// Wildcard names anonymous declarations, which are never extracted.
const Wildcard = "_"

// Entry is a named declaration extracted from one unit.
//
// Text holds the comment-stripped declaration (serialized as "fullname" for
// compatibility with existing datasets). Proof and FullMatch are only set by
// proof-bearing extraction. Line numbers are 1-based.
type Entry struct {
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	Docstring string `json:"docstring"`
	Text      string `json:"fullname"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Proof     string `json:"proof,omitempty"`
	FullMatch string `json:"fullmatch,omitempty"`

	// QualifiedName is the module path plus Name. It is the key of the entry
	// in its unit and is not serialized.
	QualifiedName string `json:"-"`
}

var (
	// keyword, then a quoted or bare name, then everything up to the first
	// period that ends a line
	skeletonPattern = regexp.MustCompile(`(?s)(Lemma|Definition|Notation|Fact|Theorem|Record|Fixpoint)\s+(".+?"|\S+).*?\.\s*\n`)

	// statement up to its first period, then the proof block up to Qed./Abort.;
	// trailing blanks and one line break after the terminator belong to the span
	statementPattern = regexp.MustCompile(`(?s)((Lemma|Fact|Theorem)\s+(".+?"|\S+).*?\.)\s*Proof\.(.*?)(Qed\.|Abort\.)[ \t]*\n?`)
)

// ExtractSkeleton returns every named declaration in fragment, keyed by name.
// lineOffset is added to the line numbers, which are otherwise relative to
// the fragment. When a name occurs twice the later declaration wins.
func ExtractSkeleton(fragment string, lineOffset int) map[string]*Entry {
	source := fragment + "\n"
	lines := newLineCounter(source)
	result := make(map[string]*Entry)

	for _, m := range skeletonPattern.FindAllStringSubmatchIndex(source, -1) {
		if m[1] <= m[0] {
			continue
		}
		name := source[m[4]:m[5]]
		if name == Wildcard {
			continue
		}
		result[name] = &Entry{
			Name:      name,
			Kind:      Kind(source[m[2]:m[3]]),
			Text:      strings.TrimSpace(StripComments(source[m[0]:m[1]])),
			StartLine: lines.at(m[0]) + lineOffset,
			EndLine:   lines.at(m[1]) + lineOffset,
		}
	}
	return result
}

// ExtractStatements returns the Lemma, Fact and Theorem declarations of
// fragment that are directly followed by a Proof. block, keyed by name.
// Proof is the raw text between "Proof." and the terminator.
func ExtractStatements(fragment string, lineOffset int) map[string]*Entry {
	lines := newLineCounter(fragment)
	result := make(map[string]*Entry)

	for _, m := range statementPattern.FindAllStringSubmatchIndex(fragment, -1) {
		if m[1] <= m[0] {
			continue
		}
		name := fragment[m[6]:m[7]]
		if name == Wildcard {
			continue
		}
		result[name] = &Entry{
			Name:      name,
			Kind:      Kind(fragment[m[4]:m[5]]),
			Text:      strings.TrimSpace(StripComments(fragment[m[2]:m[3]])),
			Proof:     fragment[m[8]:m[9]],
			FullMatch: strings.TrimSpace(StripComments(fragment[m[0]:m[1]])),
			StartLine: lines.at(m[0]) + lineOffset,
			EndLine:   lines.at(m[1]) + lineOffset,
		}
	}
	return result
}

// lineCounter converts byte offsets into 1-based line numbers. Offsets must
// be requested in non-decreasing order.
type lineCounter struct {
	text string
	pos  int
	line int
}

func newLineCounter(text string) *lineCounter {
	return &lineCounter{text: text, line: 1}
}

func (c *lineCounter) at(offset int) int {
	if offset < c.pos {
		c.pos, c.line = 0, 1
	}
	c.line += strings.Count(c.text[c.pos:offset], "\n")
	c.pos = offset
	return c.line
}
