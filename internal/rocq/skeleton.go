package rocq

import "strings"

// Extractor turns one fragment into entries keyed by bare name.
type Extractor func(fragment string, lineOffset int) map[string]*Entry

// BuildSkeleton extracts every named declaration of a unit.
// See Build.
func BuildSkeleton(text string) (string, map[string]*Entry, error) {
	return Build(text, ExtractSkeleton)
}

// BuildStatements extracts the proof-bearing declarations of a unit.
// Comments are removed before parsing so that they cannot hide or fake a
// Proof. block, and every remaining Proof. must be closed by Defined., Qed.
// or Abort.
func BuildStatements(text string) (string, map[string]*Entry, error) {
	text = StripComments(text)
	if err := CheckProofBalance(text, StatementTerminators...); err != nil {
		return "", nil, err
	}
	return Build(text, ExtractStatements)
}

// Build parses text into modules, flattens it and runs extract on each
// fragment with a running line offset. It returns the rewritten unit (the
// concatenation of the trimmed fragments) and the entries keyed by fully
// qualified name. Entry line numbers refer to the rewritten unit.
//
// A structural parse error fails the whole unit; no partial table is returned.
func Build(text string, extract Extractor) (string, map[string]*Entry, error) {
	nodes, err := Parse(text)
	if err != nil {
		return "", nil, err
	}

	fragments := Flatten(nodes)
	entries := make(map[string]*Entry)
	offset := 0
	for _, frag := range fragments {
		for name, e := range extract(frag.Text, offset) {
			e.QualifiedName = Qualify(frag.Prefix, name)
			entries[e.QualifiedName] = e
		}
		offset += strings.Count(frag.Text, "\n")
	}
	return Concat(fragments), entries, nil
}

// Preprocess removes proof bodies and comments from a unit and squeezes the
// blank lines left behind. The unit must contain as many Proof. openers as
// Qed./Abort. terminators.
func Preprocess(text string) (string, error) {
	if err := CheckProofBalance(text, ProofTerminators...); err != nil {
		return "", err
	}
	return CollapseBlankLines(StripComments(RemoveProofs(text))), nil
}
