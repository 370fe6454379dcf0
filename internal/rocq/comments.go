package rocq

import (
	"regexp"
	"strings"
)

var (
	adjacentComments = regexp.MustCompile(`\*\)\s*\(\*`)
	blockComment     = regexp.MustCompile(`(?s)\(\*.*?\*\)`)
	proofBlock       = regexp.MustCompile(`(?s)Proof\..*?(?:Qed\.|Abort\.)`)
)

// ProofTerminators close a Proof. block in the preprocessing stage.
var ProofTerminators = []string{"Qed.", "Abort."}

// StatementTerminators also accept Defined., which closes transparent proofs.
var StatementTerminators = []string{"Defined.", "Qed.", "Abort."}

// StripComments removes every (* ... *) block comment from text.
//
// Comments do not nest. Immediately adjacent comments ("*) (*") are merged
// first so they are deleted as one span. An opening delimiter without a
// closing one is left as is. The result is a fixpoint: stripping it again
// returns it unchanged.
func StripComments(text string) string {
	for {
		next := removeBlockComments(adjacentComments.ReplaceAllString(text, ""))
		if next == text {
			return next
		}
		text = next
	}
}

// removeBlockComments deletes the first comment span until none remain.
// A deletion can only create a new opener at the join point, so the search
// resumes one byte before it.
func removeBlockComments(text string) string {
	from := 0
	for {
		loc := blockComment.FindStringIndex(text[from:])
		if loc == nil {
			return text
		}
		start, end := from+loc[0], from+loc[1]
		text = text[:start] + text[end:]
		from = max(start-1, 0)
	}
}

// RemoveProofs deletes every Proof. ... Qed./Abort. block.
func RemoveProofs(text string) string {
	return proofBlock.ReplaceAllString(text, "")
}

// CollapseBlankLines squeezes runs of blank lines down to a single blank line.
func CollapseBlankLines(text string) string {
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return text
}

// CheckProofBalance verifies that the number of Proof. openers equals the
// number of terminators found in text.
func CheckProofBalance(text string, terminators ...string) error {
	opened := strings.Count(text, "Proof.")
	closed := 0
	for _, t := range terminators {
		closed += strings.Count(text, t)
	}
	if opened != closed {
		return &ProofBalanceError{Opened: opened, Closed: closed}
	}
	return nil
}
