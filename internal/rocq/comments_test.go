package rocq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for comment and proof stripping:
// - Single and multi-line comments are removed
// - Adjacent comments are merged and removed as one span
// - Comments do not nest: the first closing delimiter ends the comment
// - An unterminated opener is left untouched
// - Stripping is idempotent
// - Proof blocks ending in Qed. or Abort. are removed
// - Runs of blank lines collapse to one blank line
// - Proof balance counts openers against the given terminators
// - Preprocess checks balance before rewriting

func TestStripComments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no comment", "Definition a := 1.", "Definition a := 1."},
		{"inline", "a (* x *) b", "a  b"},
		{"multi-line", "a (* x\ny\nz *)b", "a b"},
		{"adjacent", "a (* x *) (* y *) b", "a  b"},
		{"adjacent across lines", "a (* x *)\n\n(* y *)b", "a b"},
		{"not nested", "x (* a (* b *) c *) y", "x  c *) y"},
		{"unterminated", "a (* never closed", "a (* never closed"},
		{"two separate", "(* a *)x(* b *)", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StripComments(tt.in))
		})
	}
}

func TestStripComments_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"a (* x *) b",
		"x (* a (* b *) c *) y",
		"((* a *)* b *)",
		"(*) *) (* (* *)",
		"Lemma foo : True. (* doc *)\nProof. (* step *) trivial. Qed.",
		"a (* open",
	}
	for _, in := range inputs {
		once := StripComments(in)
		assert.Equal(t, once, StripComments(once), "input %q", in)
	}
}

func TestRemoveProofs(t *testing.T) {
	t.Parallel()

	in := "Lemma a : True.\nProof. trivial. Qed.\nLemma b : False.\nProof.\n  admit.\nAbort.\nDefinition c := 1.\n"
	want := "Lemma a : True.\n\nLemma b : False.\n\nDefinition c := 1.\n"
	assert.Equal(t, want, RemoveProofs(in))
}

func TestCollapseBlankLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a\n\nb", CollapseBlankLines("a\n\n\n\n\nb"))
	assert.Equal(t, "a\n\nb\nc", CollapseBlankLines("a\n\n\nb\nc"))
	assert.Equal(t, "a\nb", CollapseBlankLines("a\nb"))
}

func TestCheckProofBalance(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckProofBalance("Proof. a. Qed. Proof. b. Abort.", ProofTerminators...))
	require.NoError(t, CheckProofBalance("Proof. a. Defined.", StatementTerminators...))

	err := CheckProofBalance("Proof. a. Qed. Proof. b.", ProofTerminators...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnbalancedProofBlock))

	var balanceErr *ProofBalanceError
	require.True(t, errors.As(err, &balanceErr))
	assert.Equal(t, 2, balanceErr.Opened)
	assert.Equal(t, 1, balanceErr.Closed)

	// Defined. is not a terminator in the preprocessing stage
	assert.Error(t, CheckProofBalance("Proof. a. Defined.", ProofTerminators...))
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	in := "(* header *)\nLemma a : True.\nProof. trivial. Qed.\n\n\n\nDefinition b := 1.\n"
	got, err := Preprocess(in)
	require.NoError(t, err)
	assert.Equal(t, "\nLemma a : True.\n\nDefinition b := 1.\n", got)

	_, err = Preprocess("Lemma a : True.\nProof. trivial.\n")
	assert.ErrorIs(t, err, ErrUnbalancedProofBlock)
}
