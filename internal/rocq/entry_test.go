package rocq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for entry extraction:
// - Skeleton mode finds every keyword and records 1-based line spans
// - Line offsets are added to both ends of the span
// - Quoted notation names are kept with their quotes
// - Wildcard names are never extracted
// - The last declaration of a name in a fragment wins
// - Comments are stripped from stored text but still count for lines
// - Proof-bearing mode only keeps Lemma/Fact/Theorem followed by a proof
// - Proof-bearing mode captures the raw proof body and the full match
// - Unit builders qualify names with module paths and keep a running offset
// - BuildStatements rejects unbalanced proofs after removing comments

func TestExtractSkeleton_Kinds(t *testing.T) {
	t.Parallel()

	in := `Definition a := 1.
Lemma b : True.
Theorem c : True.
Fact d : True.
Fixpoint e (n : nat) : nat :=
  match n with
  | 0 => 0
  | S m => e m
  end.
Record f := { x : nat }.
Notation "x ++ y" := (app x y).`

	got := ExtractSkeleton(in, 0)
	require.Len(t, got, 7)

	kinds := map[string]Kind{}
	for name, e := range got {
		kinds[name] = e.Kind
		assert.Equal(t, name, e.Name)
		assert.LessOrEqual(t, e.StartLine, e.EndLine)
	}
	assert.Equal(t, map[string]Kind{
		"a":        KindDefinition,
		"b":        KindLemma,
		"c":        KindTheorem,
		"d":        KindFact,
		"e":        KindFixpoint,
		"f":        KindRecord,
		`"x ++ y"`: KindNotation,
	}, kinds)

	assert.Equal(t, 1, got["a"].StartLine)
	assert.Equal(t, 2, got["a"].EndLine)
	assert.Equal(t, 5, got["e"].StartLine)
	assert.Equal(t, 10, got["e"].EndLine)
	assert.Equal(t, "Fixpoint e (n : nat) : nat :=\n  match n with\n  | 0 => 0\n  | S m => e m\n  end.", got["e"].Text)

	// the last line has no newline of its own; the span ends on the line after it
	assert.Equal(t, 11, got[`"x ++ y"`].StartLine)
	assert.Equal(t, 12, got[`"x ++ y"`].EndLine)
}

func TestExtractSkeleton_LineOffset(t *testing.T) {
	t.Parallel()

	got := ExtractSkeleton("Lemma foo : True.", 41)
	require.Contains(t, got, "foo")
	assert.Equal(t, 42, got["foo"].StartLine)
	assert.Equal(t, 43, got["foo"].EndLine)
}

func TestExtractSkeleton_Wildcard(t *testing.T) {
	t.Parallel()

	in := "Definition _ := 1.\nLemma _ : True.\nLemma foo : True.\n"
	got := ExtractSkeleton(in, 0)
	assert.NotContains(t, got, Wildcard)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got["foo"].StartLine)

	assert.NotContains(t, ExtractStatements("Lemma _ : True.\nProof. trivial. Qed.\n", 0), Wildcard)
}

func TestExtractSkeleton_LastWins(t *testing.T) {
	t.Parallel()

	got := ExtractSkeleton("Definition a := 1.\nDefinition a := 2.\n", 0)
	require.Len(t, got, 1)
	assert.Equal(t, "Definition a := 2.", got["a"].Text)
	assert.Equal(t, 2, got["a"].StartLine)
}

func TestExtractSkeleton_Comments(t *testing.T) {
	t.Parallel()

	got := ExtractSkeleton("Lemma foo (* a\nmulti-line\ncomment *) : True.\n", 0)
	require.Contains(t, got, "foo")
	assert.Equal(t, "Lemma foo  : True.", got["foo"].Text)
	assert.Equal(t, 1, got["foo"].StartLine)
	assert.Equal(t, 4, got["foo"].EndLine)
}

func TestExtractStatements_Example(t *testing.T) {
	t.Parallel()

	got := ExtractStatements("Lemma foo : True.\nProof. trivial. Qed.\n", 0)
	require.Len(t, got, 1)

	e := got["foo"]
	require.NotNil(t, e)
	assert.Equal(t, "foo", e.Name)
	assert.Equal(t, KindLemma, e.Kind)
	assert.Equal(t, 1, e.StartLine)
	assert.Equal(t, 3, e.EndLine)
	assert.Equal(t, " trivial. ", e.Proof)
	assert.Equal(t, "Lemma foo : True.", e.Text)
	assert.Equal(t, "Lemma foo : True.\nProof. trivial. Qed.", e.FullMatch)
}

func TestExtractStatements_Selection(t *testing.T) {
	t.Parallel()

	in := `Definition d : nat.
Proof. exact 0. Defined.
Theorem t (n : nat) : n = n.
Proof.
  reflexivity.
Qed.
Fact f : False.
Proof. admit. Abort.
`
	got := ExtractStatements(in, 10)
	require.Len(t, got, 2)

	require.Contains(t, got, "t")
	assert.Equal(t, KindTheorem, got["t"].Kind)
	assert.Equal(t, "\n  reflexivity.\n", got["t"].Proof)
	assert.Equal(t, 13, got["t"].StartLine)
	assert.Equal(t, 17, got["t"].EndLine)

	require.Contains(t, got, "f")
	assert.Equal(t, KindFact, got["f"].Kind)
	assert.Equal(t, " admit. ", got["f"].Proof)
	assert.Equal(t, 17, got["f"].StartLine)
	assert.Equal(t, 19, got["f"].EndLine)
}

func TestExtractStatements_StatementWithoutProofAbsorbsNext(t *testing.T) {
	t.Parallel()

	got := ExtractStatements("Lemma noproof : True.\nTheorem t : True.\nProof. trivial. Qed.\n", 0)
	require.Len(t, got, 1)
	require.Contains(t, got, "noproof")
	assert.Equal(t, "Lemma noproof : True.\nTheorem t : True.", got["noproof"].Text)
	assert.Equal(t, 1, got["noproof"].StartLine)
	assert.Equal(t, 4, got["noproof"].EndLine)
}

func TestBuildSkeleton(t *testing.T) {
	t.Parallel()

	in := "Lemma x : True.\nModule M.\nDefinition a := 1.\nEnd M.\nDefinition b := 2.\n"
	rewritten, entries, err := BuildSkeleton(in)
	require.NoError(t, err)

	assert.Equal(t, "Lemma x : True.Module M.\nDefinition a := 1.\nEnd M.Definition b := 2.", rewritten)
	require.Len(t, entries, 3)

	require.Contains(t, entries, "x")
	require.Contains(t, entries, "M.a")
	require.Contains(t, entries, "b")

	assert.Equal(t, "M.a", entries["M.a"].QualifiedName)
	assert.Equal(t, "a", entries["M.a"].Name)
	assert.Equal(t, 2, entries["M.a"].StartLine)
	assert.Equal(t, 3, entries["M.a"].EndLine)

	assert.Equal(t, 1, entries["x"].StartLine)
	assert.Equal(t, 3, entries["b"].StartLine)
	assert.Equal(t, 4, entries["b"].EndLine)
}

func TestBuildSkeleton_SameNameInSiblingModules(t *testing.T) {
	t.Parallel()

	in := "Module A.\nDefinition v := 1.\nEnd A.\nModule B.\nDefinition v := 2.\nEnd B.\n"
	_, entries, err := BuildSkeleton(in)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Definition v := 1.", entries["A.v"].Text)
	assert.Equal(t, "Definition v := 2.", entries["B.v"].Text)
}

func TestBuildSkeleton_Unterminated(t *testing.T) {
	t.Parallel()

	rewritten, entries, err := BuildSkeleton("Module Foo.\nDefinition a := 1.\n")
	assert.True(t, errors.Is(err, ErrUnterminatedModule))
	assert.Empty(t, rewritten)
	assert.Nil(t, entries)
}

func TestBuildSkeleton_Deterministic(t *testing.T) {
	t.Parallel()

	in := "Module A.\nLemma l : True.\nModule B.\nDefinition x := 1.\nEnd B.\nEnd A.\nTheorem t : True.\n"
	r1, e1, err := BuildSkeleton(in)
	require.NoError(t, err)
	r2, e2, err := BuildSkeleton(in)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
	assert.Equal(t, e1, e2)
}

func TestBuildStatements(t *testing.T) {
	t.Parallel()

	in := "(* Proof. *)\nModule M.\nLemma a : True.\nProof. trivial. Qed.\nEnd M.\n"
	_, entries, err := BuildStatements(in)
	require.NoError(t, err)
	require.Contains(t, entries, "M.a")
	assert.Equal(t, " trivial. ", entries["M.a"].Proof)

	_, _, err = BuildStatements("Lemma a : True.\nProof.\n")
	assert.ErrorIs(t, err, ErrUnbalancedProofBlock)
}
