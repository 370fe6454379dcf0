package rocq

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for module parsing and flattening:
// - Text without modules is a single leaf
// - A module becomes a node whose leaves carry its header and End marker
// - Nested modules nest with the right depth and qualified prefixes
// - A module opening the text is recognized
// - Export/Import qualifiers are accepted
// - A missing End marker fails with ErrUnterminatedModule
// - Reassembling the leaves reproduces the input exactly
// - Concatenating flattened fragments equals the trimmed leaves in order

func TestParse_NoModule(t *testing.T) {
	t.Parallel()

	nodes, err := Parse("Definition a := 1.\n")
	require.NoError(t, err)
	assert.Equal(t, []Node{{Text: "Definition a := 1.\n"}}, nodes)
}

func TestParse_SingleModule(t *testing.T) {
	t.Parallel()

	in := "Lemma x : True.\nModule M.\nDefinition a := 1.\nEnd M.\nDefinition b := 2.\n"
	nodes, err := Parse(in)
	require.NoError(t, err)

	want := []Node{
		{Text: "Lemma x : True.\n"},
		{Name: "M", Children: []Node{{Text: "Module M.\nDefinition a := 1.\nEnd M."}}},
		{Text: "\nDefinition b := 2.\n"},
	}
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Nested(t *testing.T) {
	t.Parallel()

	in := "Module A.\nModule B.\nDefinition x := 1.\nEnd B.\nEnd A.\n"
	nodes, err := Parse(in)
	require.NoError(t, err)

	want := []Node{
		{Text: ""},
		{Name: "A", Children: []Node{
			{Text: "Module A.\n"},
			{Name: "B", Children: []Node{{Text: "Module B.\nDefinition x := 1.\nEnd B."}}},
			{Text: "\nEnd A."},
		}},
		{Text: "\n"},
	}
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	fragments := Flatten(nodes)
	assert.Equal(t, []Fragment{
		{Prefix: "", Text: ""},
		{Prefix: "A", Text: "Module A."},
		{Prefix: "A.B", Text: "Module B.\nDefinition x := 1.\nEnd B."},
		{Prefix: "A", Text: "End A."},
		{Prefix: "", Text: ""},
	}, fragments)
}

func TestParse_ModuleCountAndDepth(t *testing.T) {
	t.Parallel()

	in := `Module A.
Module B.
Module C.
Definition c := 1.
End C.
End B.
Module D.
End D.
End A.
Module Export E.
End E.
Module Import F.
Lemma f : True.
End F.
`
	nodes, err := Parse(in)
	require.NoError(t, err)

	depths := map[string]int{}
	var walk func([]Node, int)
	walk = func(ns []Node, depth int) {
		for _, n := range ns {
			if n.IsModule() {
				depths[n.Name] = depth
				walk(n.Children, depth+1)
			}
		}
	}
	walk(nodes, 0)

	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 2, "D": 1, "E": 0, "F": 0}, depths)
	assert.Equal(t, []string{"A", "E", "F"}, Modules(nodes))
}

func TestParse_Unterminated(t *testing.T) {
	t.Parallel()

	_, err := Parse("Module Foo.\nDefinition a := 1.\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnterminatedModule))

	var modErr *ModuleError
	require.True(t, errors.As(err, &modErr))
	assert.Equal(t, "Foo", modErr.Module)
	assert.Equal(t, 0, modErr.Offset)

	// the error points at the nested module that is not closed
	_, err = Parse("Definition z := 0.\nModule A.\nModule B.\nEnd A.\n")
	require.True(t, errors.As(err, &modErr))
	assert.Equal(t, "B", modErr.Module)
	assert.Equal(t, strings.Index("Definition z := 0.\nModule A.\nModule B.\nEnd A.\n", "Module B."), modErr.Offset)
}

func TestParse_HeaderNeedsWhitespace(t *testing.T) {
	t.Parallel()

	// "XModule" and a header glued to the next token are not module openers
	in := "Definition XModule M. := 1.\nModule N.Definition a := 1.\n"
	nodes, err := Parse(in)
	require.NoError(t, err)
	assert.Empty(t, Modules(nodes))
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"Definition a := 1.\n",
		"Module M.\nEnd M.",
		"  Module M.\n  Definition a := 1.\n  End M.\n\n",
		"Lemma x : True.\nModule M.\nDefinition a := 1.\nEnd M.\nDefinition b := 2.\n",
		"Module A.\nModule B.\nDefinition x := 1.\nEnd B.\nEnd A.\nModule C.\nEnd C.\n",
		"Section S.\nModule Import M.\n  Lemma l : True.\n  Proof. trivial. Qed.\nEnd M.\nEnd S.\n",
	}

	for _, in := range inputs {
		nodes, err := Parse(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, in, Reassemble(nodes), "input %q", in)

		var trimmed strings.Builder
		var walk func([]Node)
		walk = func(ns []Node) {
			for _, n := range ns {
				if n.IsModule() {
					walk(n.Children)
					continue
				}
				trimmed.WriteString(strings.TrimSpace(n.Text))
			}
		}
		walk(nodes)
		assert.Equal(t, trimmed.String(), Concat(Flatten(nodes)), "input %q", in)
	}
}

func TestQualify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a", Qualify("", "a"))
	assert.Equal(t, "M.N.a", Qualify("M.N", "a"))
}
