package chunk

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// Test Plan for Split:
// - Chunks close at ChunkSize lines and restart Overlap lines earlier
// - Chunks close at MaxAnnotations declarations
// - At most one declaration joins per consumed line
// - Declarations are ordered by end line, then name
// - No declarations means no chunks; an empty unit still yields its declarations
// - Annotations encode as [fqn, entry] pairs and round-trip

func source(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "l" + string(rune('a'+i))
	}
	return strings.Join(lines, "\n")
}

func TestSplit_SizeAndOverlap(t *testing.T) {
	t.Parallel()

	entries := map[string]*rocq.Entry{
		"a": {Name: "a", EndLine: 2},
		"b": {Name: "b", EndLine: 4},
		"c": {Name: "c", EndLine: 6},
		"d": {Name: "d", EndLine: 8},
	}
	chunks := Split("u", source(10), entries, Options{ChunkSize: 4, Overlap: 1, MaxAnnotations: 10})
	require.Len(t, chunks, 3)

	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 4, chunks[0].EndLine)
	assert.Equal(t, "la\nlb\nlc\nld", chunks[0].Source)
	assert.Equal(t, []string{"a", "b"}, chunks[0].Missing())

	assert.Equal(t, 4, chunks[1].StartLine)
	assert.Equal(t, 7, chunks[1].EndLine)
	assert.Equal(t, []string{"c"}, chunks[1].Missing())

	assert.Equal(t, 7, chunks[2].StartLine)
	assert.Equal(t, 8, chunks[2].EndLine)
	assert.Equal(t, []string{"d"}, chunks[2].Missing())

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "u", c.Unit)
	}
	assert.Equal(t, "u#chunk_2.json", chunks[2].FileName())
}

func TestSplit_MaxAnnotations(t *testing.T) {
	t.Parallel()

	entries := map[string]*rocq.Entry{
		"y":   {Name: "y", EndLine: 1},
		"x":   {Name: "x", EndLine: 1},
		"M.z": {Name: "z", EndLine: 2},
	}
	chunks := Split("u", source(5), entries, Options{ChunkSize: 100, MaxAnnotations: 1})
	require.Len(t, chunks, 3)

	assert.Equal(t, "M.z", chunks[2].Annotations[0].QualifiedName)
	assert.Equal(t, []string{"x"}, chunks[0].Missing())
	assert.Equal(t, []string{"y"}, chunks[1].Missing())
	assert.Equal(t, []string{"z"}, chunks[2].Missing())

	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 1, chunks[0].EndLine)
	assert.Equal(t, 2, chunks[1].StartLine)
	assert.Equal(t, 2, chunks[1].EndLine)
	assert.Equal(t, 3, chunks[2].StartLine)
	assert.Equal(t, 3, chunks[2].EndLine)
}

func TestSplit_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Split("u", source(3), nil, DefaultOptions()))

	chunks := Split("u", "", map[string]*rocq.Entry{"a": {Name: "a", EndLine: 1}}, DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Source)
}

func TestAnnotation_JSON(t *testing.T) {
	t.Parallel()

	a := Annotation{QualifiedName: "M.foo", Entry: &rocq.Entry{Name: "foo", Kind: rocq.KindLemma, Text: "Lemma foo : True.", StartLine: 1, EndLine: 2}}
	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `["M.foo", {"name": "foo", "kind": "Lemma", "docstring": "", "fullname": "Lemma foo : True.", "start_line": 1, "end_line": 2}]`, string(data))

	var back Annotation
	require.NoError(t, json.Unmarshal(data, &back))
	a.Entry.QualifiedName = "M.foo"
	assert.Equal(t, a, back)
}
