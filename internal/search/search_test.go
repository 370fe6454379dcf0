package search

import (
	"context"
	"testing"

	index "github.com/blevesearch/bleve_index_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// Test Plan for Index:
// - Dataset entries become documents keyed unit#fqn with docstrings prepended
// - Query-string search finds declarations by their text
// - Kind and unit filters narrow results exactly
// - Scores rank a text highest against itself and omit unrelated documents
// - Scores use BM25: repeated terms rank higher and, at equal frequency,
//   shorter documents outrank longer ones
// - A cancelled context aborts indexing
//
// Test Plan for SelectDiverse:
// - Selection starts at the first text and prefers unrelated texts
// - k larger than the input is capped, k <= 0 selects nothing

func testDataset() rocq.Dataset {
	return rocq.Dataset{
		"arith.nat": {
			"addn_comm": {Name: "addn_comm", Kind: rocq.KindLemma, Text: "Lemma addn_comm : commutative addn.", Docstring: "Addition is commutative."},
			"muln_comm": {Name: "muln_comm", Kind: rocq.KindLemma, Text: "Lemma muln_comm : commutative muln."},
		},
		"algebra.matrix": {
			"det": {Name: "det", Kind: rocq.KindDefinition, Text: "Definition det (A : matrix) := determinant A."},
		},
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(context.Background(), EntryDocuments(testDataset()))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestEntryDocuments(t *testing.T) {
	t.Parallel()

	docs := EntryDocuments(testDataset())
	require.Len(t, docs, 3)
	assert.Equal(t, "algebra.matrix#det", docs[0].ID)
	assert.Equal(t, "arith.nat#addn_comm", docs[1].ID)
	assert.Equal(t, "Addition is commutative.\nLemma addn_comm : commutative addn.", docs[1].Text)
	assert.Equal(t, "Lemma", docs[1].Kind)
	assert.Equal(t, "Lemma muln_comm : commutative muln.", docs[2].Text)
}

func TestIndex_Search(t *testing.T) {
	t.Parallel()
	idx := newTestIndex(t)
	ctx := context.Background()
	assert.Equal(t, 3, idx.Len())

	results, err := idx.Search(ctx, "commutative", nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "arith.nat", r.Document.Unit)
		assert.Greater(t, r.Score, 0.0)
	}

	results, err = idx.Search(ctx, "determinant", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "det", results[0].Document.Name)
	assert.Equal(t, "Definition", results[0].Document.Kind)
}

func TestIndex_SearchFilters(t *testing.T) {
	t.Parallel()
	idx := newTestIndex(t)
	ctx := context.Background()

	results, err := idx.Search(ctx, "commutative determinant", &Options{Kind: "Definition"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "algebra.matrix#det", results[0].Document.ID)

	results, err = idx.Search(ctx, "commutative", &Options{Unit: "algebra.matrix"})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = idx.Search(ctx, "commutative", &Options{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestIndex_Scores(t *testing.T) {
	t.Parallel()
	idx := newTestIndex(t)

	scores, err := idx.Scores(context.Background(), "Addition is commutative.\nLemma addn_comm : commutative addn.")
	require.NoError(t, err)
	assert.NotContains(t, scores, "algebra.matrix#det")
	require.Contains(t, scores, "arith.nat#addn_comm")
	require.Contains(t, scores, "arith.nat#muln_comm")
	assert.Greater(t, scores["arith.nat#addn_comm"], scores["arith.nat#muln_comm"])
}

func TestIndex_ScoresBM25(t *testing.T) {
	t.Parallel()

	assert.Equal(t, index.BM25Scoring, buildMapping().ScoringModel)

	idx, err := NewIndex(context.Background(), []Document{
		{ID: "short", Text: "determinant of a matrix"},
		{ID: "long", Text: "the determinant is multiplicative for products of square matrices in a ring"},
		{ID: "repeated", Text: "determinant determinant determinant determinant"},
		{ID: "unrelated", Text: "trace of a matrix"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	scores, err := idx.Scores(context.Background(), "determinant")
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.NotContains(t, scores, "unrelated")
	assert.Greater(t, scores["repeated"], scores["short"])
	assert.Greater(t, scores["short"], scores["long"])
	assert.Greater(t, scores["long"], 0.0)
}

func TestNewIndex_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewIndex(ctx, EntryDocuments(testDataset()))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSelectDiverse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	texts := []string{
		"addition of naturals is commutative",
		"multiplication of naturals is commutative",
		"the determinant of a matrix product",
	}

	got, err := SelectDiverse(ctx, texts, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got)

	got, err = SelectDiverse(ctx, texts, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1}, got)

	got, err = SelectDiverse(ctx, texts, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = SelectDiverse(ctx, nil, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectDiverse_Ties(t *testing.T) {
	t.Parallel()

	got, err := SelectDiverse(context.Background(), []string{"alpha", "beta", "gamma"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}
