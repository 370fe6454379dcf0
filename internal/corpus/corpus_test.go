package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLM4Rocq/LLM4Docq/internal/metrics"
	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// Test Plan for the corpus pipeline:
// - Unit ids are dotted relative paths without extension
// - Discovery honors include globs, ignore rules and the state directory
// - Discovery results are sorted
// - Skeleton stage extracts every unit and records metrics
// - Preprocess stage rewrites units without producing a dataset
// - A failing unit aborts the run with a UnitError naming it
// - Results round-trip through result.json with qualified names restored
// - The atomic writer creates parent directories and leaves no temp files

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestUnitID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "algebra.ssralg", UnitID("algebra/ssralg.v"))
	assert.Equal(t, "Top", UnitID("Top.v"))
	assert.Equal(t, filepath.Join("lib", "algebra", "ssralg.v"), UnitPath("lib", "algebra.ssralg"))

	u := NewUnit("a/b.v", "Module M.\nEnd M.\nModule N.\nEnd N.\n")
	assert.Equal(t, "a.b", u.ID)
	assert.Equal(t, []string{"M", "N"}, u.Modules)

	assert.Empty(t, NewUnit("c.v", "Module Broken.\n").Modules)
}

func TestDiscovery(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"Top.v":             "",
		"algebra/ssralg.v":  "",
		"algebra/README.md": "",
		"_build/gen.v":      "",
		".docq/cache.v":     "",
		"order/order.v":     "",
	})

	d, err := NewDiscovery(root, []string{"**/*.v"}, []string{"_build/**"})
	require.NoError(t, err)

	files, err := d.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"Top.v", "algebra/ssralg.v", "order/order.v"}, files)

	assert.True(t, d.Matches("x/y.v"))
	assert.False(t, d.Matches("_build/y.v"))
	assert.False(t, d.Matches("x/y.md"))
}

func TestProcessor_Skeleton(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.v":     "Lemma foo : True.\nModule M.\nDefinition bar := 1.\nEnd M.\n",
		"sub/b.v": "Theorem baz : True.\n",
	})

	reg := metrics.New()
	p := NewProcessor(2, WithMetrics(reg))
	res, err := p.Run(context.Background(), Skeleton(), root, []string{"sub/b.v", "a.v"})
	require.NoError(t, err)

	require.Len(t, res.Units, 2)
	assert.Equal(t, "a", res.Units[0].ID)
	assert.Equal(t, "sub.b", res.Units[1].ID)
	assert.Equal(t, []string{"M"}, res.Units[0].Modules)

	require.Contains(t, res.Dataset, "a")
	assert.Contains(t, res.Dataset["a"], "foo")
	assert.Contains(t, res.Dataset["a"], "M.bar")
	assert.Contains(t, res.Dataset["sub.b"], "baz")
	assert.Equal(t, 3, res.Entries())
	assert.Equal(t, "Theorem baz : True.", res.Rewritten["sub.b"])

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.UnitsProcessed.WithLabelValues(StageSkeleton)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.EntriesExtracted.WithLabelValues(StageSkeleton, "Lemma")))
}

func TestProcessor_Preprocess(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.v": "(* doc *)\nLemma foo : True.\nProof. trivial. Qed.\n",
	})

	res, err := NewProcessor(1).Run(context.Background(), Preprocess(), root, []string{"a.v"})
	require.NoError(t, err)
	assert.Nil(t, res.Dataset)
	assert.Equal(t, "\nLemma foo : True.\n\n", res.Rewritten["a"])
}

func TestProcessor_UnitError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"good.v": "Lemma foo : True.\n",
		"bad.v":  "Module Open.\nLemma foo : True.\n",
	})

	reg := metrics.New()
	_, err := NewProcessor(1, WithMetrics(reg)).Run(context.Background(), Skeleton(), root, []string{"bad.v", "good.v"})
	require.Error(t, err)

	var unitErr *UnitError
	require.True(t, errors.As(err, &unitErr))
	assert.Equal(t, "bad", unitErr.Unit)
	assert.ErrorIs(t, err, rocq.ErrUnterminatedModule)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.UnitsFailed.WithLabelValues(StageSkeleton, metrics.ReasonUnterminatedModule)))

	_, err = NewProcessor(1).Run(context.Background(), Skeleton(), root, []string{"missing.v"})
	require.True(t, errors.As(err, &unitErr))
	assert.Equal(t, "missing", unitErr.Unit)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteResult_RoundTrip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"theories/a.v": "Module M.\nLemma foo : True.\nEnd M.\n",
	})

	res, err := NewProcessor(1).Run(context.Background(), Skeleton(), root, []string{"theories/a.v"})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out")
	w, err := NewAtomicWriter(out)
	require.NoError(t, err)
	require.NoError(t, WriteResult(w, res))
	require.NoError(t, w.Close())

	rewritten, err := os.ReadFile(filepath.Join(out, "theories", "a.v"))
	require.NoError(t, err)
	assert.Equal(t, res.Rewritten["theories.a"], string(rewritten))

	ds, err := LoadDataset(out)
	require.NoError(t, err)
	require.Contains(t, ds["theories.a"], "M.foo")
	assert.Equal(t, "M.foo", ds["theories.a"]["M.foo"].QualifiedName)
	assert.Equal(t, res.Dataset, ds)

	_, err = os.Stat(filepath.Join(out, ".tmp"))
	assert.True(t, os.IsNotExist(err))

	_, err = LoadDataset(filepath.Join(out, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAtomicWriter(t *testing.T) {
	t.Parallel()

	w, err := NewAtomicWriter(t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.Exists("deep/nested/file.json"))
	require.NoError(t, w.WriteJSON("deep/nested/file.json", map[string]int{"a": 1}))
	assert.True(t, w.Exists("deep/nested/file.json"))

	data, err := os.ReadFile(filepath.Join(w.Dir(), "deep", "nested", "file.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(data))

	entries, err := os.ReadDir(filepath.Join(w.Dir(), ".tmp"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
