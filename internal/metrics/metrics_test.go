package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// Test Plan for metrics:
// - Registries are independent of each other
// - Counters are written to a text file
// - Unit errors map to failure reasons, including wrapped ones

func TestRegistry_Independent(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	a.UnitsProcessed.WithLabelValues("skeleton").Add(3)
	a.StepsResolved.Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(a.UnitsProcessed.WithLabelValues("skeleton")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.UnitsProcessed.WithLabelValues("skeleton")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.StepsResolved))
}

func TestRegistry_WriteFile(t *testing.T) {
	t.Parallel()

	r := New()
	r.EntriesExtracted.WithLabelValues("skeleton", "Lemma").Add(2)
	r.AmbiguousNames.Set(5)

	path := filepath.Join(t.TempDir(), "docq.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `docq_entries_extracted_total{kind="Lemma",stage="skeleton"} 2`)
	assert.Contains(t, string(data), "docq_ambiguous_names 5")
}

func TestFailureReason(t *testing.T) {
	t.Parallel()

	modErr := fmt.Errorf("unit a: %w", &rocq.ModuleError{Module: "M"})
	assert.Equal(t, ReasonUnterminatedModule, FailureReason(modErr))
	assert.Equal(t, ReasonUnbalancedProof, FailureReason(&rocq.ProofBalanceError{Opened: 1}))
	assert.Equal(t, ReasonIO, FailureReason(os.ErrNotExist))
}
