package concept_test

import (
	"testing"

	"github.com/lexgraph/lexdb/pkg/concept"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() []concept.Concept {
	return []concept.Concept{
		{ID: "concept_0000", Centroid: []float32{1, 0, 0}, Size: 10},
		{ID: "concept_0001", Centroid: []float32{0, 1, 0}, Size: 20},
		{ID: "concept_0002", Centroid: []float32{0, 0, 1}, Size: 5},
	}
}

func TestAssigner_NearestCentroid(t *testing.T) {
	a, err := concept.NewAssigner(catalog(), 3, nil)
	require.NoError(t, err)
	require.Equal(t, 3, a.Len())

	got := a.Assign([][]float32{
		{0.9, 0.1, 0},
		{0, 1, 0},
		{0.1, 0.2, 0.9},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "concept_0000", got[0].ConceptID)
	assert.Equal(t, "concept_0001", got[1].ConceptID)
	assert.Equal(t, "concept_0002", got[2].ConceptID)

	// Exact centroid match means cosine distance 0, confidence 1.
	assert.InDelta(t, 1.0, got[1].Confidence, 1e-6)
	assert.Less(t, got[0].Confidence, 1.0)
	assert.Greater(t, got[0].Confidence, 0.9)
}

func TestAssigner_TieGoesToLowerIndex(t *testing.T) {
	a, err := concept.NewAssigner(catalog(), 3, nil)
	require.NoError(t, err)

	// Equidistant between the first two centroids.
	got := a.Assign([][]float32{{1, 1, 0}})
	assert.Equal(t, "concept_0000", got[0].ConceptID)
}

func TestAssigner_EmptyCatalog(t *testing.T) {
	a, err := concept.NewAssigner(nil, 3, nil)
	require.NoError(t, err)

	got := a.Assign([][]float32{{1, 0, 0}, {0, 1, 0}})
	require.Len(t, got, 2)
	for _, asg := range got {
		assert.Equal(t, concept.Unassigned, asg.ConceptID)
		assert.InDelta(t, 1.0, asg.Confidence, 1e-9)
	}
}

func TestAssigner_DimensionMismatch(t *testing.T) {
	bad := []concept.Concept{{ID: "concept_0000", Centroid: []float32{1, 0}}}
	_, err := concept.NewAssigner(bad, 3, nil)
	assert.Error(t, err)
}

func TestAssigner_ZeroCentroid(t *testing.T) {
	bad := []concept.Concept{{ID: "concept_0000", Centroid: []float32{0, 0, 0}}}
	_, err := concept.NewAssigner(bad, 3, nil)
	assert.Error(t, err)
}

func TestAssigner_ZeroVector(t *testing.T) {
	a, err := concept.NewAssigner(catalog(), 3, nil)
	require.NoError(t, err)

	got := a.Assign([][]float32{{0, 0, 0}})
	assert.Equal(t, concept.Unassigned, got[0].ConceptID)
	assert.Zero(t, got[0].Confidence)
}

func TestAssigner_UnnormalizedInputs(t *testing.T) {
	// Cosine distance ignores magnitude.
	a, err := concept.NewAssigner([]concept.Concept{
		{ID: "concept_0000", Centroid: []float32{2, 0, 0}},
	}, 3, nil)
	require.NoError(t, err)

	got := a.Assign([][]float32{{5, 0, 0}})
	assert.Equal(t, "concept_0000", got[0].ConceptID)
	assert.InDelta(t, 1.0, got[0].Confidence, 1e-6)
}
