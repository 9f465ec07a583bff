// Package concept assigns embedded records to their nearest semantic
// concept centroid. The catalog of centroids is loaded once; assignment
// is a single similarity pass over a flattened centroid matrix.
package concept

import (
	"log/slog"
	"math"
	"sync"
)

// Unassigned is the concept id given to every record when the catalog
// is empty.
const Unassigned = "unassigned"

// Concept is one cluster of the semantic concept catalog.
type Concept struct {
	// ID names the cluster, e.g. "concept_0042".
	ID string

	// Centroid is the cluster's mean embedding, unit-normalized, of the
	// model's dimension.
	Centroid []float32

	// Size is the number of members the cluster had at discovery time.
	Size int

	// Label is a short human-readable gloss of the cluster.
	Label string
}

// Assignment is the result of mapping one vector to the catalog.
type Assignment struct {
	ConceptID string

	// Confidence is 1 minus the cosine distance to the centroid; 1.0
	// means the vector sits exactly on it.
	Confidence float64
}

// Assigner maps vectors to their nearest catalog concept. It is safe
// for concurrent use; all state is immutable after construction.
type Assigner struct {
	ids      []string
	matrix   []float32 // row-major K x dim centroid matrix
	norms    []float64 // centroid L2 norms
	dim      int
	log      *slog.Logger
	warnOnce sync.Once
}

// NewAssigner builds an Assigner from a concept catalog. Centroids with
// a dimension different from dim are rejected.
func NewAssigner(
	concepts []Concept,
	dim int,
	log *slog.Logger,
) (*Assigner, error) {
	if log == nil {
		log = slog.Default()
	}

	a := &Assigner{
		ids:    make([]string, 0, len(concepts)),
		matrix: make([]float32, 0, len(concepts)*dim),
		norms:  make([]float64, 0, len(concepts)),
		dim:    dim,
		log:    log,
	}

	for _, c := range concepts {
		if len(c.Centroid) != dim {
			return nil, DimensionError(c.ID, dim, len(c.Centroid))
		}
		var sum float64
		for _, v := range c.Centroid {
			sum += float64(v) * float64(v)
		}
		norm := math.Sqrt(sum)
		if norm == 0 {
			return nil, ZeroCentroidError(c.ID)
		}
		a.ids = append(a.ids, c.ID)
		a.matrix = append(a.matrix, c.Centroid...)
		a.norms = append(a.norms, norm)
	}

	return a, nil
}

// Len returns the number of concepts in the catalog.
func (a *Assigner) Len() int { return len(a.ids) }

// Assign maps each vector to its nearest concept in one pass over the
// centroid matrix. Ties go to the lower concept index. With an empty
// catalog every vector maps to Unassigned with confidence 1.0 and a
// single warning is logged.
func (a *Assigner) Assign(vectors [][]float32) []Assignment {
	out := make([]Assignment, len(vectors))

	if len(a.ids) == 0 {
		a.warnOnce.Do(func() {
			a.log.Warn("concept catalog is empty, all records unassigned")
		})
		for i := range out {
			out[i] = Assignment{ConceptID: Unassigned, Confidence: 1.0}
		}
		return out
	}

	for i, vec := range vectors {
		out[i] = a.assignOne(vec)
	}
	return out
}

func (a *Assigner) assignOne(vec []float32) Assignment {
	var vecNorm float64
	for _, v := range vec {
		vecNorm += float64(v) * float64(v)
	}
	vecNorm = math.Sqrt(vecNorm)
	if vecNorm == 0 {
		return Assignment{ConceptID: Unassigned, Confidence: 0}
	}

	best := 0
	bestDist := math.Inf(1)

	for k := range a.ids {
		row := a.matrix[k*a.dim : (k+1)*a.dim]
		var dot float64
		for j, v := range vec {
			dot += float64(v) * float64(row[j])
		}
		dist := 1 - dot/(vecNorm*a.norms[k])
		if dist < bestDist {
			bestDist = dist
			best = k
		}
	}

	return Assignment{
		ConceptID:  a.ids[best],
		Confidence: 1 - bestDist,
	}
}
