package concept

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/errcode"
)

// DimensionError creates an error for a centroid whose dimension does
// not match the embedding model's.
func DimensionError(conceptID string, want, got int) error {
	msg := `Concept <em>%s</em> has a centroid of dimension <em>%d</em>, expected <em>%d</em>

<em>How to fix:</em>
  1. Re-run concept discovery with the configured model
  2. Align embedding.dimension with the catalog`

	vars := []any{conceptID, got, want}

	return &gn.Error{
		Code: errcode.ConceptDimensionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"concept %s centroid dimension: want %d, got %d",
			conceptID, want, got),
	}
}

// ZeroCentroidError creates an error for an all-zero centroid.
func ZeroCentroidError(conceptID string) error {
	msg := `Concept <em>%s</em> has a zero centroid`

	vars := []any{conceptID}

	return &gn.Error{
		Code: errcode.ConceptCatalogError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("concept %s has zero centroid", conceptID),
	}
}
