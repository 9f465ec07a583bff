package embed

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/errcode"
)

// ModelError creates an error for a failed embedding model call.
func ModelError(err error) error {
	msg := `Embedding model call failed

<em>Possible causes:</em>
  - Embedding service is not running
  - Wrong embedding.url in configuration
  - Network failure

<em>How to fix:</em>
  1. Check the embedding service is reachable
  2. Verify embedding.url and embedding.model settings`

	return &gn.Error{
		Code: errcode.EmbedModelError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("embedding model call failed: %w", err),
	}
}

// BatchError creates an error for a batch that still exhausts model
// memory after halving.
func BatchError(size int, err error) error {
	msg := `Embedding batch of <em>%d</em> texts failed even after halving

<em>How to fix:</em>
  1. Lower pipeline.embedding_batch
  2. Give the embedding service more memory`

	vars := []any{size}

	return &gn.Error{
		Code: errcode.EmbedBatchError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("embedding batch of %d failed: %w", size, err),
	}
}

// DimensionError creates an error for a vector of unexpected length.
func DimensionError(want, got int) error {
	msg := `Embedding model returned a vector of dimension <em>%d</em>, expected <em>%d</em>

<em>How to fix:</em>
  1. Align embedding.dimension with the configured model
  2. Recreate the schema if the model changed`

	vars := []any{got, want}

	return &gn.Error{
		Code: errcode.EmbedDimensionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("embedding dimension mismatch: want %d, got %d", want, got),
	}
}

// ZeroVectorError creates an error for an all-zero embedding, which
// cannot be normalized.
func ZeroVectorError() error {
	msg := `Embedding model returned a zero vector`

	return &gn.Error{
		Code: errcode.EmbedDimensionError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("zero embedding vector"),
	}
}

// CountMismatchError creates an error for a model returning the wrong
// number of vectors.
func CountMismatchError(want, got int) error {
	msg := `Embedding model returned <em>%d</em> vectors for <em>%d</em> texts`

	vars := []any{got, want}

	return &gn.Error{
		Code: errcode.EmbedModelError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("embedding count mismatch: want %d, got %d", want, got),
	}
}
