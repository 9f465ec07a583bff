package iocache

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/errcode"
)

// PingError creates an error for an unreachable Redis instance.
func PingError(err error) error {
	msg := `Cannot reach Redis

<em>Possible causes:</em>
  - Redis is not running
  - Wrong address in config or LEXDB_CACHE_ADDR

The pipeline runs without the cache, but every text is re-embedded.`

	return &gn.Error{
		Code: errcode.EmbedCacheError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("redis ping failed: %w", err),
	}
}

// GetError creates an error for a failed cache read.
func GetError(count int, err error) error {
	msg := `Failed to read <em>%d</em> cached embeddings`
	vars := []any{count}

	return &gn.Error{
		Code: errcode.EmbedCacheError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cache read of %d keys failed: %w", count, err),
	}
}

// SetError creates an error for a failed cache write.
func SetError(count int, err error) error {
	msg := `Failed to store <em>%d</em> embeddings in cache`
	vars := []any{count}

	return &gn.Error{
		Code: errcode.EmbedCacheError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cache write of %d keys failed: %w", count, err),
	}
}

// EncodeError creates an error for a failed vector encoding.
func EncodeError(err error) error {
	msg := `Failed to encode embedding for cache`

	return &gn.Error{
		Code: errcode.EmbedCacheError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("cannot encode embedding: %w", err),
	}
}

// DecodeError creates an error for a corrupted cache entry.
func DecodeError(err error) error {
	msg := `Failed to decode cached embedding`

	return &gn.Error{
		Code: errcode.EmbedCacheError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("cannot decode cached embedding: %w", err),
	}
}
