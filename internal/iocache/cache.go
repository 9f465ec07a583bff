// Package iocache implements the embedding cache on Redis. Vectors are
// GOB-encoded and keyed by a digest of the text plus a key version, so
// a model change invalidates the whole cache by bumping the version.
package iocache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/gnames/gnfmt"
	"github.com/lexgraph/lexdb/pkg/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lexdb:emb"

// Cache implements embed.Cache over a Redis instance.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	version string
	enc     gnfmt.GNgob
}

// New creates a Redis-backed cache from configuration. It does not
// connect; the first operation does.
func New(cfg *config.CacheConfig) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	return &Cache{
		client:  client,
		ttl:     time.Duration(cfg.TTLSec) * time.Second,
		version: cfg.KeyVersion,
	}
}

// NewWithClient wraps an existing Redis client; used by tests.
func NewWithClient(
	client *redis.Client,
	ttl time.Duration,
	version string,
) *Cache {
	return &Cache{client: client, ttl: ttl, version: version}
}

// Ping verifies the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return PingError(err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// key derives the Redis key for a text. Texts are hashed so arbitrary
// content and length never leak into the keyspace.
func (c *Cache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + ":" + c.version + ":" + hex.EncodeToString(sum[:])
}

// GetMany fetches cached vectors for the given texts with a single
// MGET. Missing texts are absent from the result.
func (c *Cache) GetMany(
	ctx context.Context,
	texts []string,
) (map[string][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.key(t)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, GetError(len(texts), err)
	}

	out := make(map[string][]float32, len(texts))
	for i, v := range values {
		if v == nil {
			continue
		}
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var vec []float32
		if err := c.enc.Decode([]byte(raw), &vec); err != nil {
			return nil, DecodeError(err)
		}
		out[texts[i]] = vec
	}

	return out, nil
}

// SetMany stores vectors with the configured TTL through one pipelined
// round trip.
func (c *Cache) SetMany(
	ctx context.Context,
	vectors map[string][]float32,
) error {
	if len(vectors) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for text, vec := range vectors {
		data, err := c.enc.Encode(vec)
		if err != nil {
			return EncodeError(err)
		}
		pipe.Set(ctx, c.key(text), data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return SetError(len(vectors), err)
	}
	return nil
}
