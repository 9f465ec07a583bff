// Package embed provides the embedding engine: it turns batches of text
// into L2-normalized vectors through a Model, with an optional
// read-through Cache and graceful handling of model memory exhaustion.
package embed

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"
)

// Model computes embeddings for a batch of texts. Implementations talk
// to an external inference service; see internal/ioembed.
type Model interface {
	// Embed returns one vector per input text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Cache stores vectors keyed by text. Implementations must tolerate
// partial hits; see internal/iocache.
type Cache interface {
	// GetMany returns the cached vectors for the given texts. Missing
	// texts are simply absent from the result.
	GetMany(ctx context.Context, texts []string) (map[string][]float32, error)

	// SetMany stores vectors for the given texts.
	SetMany(ctx context.Context, vectors map[string][]float32) error
}

// ErrOOM marks a model call that failed because the model ran out of
// memory. Clients map transport-level signals to this error.
var ErrOOM = errors.New("embedding model out of memory")

// IsOOM reports whether an error indicates model memory exhaustion.
func IsOOM(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOOM) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "out of memory")
}

// Stats is a snapshot of engine counters.
type Stats struct {
	CacheHits   int64
	CacheMisses int64
	CacheWrites int64
	ModelCalls  int64
	OOMRetries  int64
}

// Engine embeds text batches. It splits work into model-sized
// sub-batches, consults the cache first, and halves the sub-batch size
// when the model reports memory exhaustion. The reduced size sticks for
// the rest of the engine's life.
type Engine struct {
	model Model
	cache Cache
	dim   int
	log   *slog.Logger

	// subBatch shrinks after a successful OOM halving and stays
	// shrunk, so later batches do not re-trigger the exhaustion.
	// Atomic because embedder workers share the engine.
	subBatch atomic.Int64

	hits       atomic.Int64
	misses     atomic.Int64
	writes     atomic.Int64
	modelCalls atomic.Int64
	oomRetries atomic.Int64

	cacheBroken atomic.Bool
	warnOnce    sync.Once
}

// Options configure an Engine.
type Options struct {
	// SubBatch is the number of texts per model call.
	SubBatch int

	// Dimension is the required vector length.
	Dimension int

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// NewEngine creates an Engine. The cache may be nil.
func NewEngine(model Model, cache Cache, opts Options) *Engine {
	if opts.SubBatch <= 0 {
		opts.SubBatch = 512
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	e := &Engine{
		model: model,
		cache: cache,
		dim:   opts.Dimension,
		log:   opts.Logger,
	}
	e.subBatch.Store(int64(opts.SubBatch))
	return e
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats {
	return Stats{
		CacheHits:   e.hits.Load(),
		CacheMisses: e.misses.Load(),
		CacheWrites: e.writes.Load(),
		ModelCalls:  e.modelCalls.Load(),
		OOMRetries:  e.oomRetries.Load(),
	}
}

// Embed returns one normalized vector per text, in input order.
func (e *Engine) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	// Re-read the sub-batch size each step: an OOM halving in this or
	// a concurrent call shrinks it mid-run.
	for start := 0; start < len(texts); {
		end := min(start+int(e.subBatch.Load()), len(texts))
		if err := e.embedChunk(ctx, texts[start:end], out[start:end]); err != nil {
			return nil, err
		}
		start = end
	}

	return out, nil
}

// embedChunk fills out with vectors for one sub-batch of texts.
func (e *Engine) embedChunk(
	ctx context.Context,
	texts []string,
	out [][]float32,
) error {
	cached := e.cacheGet(ctx, texts)

	var missTexts []string
	var missIdx []int
	for i, t := range texts {
		if vec, ok := cached[t]; ok {
			out[i] = vec
			e.hits.Add(1)
		} else {
			missTexts = append(missTexts, t)
			missIdx = append(missIdx, i)
			e.misses.Add(1)
		}
	}

	if len(missTexts) == 0 {
		return nil
	}

	vectors, err := e.callModel(ctx, missTexts)
	if err != nil {
		return err
	}

	toCache := make(map[string][]float32, len(missTexts))
	for i, vec := range vectors {
		normalized, err := e.normalize(vec)
		if err != nil {
			return err
		}
		out[missIdx[i]] = normalized
		toCache[missTexts[i]] = normalized
	}

	e.cacheSet(ctx, toCache)
	return nil
}

// callModel invokes the model once, retrying in two halves after a
// single out-of-memory response. A second OOM fails the batch.
func (e *Engine) callModel(
	ctx context.Context,
	texts []string,
) ([][]float32, error) {
	e.modelCalls.Add(1)
	vectors, err := e.model.Embed(ctx, texts)
	if err == nil {
		if len(vectors) != len(texts) {
			return nil, CountMismatchError(len(texts), len(vectors))
		}
		return vectors, nil
	}

	if !IsOOM(err) || len(texts) < 2 {
		if IsOOM(err) {
			return nil, BatchError(len(texts), err)
		}
		return nil, ModelError(err)
	}

	// One halving attempt before giving up on the batch.
	e.oomRetries.Add(1)
	half := len(texts) / 2
	e.log.Warn("embedding model ran out of memory, halving batch",
		"batch", len(texts), "half", half)

	var out [][]float32
	for _, part := range [][]string{texts[:half], texts[half:]} {
		e.modelCalls.Add(1)
		vectors, err := e.model.Embed(ctx, part)
		if err != nil {
			if IsOOM(err) {
				return nil, BatchError(len(part), err)
			}
			return nil, ModelError(err)
		}
		if len(vectors) != len(part) {
			return nil, CountMismatchError(len(part), len(vectors))
		}
		out = append(out, vectors...)
	}

	e.shrinkBatch(half)
	return out, nil
}

// shrinkBatch lowers the sub-batch size to n. Only ever shrinks: a
// concurrent halving may already have set a smaller size.
func (e *Engine) shrinkBatch(n int) {
	for {
		cur := e.subBatch.Load()
		if int64(n) >= cur {
			return
		}
		if e.subBatch.CompareAndSwap(cur, int64(n)) {
			e.log.Info("embedding batch size reduced", "batch", n)
			return
		}
	}
}

// normalize checks the vector dimension and scales it to unit L2 norm.
func (e *Engine) normalize(vec []float32) ([]float32, error) {
	if e.dim > 0 && len(vec) != e.dim {
		return nil, DimensionError(e.dim, len(vec))
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return nil, ZeroVectorError()
	}
	if math.Abs(norm-1) < 1e-4 {
		return vec, nil
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out, nil
}

// cacheGet consults the cache, degrading permanently after the first
// failure so a dead Redis costs one warning, not one per batch.
func (e *Engine) cacheGet(
	ctx context.Context,
	texts []string,
) map[string][]float32 {
	if e.cache == nil || e.cacheBroken.Load() {
		return nil
	}
	cached, err := e.cache.GetMany(ctx, texts)
	if err != nil {
		e.disableCache(err)
		return nil
	}
	return cached
}

func (e *Engine) cacheSet(ctx context.Context, vectors map[string][]float32) {
	if e.cache == nil || e.cacheBroken.Load() {
		return
	}
	if err := e.cache.SetMany(ctx, vectors); err != nil {
		e.disableCache(err)
		return
	}
	e.writes.Add(int64(len(vectors)))
}

func (e *Engine) disableCache(err error) {
	e.cacheBroken.Store(true)
	e.warnOnce.Do(func() {
		e.log.Warn("embedding cache unavailable, continuing without it",
			"error", err)
	})
}
