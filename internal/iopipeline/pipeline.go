// Package iopipeline orchestrates the transform pipeline: staged raw
// entries are cleaned, embedded, assigned to concepts and bulk-written
// as canonical records. Stages run concurrently, coupled by bounded
// channels of batches; a failure in any stage cancels the rest.
package iopipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexgraph/lexdb/pkg/concept"
	"github.com/lexgraph/lexdb/pkg/config"
	"github.com/lexgraph/lexdb/pkg/quality"
	"github.com/lexgraph/lexdb/pkg/record"
	"golang.org/x/sync/errgroup"
)

// RawSource pages staged raw entries by id. Implemented by
// iostaging.Store.
type RawSource interface {
	FetchPage(
		ctx context.Context,
		sourceID string,
		after int64,
		limit int,
	) ([]record.RawRecord, error)
	Count(ctx context.Context, sourceID string) (int64, error)
}

// Embedder turns texts into normalized vectors. Implemented by
// embed.Engine.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Sink persists canonical records and provenance. Implemented by
// iobulk.Writer.
type Sink interface {
	BulkUpsert(
		ctx context.Context,
		records []record.CanonicalRecord,
	) (int64, error)
	AppendTransformLog(
		ctx context.Context,
		steps []record.TransformStep,
	) error
}

// cleanBatch couples cleaned records with their provenance steps so
// both travel through the pipeline together.
type cleanBatch struct {
	records []record.CanonicalRecord
	steps   []record.TransformStep
}

// Runner executes pipeline runs.
type Runner struct {
	cfg      *config.PipelineConfig
	source   RawSource
	embedder Embedder
	assigner *concept.Assigner
	sink     Sink
	log      *slog.Logger

	// progressInterval is shortened by tests.
	progressInterval time.Duration
}

// NewRunner wires a pipeline runner from its stages.
func NewRunner(
	cfg *config.PipelineConfig,
	source RawSource,
	embedder Embedder,
	assigner *concept.Assigner,
	sink Sink,
	log *slog.Logger,
) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		cfg:              cfg,
		source:           source,
		embedder:         embedder,
		assigner:         assigner,
		sink:             sink,
		log:              log,
		progressInterval: 10 * time.Second,
	}
}

// RunOptions select what a run processes.
type RunOptions struct {
	// SourceID restricts the run to one source; empty means all.
	SourceID string

	// After resumes a run from a checkpoint: only raw entries with a
	// higher id are processed. The upsert makes overlap harmless.
	After int64
}

// Run processes staged raw entries until the source is exhausted or the
// context is cancelled. Returns the final counters; on error the
// counters reflect the work done before the failure.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (Stats, error) {
	var c counters
	runID := uuid.NewString()

	total, err := r.source.Count(ctx, opts.SourceID)
	if err != nil {
		return c.snapshot(), err
	}
	r.log.Info("pipeline run started",
		"run_id", runID, "source", opts.SourceID,
		"staged", total, "after", opts.After)

	g, gCtx := errgroup.WithContext(ctx)

	rawQ := make(chan []record.RawRecord, r.cfg.RawQueueSize)
	cleanedQ := make(chan cleanBatch, r.cfg.CleanedQueueSize)
	embeddedQ := make(chan cleanBatch, r.cfg.EmbeddedQueueSize)

	monCtx, monCancel := context.WithCancel(ctx)
	defer monCancel()
	go c.monitor(monCtx, r.log, r.progressInterval)

	// inStage keeps the failing stage's name on the error; pure
	// cancellations pass through so Run can report the checkpoint.
	inStage := func(name string, err error) error {
		if err == nil || gCtx.Err() != nil {
			return err
		}
		return StageError(name, err)
	}

	g.Go(func() error {
		defer close(rawQ)
		return inStage("read", r.read(gCtx, opts, rawQ, &c))
	})

	cleanerG, _ := errgroup.WithContext(gCtx)
	for i := 0; i < r.cfg.NumCleaners; i++ {
		cleanerG.Go(func() error {
			return inStage("clean",
				r.cleanStage(gCtx, runID, rawQ, cleanedQ, &c))
		})
	}
	g.Go(func() error {
		defer close(cleanedQ)
		return cleanerG.Wait()
	})

	embedderG, _ := errgroup.WithContext(gCtx)
	for i := 0; i < r.cfg.NumEmbedders; i++ {
		embedderG.Go(func() error {
			return inStage("embed",
				r.embedStage(gCtx, cleanedQ, embeddedQ, &c))
		})
	}
	g.Go(func() error {
		defer close(embeddedQ)
		return embedderG.Wait()
	})

	for i := 0; i < r.cfg.NumWriters; i++ {
		g.Go(func() error {
			return inStage("write", r.writeStage(gCtx, embeddedQ, &c))
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return c.snapshot(), CancelledError(c.written.Load())
		}
		return c.snapshot(), err
	}

	s := c.snapshot()
	r.log.Info("pipeline run finished",
		"run_id", runID,
		"fetched", s.Fetched, "cleaned", s.Cleaned,
		"rejected", s.Rejected, "duplicates", s.Duplicates,
		"written", s.Written, "last_id", s.LastID)
	return s, nil
}

// read pages raw entries by keyset and feeds the cleaning stage.
func (r *Runner) read(
	ctx context.Context,
	opts RunOptions,
	out chan<- []record.RawRecord,
	c *counters,
) error {
	after := opts.After
	for {
		page, err := r.source.FetchPage(
			ctx, opts.SourceID, after, r.cfg.DBFetchBatch)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}

		after = page[len(page)-1].ID
		c.fetched.Add(int64(len(page)))
		c.noteLastID(after)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- page:
		}
	}
}

// cleanStage turns raw payloads into canonical records. Entries that
// fail strict cleaning or the admission gate are counted and dropped;
// one bad entry never stops a run.
func (r *Runner) cleanStage(
	ctx context.Context,
	runID string,
	in <-chan []record.RawRecord,
	out chan<- cleanBatch,
	c *counters,
) error {
	cleaner := newEntryCleaner(r.cfg, r.log)

	for batch := range in {
		select {
		case <-ctx.Done():
			for range in {
			}
			return ctx.Err()
		default:
		}

		cb := cleanBatch{
			records: make([]record.CanonicalRecord, 0, len(batch)),
		}
		for _, raw := range batch {
			rec, steps, ok := cleaner.clean(raw, runID)
			if !ok {
				c.rejected.Add(1)
				continue
			}
			cb.records = append(cb.records, rec)
			cb.steps = append(cb.steps, steps...)
			c.cleaned.Add(1)
		}

		if len(cb.records) == 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- cb:
		}
	}
	return nil
}

// embedStage embeds definitions and assigns concepts. The embedder does
// its own sub-batching and caching; a batch-level failure here aborts
// the run, partial failures never happen.
func (r *Runner) embedStage(
	ctx context.Context,
	in <-chan cleanBatch,
	out chan<- cleanBatch,
	c *counters,
) error {
	for batch := range in {
		select {
		case <-ctx.Done():
			for range in {
			}
			return ctx.Err()
		default:
		}

		texts := make([]string, len(batch.records))
		for i, rec := range batch.records {
			texts[i] = rec.Definition
		}

		vectors, err := r.embedder.Embed(ctx, texts)
		if err != nil {
			return err
		}

		assignments := r.assigner.Assign(vectors)
		for i := range batch.records {
			batch.records[i].Embedding = vectors[i]
			batch.records[i].ConceptID = assignments[i].ConceptID
			batch.records[i].Confidence = assignments[i].Confidence
			batch.records[i].DataQuality = assignments[i].Confidence
		}
		c.embedded.Add(int64(len(batch.records)))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- batch:
		}
	}
	return nil
}

// writeStage buffers embedded records and flushes them in bulk. Each
// writer keeps its own (headword, language) dedup set; the id-keyed
// upsert remains the authoritative dedup across writers and runs.
func (r *Runner) writeStage(
	ctx context.Context,
	in <-chan cleanBatch,
	c *counters,
) error {
	buf := make([]record.CanonicalRecord, 0, r.cfg.DBWriteBatch)
	var steps []record.TransformStep
	var seen map[string]struct{}
	if r.cfg.SkipDuplicates {
		seen = make(map[string]struct{})
	}

	flush := func() error {
		if len(buf) == 0 && len(steps) == 0 {
			return nil
		}
		n, err := r.sink.BulkUpsert(ctx, buf)
		if err != nil {
			return err
		}
		c.written.Add(n)
		if r.cfg.TrackProvenance && len(steps) > 0 {
			if err := r.sink.AppendTransformLog(ctx, steps); err != nil {
				return err
			}
		}
		buf = buf[:0]
		steps = steps[:0]
		return nil
	}

	for batch := range in {
		select {
		case <-ctx.Done():
			for range in {
			}
			return ctx.Err()
		default:
		}

		for _, rec := range batch.records {
			if seen != nil {
				key := rec.Headword + "|" + rec.Language
				if _, dup := seen[key]; dup {
					c.duplicates.Add(1)
					continue
				}
				seen[key] = struct{}{}
			}
			buf = append(buf, rec)
		}
		if r.cfg.TrackProvenance {
			steps = append(steps, batch.steps...)
		}

		if len(buf) >= r.cfg.DBWriteBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// entryCleaner applies the per-field cleaning pipelines and the
// admission gate to one raw entry at a time.
type entryCleaner struct {
	pipes entryPipelineSet
	gate  quality.Gate
	track bool
	log   *slog.Logger
}

func newEntryCleaner(cfg *config.PipelineConfig, log *slog.Logger) *entryCleaner {
	return &entryCleaner{
		pipes: newEntryPipelineSet(),
		gate:  quality.DefaultGate(cfg.MinDefinitionLength),
		track: cfg.TrackProvenance,
		log:   log,
	}
}
