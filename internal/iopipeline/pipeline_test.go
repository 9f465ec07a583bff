package iopipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/concept"
	"github.com/lexgraph/lexdb/pkg/config"
	"github.com/lexgraph/lexdb/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	entries []record.RawRecord
	served  atomic.Int64
}

func (f *fakeSource) FetchPage(
	_ context.Context,
	sourceID string,
	after int64,
	limit int,
) ([]record.RawRecord, error) {
	var out []record.RawRecord
	for _, e := range f.entries {
		if e.ID <= after {
			continue
		}
		if sourceID != "" && e.SourceID != sourceID {
			continue
		}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}
	f.served.Add(int64(len(out)))
	return out, nil
}

func (f *fakeSource) Count(_ context.Context, sourceID string) (int64, error) {
	var n int64
	for _, e := range f.entries {
		if sourceID == "" || e.SourceID == sourceID {
			n++
		}
	}
	return n, nil
}

type fakeEmbedder struct {
	err   error
	block bool
}

func (f *fakeEmbedder) Embed(
	ctx context.Context,
	texts []string,
) ([][]float32, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type fakeSink struct {
	mu      sync.Mutex
	records []record.CanonicalRecord
	steps   []record.TransformStep
}

func (f *fakeSink) BulkUpsert(
	_ context.Context,
	records []record.CanonicalRecord,
) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
	return int64(len(records)), nil
}

func (f *fakeSink) AppendTransformLog(
	_ context.Context,
	steps []record.TransformStep,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, steps...)
	return nil
}

func rawEntry(id int64, source, headword, language, definition string) record.RawRecord {
	return record.RawRecord{
		ID:       id,
		SourceID: source,
		Payload: map[string]any{
			"headword":   headword,
			"language":   language,
			"definition": definition,
		},
	}
}

func testConfig() *config.PipelineConfig {
	return &config.PipelineConfig{
		DBFetchBatch:        2,
		EmbeddingBatch:      8,
		DBWriteBatch:        4,
		NumCleaners:         2,
		NumEmbedders:        1,
		NumWriters:          1,
		RawQueueSize:        2,
		CleanedQueueSize:    2,
		EmbeddedQueueSize:   2,
		MinDefinitionLength: 5,
		SkipDuplicates:      true,
	}
}

func testRunner(
	cfg *config.PipelineConfig,
	src *fakeSource,
	emb *fakeEmbedder,
	sink Sink,
	t *testing.T,
) *Runner {
	t.Helper()
	assigner, err := concept.NewAssigner(
		[]concept.Concept{
			{ID: "concept_0001", Centroid: []float32{1, 0, 0}},
			{ID: "concept_0002", Centroid: []float32{0, 1, 0}},
		}, 3, slog.Default())
	require.NoError(t, err)

	r := NewRunner(cfg, src, emb, assigner, sink, slog.Default())
	r.progressInterval = time.Hour
	return r
}

func TestRunHappyPath(t *testing.T) {
	src := &fakeSource{entries: []record.RawRecord{
		rawEntry(1, "kaikki-de", "Haus", "de", "a building for living in"),
		rawEntry(2, "kaikki-de", "Wasser", "de", "clear liquid vital for life"),
		rawEntry(3, "kaikki-de", "Ohr", "de", "ear"), // definition too short
	}}
	sink := &fakeSink{}
	r := testRunner(testConfig(), src, &fakeEmbedder{}, sink, t)

	stats, err := r.Run(t.Context(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Fetched)
	assert.Equal(t, int64(2), stats.Cleaned)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, int64(2), stats.Written)
	assert.Equal(t, int64(3), stats.LastID)

	require.Len(t, sink.records, 2)
	byHeadword := make(map[string]record.CanonicalRecord)
	for _, rec := range sink.records {
		byHeadword[rec.Headword] = rec
	}
	haus := byHeadword["haus"]
	assert.NotEmpty(t, haus.ID)
	assert.Equal(t, "de", haus.Language)
	assert.Equal(t, []float32{1, 0, 0}, haus.Embedding)
	assert.Equal(t, "concept_0001", haus.ConceptID)
	assert.InDelta(t, 1.0, haus.Confidence, 1e-6)
	assert.Equal(t, haus.Confidence, haus.DataQuality,
		"data quality carries the assignment confidence")
}

func TestRunSourceFilter(t *testing.T) {
	src := &fakeSource{entries: []record.RawRecord{
		rawEntry(1, "kaikki-de", "Haus", "de", "a building for living in"),
		rawEntry(2, "swadesh-100", "eau", "fr", "water, the clear liquid"),
	}}
	sink := &fakeSink{}
	r := testRunner(testConfig(), src, &fakeEmbedder{}, sink, t)

	stats, err := r.Run(t.Context(), RunOptions{SourceID: "swadesh-100"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Fetched)
	require.Len(t, sink.records, 1)
	assert.Equal(t, "eau", sink.records[0].Headword)
}

func TestRunResumeFromCheckpoint(t *testing.T) {
	src := &fakeSource{entries: []record.RawRecord{
		rawEntry(1, "s", "Haus", "de", "a building for living in"),
		rawEntry(2, "s", "Wasser", "de", "clear liquid vital for life"),
		rawEntry(3, "s", "Feuer", "de", "flames and heat of combustion"),
	}}
	sink := &fakeSink{}
	r := testRunner(testConfig(), src, &fakeEmbedder{}, sink, t)

	stats, err := r.Run(t.Context(), RunOptions{After: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Fetched)
	require.Len(t, sink.records, 1)
	assert.Equal(t, "feuer", sink.records[0].Headword)
}

func TestRunSkipsDuplicates(t *testing.T) {
	src := &fakeSource{entries: []record.RawRecord{
		rawEntry(1, "s", "Haus", "de", "a building for living in"),
		rawEntry(2, "s", "Haus", "de", "a structure with walls and a roof"),
	}}
	sink := &fakeSink{}
	r := testRunner(testConfig(), src, &fakeEmbedder{}, sink, t)

	stats, err := r.Run(t.Context(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Cleaned)
	assert.Equal(t, int64(1), stats.Duplicates)
	assert.Len(t, sink.records, 1)
}

func TestRunKeepsDuplicatesWhenDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.SkipDuplicates = false
	src := &fakeSource{entries: []record.RawRecord{
		rawEntry(1, "s", "Haus", "de", "a building for living in"),
		rawEntry(2, "s", "Haus", "de", "a structure with walls and a roof"),
	}}
	sink := &fakeSink{}
	r := testRunner(cfg, src, &fakeEmbedder{}, sink, t)

	stats, err := r.Run(t.Context(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.Duplicates)
	assert.Len(t, sink.records, 2)
}

func TestRunProvenance(t *testing.T) {
	cfg := testConfig()
	cfg.TrackProvenance = true
	src := &fakeSource{entries: []record.RawRecord{
		rawEntry(7, "s", "Haus", "de", "a building for living in"),
	}}
	sink := &fakeSink{}
	r := testRunner(cfg, src, &fakeEmbedder{}, sink, t)

	_, err := r.Run(t.Context(), RunOptions{})
	require.NoError(t, err)

	require.NotEmpty(t, sink.steps)
	for _, step := range sink.steps {
		assert.Equal(t, int64(7), step.RawID)
		assert.NotEmpty(t, step.RunID)
		assert.NotEmpty(t, step.StepName)
		assert.True(t, step.Success)
	}
}

func TestRunEmbedderFailureAbortsRun(t *testing.T) {
	src := &fakeSource{entries: []record.RawRecord{
		rawEntry(1, "s", "Haus", "de", "a building for living in"),
	}}
	sink := &fakeSink{}
	r := testRunner(
		testConfig(), src, &fakeEmbedder{err: assert.AnError}, sink, t)

	_, err := r.Run(t.Context(), RunOptions{})
	require.Error(t, err)

	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.ErrorIs(t, gnErr.Err, assert.AnError)
	assert.Contains(t, gnErr.Err.Error(), "embed")
}

func TestRunCancellation(t *testing.T) {
	src := &fakeSource{entries: []record.RawRecord{
		rawEntry(1, "s", "Haus", "de", "a building for living in"),
	}}
	sink := &fakeSink{}
	r := testRunner(testConfig(), src, &fakeEmbedder{block: true}, sink, t)

	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := r.Run(ctx, RunOptions{})
	require.Error(t, err)
	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.Contains(t, gnErr.Err.Error(), "cancelled")
}

func TestRunEmptySource(t *testing.T) {
	sink := &fakeSink{}
	r := testRunner(testConfig(), &fakeSource{}, &fakeEmbedder{}, sink, t)

	stats, err := r.Run(t.Context(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Fetched)
	assert.Empty(t, sink.records)
}

// uniqueEntries builds n raw entries with distinct headwords and
// definitions long enough to pass the admission gate.
func uniqueEntries(n int) []record.RawRecord {
	entries := make([]record.RawRecord, n)
	for i := range entries {
		entries[i] = rawEntry(int64(i+1), "s",
			fmt.Sprintf("wort%03d", i),
			"de",
			fmt.Sprintf("unique definition number %03d", i))
	}
	return entries
}

// slowSink delays every flush and records how far the reader ran ahead
// of the writes, so bounded queues are observable from the outside.
type slowSink struct {
	fakeSink
	src     *fakeSource
	delay   time.Duration
	maxLead int64
}

func (s *slowSink) BulkUpsert(
	ctx context.Context,
	records []record.CanonicalRecord,
) (int64, error) {
	time.Sleep(s.delay)
	s.mu.Lock()
	lead := s.src.served.Load() - int64(len(s.records))
	if lead > s.maxLead {
		s.maxLead = lead
	}
	s.mu.Unlock()
	return s.fakeSink.BulkUpsert(ctx, records)
}

func TestRunBackpressure(t *testing.T) {
	src := &fakeSource{entries: uniqueEntries(100)}
	sink := &slowSink{src: src, delay: 5 * time.Millisecond}
	r := testRunner(testConfig(), src, &fakeEmbedder{}, sink, t)

	stats, err := r.Run(t.Context(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.Fetched)
	assert.Equal(t, int64(100), stats.Written)

	// The bounded queues cap how far the reader can run ahead of a
	// slow writer: the queue capacities plus one in-hand batch per
	// worker (reader included) plus the writer's flush buffer. An
	// unbounded queue would let the reader drain all 100 entries while
	// the first flush sleeps.
	cfg := testConfig()
	batches := cfg.RawQueueSize + cfg.CleanedQueueSize +
		cfg.EmbeddedQueueSize + cfg.NumCleaners + cfg.NumEmbedders +
		cfg.NumWriters + 1
	bound := int64(batches*cfg.DBFetchBatch + cfg.DBWriteBatch)
	assert.LessOrEqual(t, sink.maxLead, bound,
		"reader outran the writer past the queue capacity")
}

func TestRunConcurrencyEquivalence(t *testing.T) {
	entries := uniqueEntries(60)

	run := func(cleaners, writers int) map[string]record.CanonicalRecord {
		cfg := testConfig()
		cfg.NumCleaners = cleaners
		cfg.NumWriters = writers
		sink := &fakeSink{}
		r := testRunner(cfg, &fakeSource{entries: entries},
			&fakeEmbedder{}, sink, t)

		stats, err := r.Run(t.Context(), RunOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(60), stats.Written)

		byID := make(map[string]record.CanonicalRecord, len(sink.records))
		for _, rec := range sink.records {
			byID[rec.ID] = rec
		}
		return byID
	}

	serial := run(1, 1)
	parallel := run(4, 3)

	require.Len(t, parallel, len(serial))
	for id, want := range serial {
		got, ok := parallel[id]
		require.True(t, ok, "record %s missing from parallel run", id)
		assert.Equal(t, want.Headword, got.Headword)
		assert.Equal(t, want.Definition, got.Definition)
		assert.Equal(t, want.ConceptID, got.ConceptID)
		assert.Equal(t, want.DataQuality, got.DataQuality)
	}
}
