package iobulk_test

import (
	"context"
	"testing"
	"time"

	"github.com/lexgraph/lexdb/internal/iobulk"
	"github.com/lexgraph/lexdb/internal/iodb"
	"github.com/lexgraph/lexdb/internal/ioschema"
	"github.com/lexgraph/lexdb/internal/iotesting"
	"github.com/lexgraph/lexdb/pkg/record"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: this is an integration test that requires PostgreSQL with the
// pgvector extension and a lexdb_test database.
// Skip with: go test -short

func testRecord(headword, language, definition string) record.CanonicalRecord {
	return record.CanonicalRecord{
		ID:          record.NewID(headword, language, definition),
		Headword:    headword,
		Language:    language,
		Definition:  definition,
		Embedding:   []float32{1, 0, 0},
		ConceptID:   "concept_0001",
		Confidence:  0.9,
		DataQuality: 1.0,
	}
}

func TestBulkUpsert_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg := iotesting.GetTestConfig()
	cfg.Embedding.Dimension = 3

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	defer op.Close()

	require.NoError(t, op.DropAllTables(ctx))
	require.NoError(t, ioschema.NewManager(op).Create(ctx, cfg))

	w := iobulk.NewWriter(op, 3)

	recs := []record.CanonicalRecord{
		testRecord("haus", "de", "a building for living in"),
		testRecord("maison", "fr", "a building for living in"),
	}

	n, err := w.BulkUpsert(ctx, recs)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var created, updated time.Time
	row := op.Pool().QueryRow(ctx,
		"SELECT created_at, updated_at FROM records WHERE id = $1", recs[0].ID)
	require.NoError(t, row.Scan(&created, &updated))

	// Replaying keeps created_at and moves updated_at forward.
	recs[0].Confidence = 0.5
	n, err = w.BulkUpsert(ctx, recs[:1])
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var created2, updated2 time.Time
	var confidence float64
	row = op.Pool().QueryRow(ctx, `
		SELECT created_at, updated_at, confidence
		FROM records WHERE id = $1`, recs[0].ID)
	require.NoError(t, row.Scan(&created2, &updated2, &confidence))
	assert.True(t, created2.Equal(created), "created_at must survive upserts")
	assert.True(t, updated2.After(updated) || updated2.Equal(updated))
	assert.InDelta(t, 0.5, confidence, 1e-9)

	var count int64
	err = op.Pool().QueryRow(ctx,
		"SELECT count(*) FROM records").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "upsert must not duplicate rows")
}

func TestBulkUpdateEmbeddings_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg := iotesting.GetTestConfig()
	cfg.Embedding.Dimension = 3

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	defer op.Close()

	require.NoError(t, op.DropAllTables(ctx))
	require.NoError(t, ioschema.NewManager(op).Create(ctx, cfg))

	w := iobulk.NewWriter(op, 3)

	rec := testRecord("feuer", "de", "the visible effect of combustion")
	_, err := w.BulkInsert(ctx, []record.CanonicalRecord{rec})
	require.NoError(t, err)

	n, err := w.BulkUpdateEmbeddings(ctx,
		[]string{rec.ID}, [][]float32{{0, 1, 0}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var emb pgvector.Vector
	err = op.Pool().QueryRow(ctx,
		"SELECT embedding FROM records WHERE id = $1", rec.ID).Scan(&emb)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, emb.Slice())
}
