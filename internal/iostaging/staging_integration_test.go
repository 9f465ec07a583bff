package iostaging_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/lexgraph/lexdb/internal/iodb"
	"github.com/lexgraph/lexdb/internal/ioschema"
	"github.com/lexgraph/lexdb/internal/iostaging"
	"github.com/lexgraph/lexdb/internal/iotesting"
	"github.com/lexgraph/lexdb/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: this is an integration test that requires PostgreSQL with the
// pgvector extension and a lexdb_test database.
// Skip with: go test -short

func TestStagingRoundTrip_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg := iotesting.GetTestConfig()

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	defer op.Close()

	err := op.DropAllTables(ctx)
	require.NoError(t, err, "Should drop existing tables")

	sm := ioschema.NewManager(op)
	err = sm.Create(ctx, cfg)
	require.NoError(t, err, "Should create schema")

	store := iostaging.NewStore(op)

	entries := make([]record.RawRecord, 5)
	for i := range entries {
		payload := map[string]any{
			"headword":   fmt.Sprintf("wort%d", i),
			"language":   "de",
			"definition": "a test definition",
		}
		sum, err := record.Checksum(payload)
		require.NoError(t, err)
		entries[i] = record.RawRecord{
			SourceID:   "kaikki-de",
			Payload:    payload,
			Checksum:   sum,
			FilePath:   "test.jsonl",
			LineNumber: i + 1,
		}
	}

	stored, err := store.BulkAppend(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored)

	// Replaying the same batch is a no-op.
	stored, err = store.BulkAppend(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored, "checksum conflict should skip replays")

	count, err := store.Count(ctx, "kaikki-de")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	// Keyset pagination walks the table in id order.
	page, err := store.FetchPage(ctx, "", 0, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "wort0", page[0].Payload["headword"])

	last := page[len(page)-1].ID
	page, err = store.FetchPage(ctx, "", last, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "wort3", page[0].Payload["headword"])

	// Source filter excludes other sources.
	page, err = store.FetchPage(ctx, "swadesh-207", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}
