// Package iobulk implements high-throughput writes of canonical records
// through the COPY protocol. Rows land in a session temp table and move
// into records with a single statement, so a batch costs two round
// trips instead of one per row.
package iobulk

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lexgraph/lexdb/pkg/db"
	"github.com/lexgraph/lexdb/pkg/record"
	"github.com/pgvector/pgvector-go"
)

// Writer persists canonical records and provenance.
type Writer struct {
	operator db.Operator
	dim      int
}

// NewWriter creates a bulk writer. dim is the embedding dimension used
// in temp-table DDL.
func NewWriter(op db.Operator, dim int) *Writer {
	return &Writer{operator: op, dim: dim}
}

var recordColumns = []string{
	"id", "headword", "ipa", "language", "definition", "etymology",
	"pos_tag", "embedding", "concept_id", "confidence", "data_quality",
	"created_at", "updated_at",
}

func recordRow(r record.CanonicalRecord, now time.Time) []any {
	created := r.CreatedAt
	if created.IsZero() {
		created = now
	}
	var emb any
	if len(r.Embedding) > 0 {
		emb = pgvector.NewVector(r.Embedding)
	}
	return []any{
		r.ID, r.Headword, r.IPA, r.Language, r.Definition, r.Etymology,
		r.POSTag, emb, r.ConceptID, r.Confidence, r.DataQuality,
		created, now,
	}
}

// tempTableDDL matches the records table closely enough for the
// follow-up INSERT ... SELECT.
func (w *Writer) tempTableDDL() string {
	return fmt.Sprintf(`
		CREATE TEMPORARY TABLE records_temp (
			id UUID,
			headword VARCHAR(255),
			ipa VARCHAR(255),
			language VARCHAR(10),
			definition TEXT,
			etymology TEXT,
			pos_tag VARCHAR(50),
			embedding vector(%d),
			concept_id VARCHAR(50),
			confidence DOUBLE PRECISION,
			data_quality DOUBLE PRECISION,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
		) ON COMMIT DROP
	`, w.dim)
}

// BulkInsert appends records assuming no id conflicts; it is the fast
// path for first-time loads into an empty table.
func (w *Writer) BulkInsert(
	ctx context.Context,
	records []record.CanonicalRecord,
) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	pool := w.operator.Pool()
	if pool == nil {
		return 0, NotConnectedError()
	}

	now := time.Now().UTC()
	copySource := pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
		return recordRow(records[i], now), nil
	})

	n, err := pool.CopyFrom(
		ctx, pgx.Identifier{"records"}, recordColumns, copySource)
	if err != nil {
		return 0, InsertError(len(records), err)
	}
	return n, nil
}

// BulkUpsert writes records idempotently: COPY into a temp table, then
// INSERT ... ON CONFLICT (id) DO UPDATE. Conflicting rows keep their
// created_at; updated_at always moves forward. Returns the number of
// rows written.
func (w *Writer) BulkUpsert(
	ctx context.Context,
	records []record.CanonicalRecord,
) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	pool := w.operator.Pool()
	if pool == nil {
		return 0, NotConnectedError()
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, UpsertError(len(records), err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, w.tempTableDDL()); err != nil {
		return 0, UpsertError(len(records), err)
	}

	now := time.Now().UTC()
	copySource := pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
		return recordRow(records[i], now), nil
	})

	_, err = tx.CopyFrom(
		ctx, pgx.Identifier{"records_temp"}, recordColumns, copySource)
	if err != nil {
		return 0, UpsertError(len(records), err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO records (
			id, headword, ipa, language, definition, etymology,
			pos_tag, embedding, concept_id, confidence, data_quality,
			created_at, updated_at
		)
		SELECT
			id, headword, ipa, language, definition, etymology,
			pos_tag, embedding, concept_id, confidence, data_quality,
			created_at, updated_at
		FROM records_temp
		ON CONFLICT (id) DO UPDATE SET
			headword = EXCLUDED.headword,
			ipa = EXCLUDED.ipa,
			language = EXCLUDED.language,
			definition = EXCLUDED.definition,
			etymology = EXCLUDED.etymology,
			pos_tag = EXCLUDED.pos_tag,
			embedding = EXCLUDED.embedding,
			concept_id = EXCLUDED.concept_id,
			confidence = EXCLUDED.confidence,
			data_quality = EXCLUDED.data_quality,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, UpsertError(len(records), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, UpsertError(len(records), err)
	}

	return tag.RowsAffected(), nil
}

// BulkUpdateEmbeddings refreshes only the embedding column for the
// given ids, pairing ids with vectors through unnest. Used by targeted
// re-embedding after a model change.
func (w *Writer) BulkUpdateEmbeddings(
	ctx context.Context,
	ids []string,
	embeddings [][]float32,
) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if len(ids) != len(embeddings) {
		return 0, UpdateError(
			len(ids),
			fmt.Errorf("got %d ids and %d embeddings", len(ids), len(embeddings)))
	}
	pool := w.operator.Pool()
	if pool == nil {
		return 0, NotConnectedError()
	}

	vectors := make([]pgvector.Vector, len(embeddings))
	for i, emb := range embeddings {
		vectors[i] = pgvector.NewVector(emb)
	}

	q := fmt.Sprintf(`
		UPDATE records
		SET embedding = data.embedding,
			updated_at = CURRENT_TIMESTAMP
		FROM (
			SELECT
				unnest($1::uuid[]) AS id,
				unnest($2::vector(%d)[]) AS embedding
		) AS data
		WHERE records.id = data.id
	`, w.dim)

	tag, err := pool.Exec(ctx, q, ids, vectors)
	if err != nil {
		return 0, UpdateError(len(ids), err)
	}
	return tag.RowsAffected(), nil
}

// AppendTransformLog stores provenance steps through CopyFrom. The
// transform log is append-only; rows are never updated.
func (w *Writer) AppendTransformLog(
	ctx context.Context,
	steps []record.TransformStep,
) error {
	if len(steps) == 0 {
		return nil
	}
	pool := w.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	columns := []string{
		"run_id", "raw_id", "step_name", "step_version", "parameters",
		"executed_at", "duration_ms", "success", "error_message",
	}

	copySource := pgx.CopyFromSlice(len(steps), func(i int) ([]any, error) {
		s := steps[i]
		return []any{
			s.RunID, s.RawID, s.StepName, s.StepVersion, s.Parameters,
			s.ExecutedAt, s.DurationMS, s.Success, s.ErrorMessage,
		}, nil
	})

	_, err := pool.CopyFrom(
		ctx, pgx.Identifier{"transform_log"}, columns, copySource)
	if err != nil {
		return ProvenanceError(len(steps), err)
	}
	return nil
}
