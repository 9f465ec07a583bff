// Package iostaging implements the raw staging store: append-only bulk
// loading of source entries and keyset-paged scans for the pipeline
// reader. This is an impure I/O package working on the raw_records
// table.
package iostaging

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/lexgraph/lexdb/pkg/db"
	"github.com/lexgraph/lexdb/pkg/record"
)

// Store provides access to the raw_records staging table.
type Store struct {
	operator db.Operator
}

// NewStore creates a staging store over a connected operator.
func NewStore(op db.Operator) *Store {
	return &Store{operator: op}
}

// BulkAppend stores a batch of raw entries through the COPY protocol:
// rows land in a session temp table and move into raw_records with
// ON CONFLICT (checksum) DO NOTHING, so replays and overlapping files
// cannot create duplicates. Returns the number of newly inserted rows.
func (s *Store) BulkAppend(
	ctx context.Context,
	entries []record.RawRecord,
) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	pool := s.operator.Pool()
	if pool == nil {
		return 0, NotConnectedError()
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, AppendError(len(entries), err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		CREATE TEMPORARY TABLE raw_records_temp (
			source_id VARCHAR(50),
			payload JSONB,
			checksum CHAR(64),
			file_path TEXT,
			line_number INTEGER
		) ON COMMIT DROP
	`)
	if err != nil {
		return 0, AppendError(len(entries), err)
	}

	columns := []string{
		"source_id", "payload", "checksum", "file_path", "line_number",
	}

	copySource := pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
		e := entries[i]
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, err
		}
		return []any{
			e.SourceID,
			payload,
			e.Checksum,
			e.FilePath,
			e.LineNumber,
		}, nil
	})

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"raw_records_temp"},
		columns,
		copySource,
	)
	if err != nil {
		return 0, AppendError(len(entries), err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO raw_records
			(source_id, payload, checksum, file_path, line_number, created_at)
		SELECT source_id, payload, checksum, file_path, line_number, now()
		FROM raw_records_temp
		ON CONFLICT (checksum) DO NOTHING
	`)
	if err != nil {
		return 0, AppendError(len(entries), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, AppendError(len(entries), err)
	}

	return tag.RowsAffected(), nil
}

// FetchPage returns up to limit raw entries with id greater than after,
// ordered by id. Keyset pagination keeps page cost flat regardless of
// table size; the last returned id is the next checkpoint.
func (s *Store) FetchPage(
	ctx context.Context,
	sourceID string,
	after int64,
	limit int,
) ([]record.RawRecord, error) {
	pool := s.operator.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	q := `
		SELECT id, source_id, payload, checksum, file_path, line_number
		FROM raw_records
		WHERE id > $1
	`
	var args []any
	if sourceID != "" {
		q += ` AND source_id = $2 ORDER BY id LIMIT $3`
		args = []any{after, sourceID, limit}
	} else {
		q += ` ORDER BY id LIMIT $2`
		args = []any{after, limit}
	}

	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, ScanError(err)
	}
	defer rows.Close()

	var out []record.RawRecord
	for rows.Next() {
		var r record.RawRecord
		var payload []byte
		err = rows.Scan(
			&r.ID, &r.SourceID, &payload,
			&r.Checksum, &r.FilePath, &r.LineNumber,
		)
		if err != nil {
			return nil, ScanError(err)
		}
		if err := json.Unmarshal(payload, &r.Payload); err != nil {
			return nil, ScanError(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, ScanError(err)
	}

	return out, nil
}

// Count returns the number of staged entries, optionally for one
// source.
func (s *Store) Count(
	ctx context.Context,
	sourceID string,
) (int64, error) {
	pool := s.operator.Pool()
	if pool == nil {
		return 0, NotConnectedError()
	}

	var count int64
	var err error
	if sourceID == "" {
		err = pool.QueryRow(ctx,
			`SELECT count(*) FROM raw_records`).Scan(&count)
	} else {
		err = pool.QueryRow(ctx,
			`SELECT count(*) FROM raw_records WHERE source_id = $1`,
			sourceID).Scan(&count)
	}
	if err != nil {
		return 0, CountError(err)
	}
	return count, nil
}
