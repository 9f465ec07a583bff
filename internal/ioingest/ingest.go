// Package ioingest stages source files into the raw_records table. It
// reads the TOML source catalog, registers sources in the database and
// streams file entries through the staging store in bulk batches.
package ioingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/lexgraph/lexdb/internal/iostaging"
	"github.com/lexgraph/lexdb/pkg/db"
	"github.com/lexgraph/lexdb/pkg/record"
	"github.com/lexgraph/lexdb/pkg/sources"
)

// Batch size for staging appends; one COPY round trip per batch.
const stagingBatch = 5000

// Ingestor stages source files and keeps the sources table current.
type Ingestor struct {
	operator db.Operator
	store    *iostaging.Store
	log      *slog.Logger

	// WithProgress shows a progress bar over the input file.
	WithProgress bool
}

// NewIngestor creates an ingestor over a connected operator.
func NewIngestor(op db.Operator, log *slog.Logger) *Ingestor {
	return &Ingestor{
		operator: op,
		store:    iostaging.NewStore(op),
		log:      log,
	}
}

// LoadCatalog reads and validates a TOML source catalog file.
func LoadCatalog(path string) (*sources.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, CatalogError(path, err)
	}
	cat, err := sources.Parse(data)
	if err != nil {
		return nil, CatalogError(path, err)
	}
	return cat, nil
}

// RegisterSource upserts one catalog source into the sources table.
func (ing *Ingestor) RegisterSource(
	ctx context.Context,
	src sources.Source,
) error {
	pool := ing.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	description := fmt.Sprintf(
		"languages: %s; quality: %s",
		strings.Join(src.Languages, ", "), src.Quality,
	)

	_, err := pool.Exec(ctx, `
		INSERT INTO sources
			(id, title, description, format, url, license, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			format = EXCLUDED.format,
			url = EXCLUDED.url,
			license = EXCLUDED.license,
			updated_at = now()
	`, src.ID, src.Name, description, src.Format, src.URL, src.License)
	if err != nil {
		return RegisterError(src.ID, err)
	}

	return nil
}

// Result summarizes one ingestion run.
type Result struct {
	// Read is the number of entries the loader produced.
	Read int64

	// Stored is the number of newly inserted rows; entries whose
	// checksum was already staged are counted in Read but not here.
	Stored int64
}

// IngestFile registers the source and streams the file into staging.
// Re-running on the same file is a no-op thanks to the checksum
// constraint.
func (ing *Ingestor) IngestFile(
	ctx context.Context,
	src sources.Source,
	path string,
) (Result, error) {
	var res Result

	if err := ing.RegisterSource(ctx, src); err != nil {
		return res, err
	}

	loader, err := ForFormat(src.Format, ing.log)
	if err != nil {
		return res, err
	}

	var bar *pb.ProgressBar
	if ing.WithProgress {
		if info, err := os.Stat(path); err == nil {
			ing.log.Info("ingesting source file",
				"source", src.ID, "file", path,
				"size", humanize.Bytes(uint64(info.Size())))
		}
		bar = pb.Full.Start(0)
		bar.Set("prefix", src.ID+" ")
		bar.Set(pb.CleanOnFinish, true)
	}

	err = loader.Load(ctx, path, src.ID, stagingBatch,
		func(batch []record.RawRecord) error {
			stored, err := ing.store.BulkAppend(ctx, batch)
			if err != nil {
				return err
			}
			res.Read += int64(len(batch))
			res.Stored += stored
			if bar != nil {
				bar.SetTotal(res.Read)
				bar.SetCurrent(res.Read)
			}
			return nil
		})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return res, err
	}

	if err := ing.updateRecordCount(ctx, src.ID); err != nil {
		return res, err
	}

	ing.log.Info("ingestion finished",
		"source", src.ID,
		"read", humanize.Comma(res.Read),
		"stored", humanize.Comma(res.Stored),
		"duplicates", humanize.Comma(res.Read-res.Stored),
	)

	return res, nil
}

// updateRecordCount refreshes the staged entry count on the source row.
func (ing *Ingestor) updateRecordCount(
	ctx context.Context,
	sourceID string,
) error {
	count, err := ing.store.Count(ctx, sourceID)
	if err != nil {
		return err
	}

	pool := ing.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}
	_, err = pool.Exec(ctx, `
		UPDATE sources SET record_count = $2, updated_at = now()
		WHERE id = $1
	`, sourceID, count)
	if err != nil {
		return RegisterError(sourceID, err)
	}
	return nil
}
