package main

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/lexgraph/lexdb/internal/iobulk"
	"github.com/lexgraph/lexdb/internal/iocache"
	"github.com/lexgraph/lexdb/internal/ioconcept"
	"github.com/lexgraph/lexdb/internal/iodb"
	"github.com/lexgraph/lexdb/internal/ioembed"
	"github.com/lexgraph/lexdb/internal/iopipeline"
	"github.com/lexgraph/lexdb/internal/iostaging"
	"github.com/lexgraph/lexdb/pkg/concept"
	"github.com/lexgraph/lexdb/pkg/db"
	"github.com/lexgraph/lexdb/pkg/embed"
	"github.com/spf13/cobra"
)

var (
	processSourceID   string
	processAfter      int64
	processProvenance bool
	processNoCache    bool
	processCleaners   int
	processWriters    int
)

func getProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the transform pipeline",
		Long: `Clean, embed and write staged raw entries as canonical records.

The pipeline runs as concurrent stages coupled by bounded queues:
reader → cleaners → embedders → writers. Writes are id-keyed upserts,
so re-processing the same entries is idempotent.

An interrupted run reports its checkpoint; pass it back with --after to
resume where the run stopped.

Examples:
  lexdb process
  lexdb process --source-id kaikki-de
  lexdb process --after 1500000
  lexdb process --track-provenance`,
		RunE: runProcess,
	}

	cmd.Flags().StringVar(&processSourceID, "source-id", "",
		"process only entries of this source")
	cmd.Flags().Int64Var(&processAfter, "after", 0,
		"resume after this raw entry id (checkpoint)")
	cmd.Flags().BoolVar(&processProvenance, "track-provenance", false,
		"record transform steps in the transform log")
	cmd.Flags().BoolVar(&processNoCache, "no-cache", false,
		"skip the Redis embedding cache")
	cmd.Flags().IntVar(&processCleaners, "cleaners", 0,
		"number of cleaning workers (default from config)")
	cmd.Flags().IntVar(&processWriters, "writers", 0,
		"number of database writers (default from config)")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfig()
	log := slog.Default()

	if processProvenance {
		cfg.Pipeline.TrackProvenance = true
	}
	if processCleaners > 0 {
		cfg.Pipeline.NumCleaners = processCleaners
	}
	if processWriters > 0 {
		cfg.Pipeline.NumWriters = processWriters
	}

	var op db.Operator = iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer op.Close()

	model := ioembed.New(&cfg.Embedding)

	var cache embed.Cache
	if cfg.Cache.Enabled && !processNoCache {
		c := iocache.New(&cfg.Cache)
		if err := c.Ping(ctx); err != nil {
			log.Warn("embedding cache unavailable, continuing without it",
				"addr", cfg.Cache.Addr, "error", err)
		} else {
			cache = c
			defer c.Close()
		}
	}

	engine := embed.NewEngine(model, cache, embed.Options{
		SubBatch:  cfg.Pipeline.EmbeddingBatch,
		Dimension: cfg.Embedding.Dimension,
		Logger:    log,
	})

	concepts, err := ioconcept.NewCatalog(op).Load(ctx)
	if err != nil {
		return err
	}
	assigner, err := concept.NewAssigner(
		concepts, cfg.Embedding.Dimension, log)
	if err != nil {
		return err
	}

	runner := iopipeline.NewRunner(
		&cfg.Pipeline,
		iostaging.NewStore(op),
		engine,
		assigner,
		iobulk.NewWriter(op, cfg.Embedding.Dimension),
		log,
	)

	stats, err := runner.Run(ctx, iopipeline.RunOptions{
		SourceID: processSourceID,
		After:    processAfter,
	})
	if err != nil {
		if stats.LastID > 0 {
			fmt.Printf("\nCheckpoint: resume with --after %d\n", stats.LastID)
		}
		return err
	}

	es := engine.Stats()
	fmt.Println("\n✓ Pipeline run complete")
	fmt.Printf("  fetched:    %s\n", humanize.Comma(stats.Fetched))
	fmt.Printf("  cleaned:    %s\n", humanize.Comma(stats.Cleaned))
	fmt.Printf("  rejected:   %s\n", humanize.Comma(stats.Rejected))
	fmt.Printf("  duplicates: %s\n", humanize.Comma(stats.Duplicates))
	fmt.Printf("  written:    %s\n", humanize.Comma(stats.Written))
	fmt.Printf("  cache:      %s hits, %s misses\n",
		humanize.Comma(es.CacheHits), humanize.Comma(es.CacheMisses))

	return nil
}
