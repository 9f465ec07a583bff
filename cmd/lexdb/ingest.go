package main

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/lexgraph/lexdb/internal/ioconfig"
	"github.com/lexgraph/lexdb/internal/iodb"
	"github.com/lexgraph/lexdb/internal/ioingest"
	"github.com/lexgraph/lexdb/pkg/db"
	"github.com/spf13/cobra"
)

var (
	ingestSourceID string
	ingestCatalog  string
)

func getIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Stage a dictionary source file",
		Long: `Stage a dictionary source file as raw entries.

The source must be listed in the source catalog (sources.toml); its
format decides the loader. Entries are stored verbatim with a checksum,
so re-ingesting the same file is a no-op.

Examples:
  lexdb ingest --source-id kaikki-de kaikki.org-dictionary-German.jsonl
  lexdb ingest --source-id swadesh-207 --sources my-sources.toml swadesh.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestSourceID, "source-id", "",
		"catalog id of the source being ingested (required)")
	cmd.Flags().StringVar(&ingestCatalog, "sources", "",
		"source catalog file (default: ~/.config/lexdb/sources.toml)")
	_ = cmd.MarkFlagRequired("source-id")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfig()
	filePath := args[0]

	catalogPath := ingestCatalog
	if catalogPath == "" {
		var err error
		catalogPath, err = ioconfig.GetDefaultSourcesPath()
		if err != nil {
			return err
		}
	}

	catalog, err := ioingest.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}

	src, ok := catalog.Find(ingestSourceID)
	if !ok {
		known := make([]string, len(catalog.Sources))
		for i, s := range catalog.Sources {
			known[i] = s.ID
		}
		return ioingest.SourceUnknownError(ingestSourceID, known)
	}

	var op db.Operator = iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer op.Close()

	ingestor := ioingest.NewIngestor(op, slog.Default())
	ingestor.WithProgress = true

	res, err := ingestor.IngestFile(ctx, src, filePath)
	if err != nil {
		return err
	}

	fmt.Printf("\n✓ Ingestion complete: %s entries read, %s new, %s duplicates\n",
		humanize.Comma(res.Read),
		humanize.Comma(res.Stored),
		humanize.Comma(res.Read-res.Stored))
	fmt.Println("\nNext step: run 'lexdb process' to build canonical records")

	return nil
}
