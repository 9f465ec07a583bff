package main

import (
	"fmt"
	"strings"

	"github.com/lexgraph/lexdb/internal/ioconfig"
	"github.com/lexgraph/lexdb/internal/ioingest"
	"github.com/spf13/cobra"
)

var sourcesCatalogPath string

func getSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the source catalog",
		Long: `Validate and list the data sources of the catalog.

Examples:
  lexdb sources
  lexdb sources --sources my-sources.toml`,
		RunE: runSources,
	}

	cmd.Flags().StringVar(&sourcesCatalogPath, "sources", "",
		"source catalog file (default: ~/.config/lexdb/sources.toml)")

	return cmd
}

func runSources(cmd *cobra.Command, args []string) error {
	path := sourcesCatalogPath
	if path == "" {
		var err error
		path, err = ioconfig.GetDefaultSourcesPath()
		if err != nil {
			return err
		}
	}

	catalog, err := ioingest.LoadCatalog(path)
	if err != nil {
		return err
	}

	fmt.Printf("Catalog: %s (%d sources)\n\n", path, len(catalog.Sources))
	for _, s := range catalog.Sources {
		fmt.Printf("  %-14s %-6s %-8s %s\n",
			s.ID, s.Format, s.Quality, s.Name)
		if len(s.Languages) > 0 {
			fmt.Printf("  %-14s languages: %s\n",
				"", strings.Join(s.Languages, ", "))
		}
	}

	return nil
}
