// Package sources defines the data source catalog: a TOML file listing
// every dataset that may be ingested, with enough metadata to register
// it in the database.
package sources

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// Source describes one dataset of the catalog.
type Source struct {
	// ID is the short identifier used with --source-id, e.g. "kaikki-de".
	ID string `toml:"id"`

	// Name is the human-readable title.
	Name string `toml:"name"`

	// Format is the loader to use: "jsonl" or "csv".
	Format string `toml:"format"`

	// URL is where the dataset was obtained.
	URL string `toml:"url"`

	// Languages lists the ISO 639 codes the dataset covers.
	Languages []string `toml:"languages"`

	// License names the dataset's license.
	License string `toml:"license"`

	// Quality is a coarse grade: "high", "medium" or "low".
	Quality string `toml:"quality"`
}

// Catalog is the parsed sources file.
type Catalog struct {
	Sources []Source `toml:"source"`
}

// Parse decodes a TOML catalog and validates it.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := toml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("cannot parse sources catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks the catalog for missing fields and duplicate ids.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Sources))
	for i, s := range c.Sources {
		if s.ID == "" {
			return fmt.Errorf("source %d has no id", i)
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("duplicate source id %q", s.ID)
		}
		seen[s.ID] = struct{}{}

		switch s.Format {
		case "jsonl", "csv":
		default:
			return fmt.Errorf(
				"source %q has unsupported format %q", s.ID, s.Format)
		}
	}
	return nil
}

// Find returns the source with the given id.
func (c *Catalog) Find(id string) (Source, bool) {
	for _, s := range c.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}
