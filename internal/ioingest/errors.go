package ioingest

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/errcode"
)

// NotConnectedError creates an error for ingest operations attempted
// without a database connection.
func NotConnectedError() error {
	msg := "Ingestion attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// CatalogError creates an error for an unreadable or invalid source
// catalog.
func CatalogError(path string, err error) error {
	msg := `Cannot load source catalog <em>%s</em>

<em>How to fix:</em>
  1. Check the file exists and is readable
  2. Each [[source]] needs id, format ("jsonl" or "csv") and name`
	vars := []any{path}

	return &gn.Error{
		Code: errcode.IngestCatalogError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot load source catalog %q: %w", path, err),
	}
}

// SourceUnknownError creates an error for a source id missing from the
// catalog.
func SourceUnknownError(id string, known []string) error {
	msg := `Unknown source <em>%s</em>

<em>Registered sources:</em> %v`
	vars := []any{id, known}

	return &gn.Error{
		Code: errcode.IngestSourceUnknownError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unknown source %q", id),
	}
}

// FileError creates an error for an unreadable source file.
func FileError(path string, err error) error {
	msg := `Cannot read source file <em>%s</em>`
	vars := []any{path}

	return &gn.Error{
		Code: errcode.IngestFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read source file %q: %w", path, err),
	}
}

// FormatError creates an error for an unsupported source format.
func FormatError(format string) error {
	msg := `Unsupported source format <em>%s</em>

Supported formats are <em>jsonl</em> and <em>csv</em>.`
	vars := []any{format}

	return &gn.Error{
		Code: errcode.IngestFormatError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unsupported source format %q", format),
	}
}

// RegisterError creates an error for a failed source registration.
func RegisterError(id string, err error) error {
	msg := `Cannot register source <em>%s</em>`
	vars := []any{id}

	return &gn.Error{
		Code: errcode.IngestCatalogError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot register source %q: %w", id, err),
	}
}
