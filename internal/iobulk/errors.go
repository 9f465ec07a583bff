package iobulk

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/errcode"
)

// NotConnectedError creates an error for bulk operations attempted
// without a database connection.
func NotConnectedError() error {
	msg := "Bulk write attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// InsertError creates an error for a failed bulk insert.
func InsertError(count int, err error) error {
	msg := `Failed to bulk-insert <em>%d</em> records`
	vars := []any{count}

	return &gn.Error{
		Code: errcode.BulkInsertError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("bulk insert of %d records failed: %w", count, err),
	}
}

// UpsertError creates an error for a failed bulk upsert.
func UpsertError(count int, err error) error {
	msg := `Failed to bulk-upsert <em>%d</em> records`
	vars := []any{count}

	return &gn.Error{
		Code: errcode.BulkUpsertError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("bulk upsert of %d records failed: %w", count, err),
	}
}

// UpdateError creates an error for a failed embedding update.
func UpdateError(count int, err error) error {
	msg := `Failed to update embeddings for <em>%d</em> records`
	vars := []any{count}

	return &gn.Error{
		Code: errcode.BulkUpdateError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"embedding update of %d records failed: %w", count, err),
	}
}

// ProvenanceError creates an error for a failed transform log append.
func ProvenanceError(count int, err error) error {
	msg := `Failed to append <em>%d</em> transform log entries`
	vars := []any{count}

	return &gn.Error{
		Code: errcode.BulkProvenanceError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"transform log append of %d entries failed: %w", count, err),
	}
}
