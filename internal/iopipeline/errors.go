package iopipeline

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/errcode"
)

// StageError creates an error for a failed pipeline stage.
func StageError(stage string, err error) error {
	msg := `Pipeline stage <em>%s</em> failed`
	vars := []any{stage}

	return &gn.Error{
		Code: errcode.PipelineStageError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("pipeline stage %s failed: %w", stage, err),
	}
}

// CancelledError creates an error for an interrupted run. Written
// records stay in the database; a resumed run picks up behind the
// checkpoint and the upsert absorbs the overlap.
func CancelledError(written int64) error {
	msg := `Pipeline run interrupted after writing <em>%d</em> records

Re-run with <em>--after</em> set to the reported checkpoint id.`
	vars := []any{written}

	return &gn.Error{
		Code: errcode.PipelineCancelledError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("pipeline cancelled after %d records", written),
	}
}
