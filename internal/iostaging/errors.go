package iostaging

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/errcode"
)

// NotConnectedError creates an error for staging operations attempted
// without a database connection.
func NotConnectedError() error {
	msg := "Staging operation attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// AppendError creates an error for a failed bulk append.
func AppendError(count int, err error) error {
	msg := `Failed to bulk-append <em>%d</em> raw entries`
	vars := []any{count}

	return &gn.Error{
		Code: errcode.StagingAppendError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("bulk append of %d raw entries failed: %w", count, err),
	}
}

// ScanError creates an error for a failed staged-entry scan.
func ScanError(err error) error {
	msg := `Failed to read staged raw entries`

	return &gn.Error{
		Code: errcode.StagingScanError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("raw entries scan failed: %w", err),
	}
}

// CountError creates an error for a failed staged-entry count.
func CountError(err error) error {
	msg := `Failed to count staged raw entries`

	return &gn.Error{
		Code: errcode.StagingCountError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("raw entries count failed: %w", err),
	}
}
