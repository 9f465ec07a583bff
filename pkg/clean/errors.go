package clean

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/errcode"
)

// StepError creates an error for a cleaner rejecting its own output in
// strict mode.
func StepError(cleanerName, value string) error {
	msg := `Cleaning step <em>%s</em> rejected its output`
	vars := []any{cleanerName}

	return &gn.Error{
		Code: errcode.CleanStepError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"validation failed after %s: %q", cleanerName, value),
	}
}
