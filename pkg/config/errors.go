package config

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/errcode"
)

// requiredError reports a configuration field that must be set.
func requiredError(field string) error {
	msg := `Configuration field <em>%s</em> is required`
	vars := []any{field}

	return &gn.Error{
		Code: errcode.ConfigValidationError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("missing config field %q", field),
	}
}

// rangeError reports a numeric configuration value outside its range.
func rangeError(field string, got int) error {
	msg := `Configuration field <em>%s</em> has value <em>%d</em>, which is out of range`
	vars := []any{field, got}

	return &gn.Error{
		Code: errcode.ConfigValidationError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("config field %q out of range: %d", field, got),
	}
}

// valueError reports an unrecognized configuration value.
func valueError(field, got string) error {
	msg := `Configuration field <em>%s</em> has unknown value <em>%s</em>`
	vars := []any{field, got}

	return &gn.Error{
		Code: errcode.ConfigValidationError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("config field %q has unknown value %q", field, got),
	}
}
