package ioconcept

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/errcode"
)

// NotConnectedError creates an error for catalog reads attempted
// without a database connection.
func NotConnectedError() error {
	msg := "Concept catalog read attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// CatalogError creates an error for a failed concept catalog read.
func CatalogError(err error) error {
	msg := `Failed to load the concept catalog`

	return &gn.Error{
		Code: errcode.ConceptCatalogError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("concept catalog load failed: %w", err),
	}
}
