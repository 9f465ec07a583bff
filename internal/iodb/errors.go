package iodb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/lexgraph/lexdb/pkg/errcode"
)

// ConnectionError creates an error for failed database connection.
func ConnectionError(
	host string,
	port int,
	database, user string,
	err error,
) error {
	msg := `Cannot connect to PostgreSQL

<em>Host:</em> %s:%d
<em>Database:</em> %s
<em>User:</em> %s

<em>Possible causes:</em>
  - PostgreSQL is not running
  - Wrong host, port or credentials
  - Database does not exist

<em>How to fix:</em>
  1. Check PostgreSQL is running
  2. Verify connection settings in config or LEXDB_DATABASE_* env vars
  3. Create the database: createdb %s`

	vars := []any{host, port, database, user, database}

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot connect to postgres: %w", err),
	}
}

// NotConnectedError creates an error for operations attempted without
// a database connection.
func NotConnectedError() error {
	msg := "Database operation attempted without connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// TableCheckError creates an error for failed table metadata queries.
func TableCheckError(tableName string, err error) error {
	msg := `Cannot inspect table <em>%s</em>`
	vars := []any{tableName}

	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot inspect table %q: %w", tableName, err),
	}
}
