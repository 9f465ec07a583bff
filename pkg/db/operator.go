package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lexgraph/lexdb/pkg/config"
)

// Operator defines the interface for basic database management
// operations. It provides connection lifecycle management and exposes
// the pgxpool.Pool for higher-level components (staging store, bulk
// writer, pipeline) to execute their specialized SQL internally.
//
// Pool() is exposed on purpose: bulk loading relies on pgx-specific
// features (CopyFrom, temp tables) that do not fit behind a narrow
// query interface.
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// HasTables checks if the database has any tables in the public
	// schema. Used to decide whether schema creation should prompt.
	HasTables(ctx context.Context) (bool, error)

	// DropAllTables drops all tables in the public schema.
	DropAllTables(ctx context.Context) error
}
