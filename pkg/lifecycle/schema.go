// Package lifecycle defines the contracts for database lifecycle
// phases. Implementations live in internal/io* packages.
package lifecycle

import (
	"context"

	"github.com/lexgraph/lexdb/pkg/config"
)

// SchemaManager defines the interface for database schema management.
// It uses GORM AutoMigrate plus raw DDL for the pgvector columns.
// Schema management is idempotent - safe to run multiple times.
type SchemaManager interface {
	// Create creates the initial database schema: pgvector extension,
	// tables, vector columns and index.
	Create(ctx context.Context, cfg *config.Config) error

	// Migrate updates the database schema to the latest version.
	Migrate(ctx context.Context, cfg *config.Config) error
}
