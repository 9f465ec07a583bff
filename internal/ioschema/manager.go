// Package ioschema implements the lifecycle.SchemaManager interface.
// This is an impure I/O package that wraps GORM AutoMigrate plus the
// raw DDL AutoMigrate cannot express: the pgvector extension, the
// vector columns and their index.
package ioschema

import (
	"context"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lexgraph/lexdb/pkg/config"
	"github.com/lexgraph/lexdb/pkg/db"
	"github.com/lexgraph/lexdb/pkg/lifecycle"
	"github.com/lexgraph/lexdb/pkg/schema"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Manager implements lifecycle.SchemaManager using GORM AutoMigrate.
type Manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) lifecycle.SchemaManager {
	return &Manager{operator: op}
}

// Create creates the database schema from scratch: the pgvector
// extension, all tables via GORM AutoMigrate, then the vector columns
// and index sized by the configured embedding dimension.
func (m *Manager) Create(
	ctx context.Context,
	cfg *config.Config,
) error {
	if err := m.enableExtension(ctx); err != nil {
		return err
	}

	gormDB, err := m.gormDB()
	if err != nil {
		return err
	}

	if err := schema.Migrate(gormDB); err != nil {
		return CreateSchemaError(err)
	}

	return m.applyVectorDDL(ctx, cfg.Embedding.Dimension)
}

// Migrate updates the database schema to the latest version. GORM
// handles schema version tracking automatically; the vector DDL is
// idempotent.
func (m *Manager) Migrate(
	ctx context.Context,
	cfg *config.Config,
) error {
	gormDB, err := m.gormDB()
	if err != nil {
		return err
	}

	if err := schema.Migrate(gormDB); err != nil {
		return MigrateSchemaError(err)
	}

	return m.applyVectorDDL(ctx, cfg.Embedding.Dimension)
}

func (m *Manager) gormDB() (*gorm.DB, error) {
	pool := m.operator.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{},
	)
	if err != nil {
		return nil, GORMConnectionError(err)
	}
	return gormDB, nil
}

// enableExtension installs pgvector; without it the vector columns
// cannot exist.
func (m *Manager) enableExtension(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	if _, err := pool.Exec(ctx, schema.ExtensionDDL()); err != nil {
		return ExtensionError(err)
	}
	return nil
}

func (m *Manager) applyVectorDDL(ctx context.Context, dim int) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	for _, ddl := range schema.VectorDDL(dim) {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return CreateSchemaError(err)
		}
	}
	return nil
}
