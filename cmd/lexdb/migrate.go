package main

import (
	"fmt"

	"github.com/lexgraph/lexdb/internal/iodb"
	"github.com/lexgraph/lexdb/internal/ioschema"
	"github.com/lexgraph/lexdb/pkg/db"
	"github.com/lexgraph/lexdb/pkg/lifecycle"
	"github.com/spf13/cobra"
)

func getMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		Long: `Update the database schema to the latest version.

GORM AutoMigrate adds missing tables and columns; existing data is
preserved. The vector DDL is idempotent and re-applied with the
configured embedding dimension.

Examples:
  lexdb migrate
  lexdb migrate --config custom.yaml`,
		RunE: runMigrate,
	}
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfig()

	var op db.Operator = iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer op.Close()

	var sm lifecycle.SchemaManager = ioschema.NewManager(op)

	fmt.Println("Migrating schema...")
	if err := sm.Migrate(ctx, cfg); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	fmt.Println("✓ Schema migration complete")
	return nil
}
