package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lexgraph/lexdb/internal/iodb"
	"github.com/lexgraph/lexdb/internal/ioschema"
	"github.com/lexgraph/lexdb/pkg/config"
	"github.com/lexgraph/lexdb/pkg/db"
	"github.com/lexgraph/lexdb/pkg/lifecycle"
	"github.com/lexgraph/lexdb/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	forceCreate bool
)

// setupLogger replaces the default slog logger with one built from the
// loaded configuration.
func setupLogger(cfg *config.Config) error {
	slog.SetDefault(logger.New(&cfg.Log))
	return nil
}

func getCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create database schema",
		Long: `Create the lexical database schema from scratch.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Checks for existing tables and prompts for confirmation if found
  3. Enables the pgvector extension
  4. Creates all base tables using GORM AutoMigrate
  5. Adds the vector columns and index for the configured dimension

Use --force to skip confirmation and drop existing tables automatically.

Examples:
  lexdb create
  lexdb create --force
  lexdb create --config custom.yaml`,
		RunE: runCreate,
	}

	cmd.Flags().BoolVar(&forceCreate, "force", false,
		"drop existing tables before creating schema (destructive)")

	return cmd
}

// confirmDrop asks the user to confirm dropping existing tables.
func confirmDrop() (bool, error) {
	fmt.Println("\n⚠️  Warning: Database contains existing tables.")
	fmt.Println("Creating schema will drop ALL existing tables and data.")
	fmt.Print("\nDo you want to continue? (yes/no): ")

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y", nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfig()

	var op db.Operator = iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer op.Close()

	fmt.Printf("Connected to database: %s@%s:%d/%s\n",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing tables: %w", err)
	}

	if hasTables {
		if !forceCreate {
			ok, err := confirmDrop()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted. No changes made to the database.")
				return nil
			}
		}

		fmt.Println("Dropping all existing tables...")
		if err := op.DropAllTables(ctx); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
		fmt.Println("✓ All tables dropped")
	}

	var sm lifecycle.SchemaManager = ioschema.NewManager(op)

	fmt.Println("Creating schema using GORM AutoMigrate...")
	if err := sm.Create(ctx, cfg); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	fmt.Println("\n✓ Database schema creation complete!")
	fmt.Println("\nNext steps:")
	fmt.Println("  - Run 'lexdb ingest' to stage dictionary sources")
	fmt.Println("  - Run 'lexdb process' to build canonical records")

	return nil
}
