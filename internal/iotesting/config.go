// Package iotesting provides shared helpers for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"github.com/lexgraph/lexdb/internal/ioconfig"
	"github.com/lexgraph/lexdb/pkg/config"
)

// TestDatabaseName is the database name used for all integration tests.
// It guarantees tests never run against a production database.
const TestDatabaseName = "lexdb_test"

// GetTestConfig returns a configuration suitable for integration tests.
// It loads the standard config (file or defaults) and overrides the
// database name to TestDatabaseName.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	result, err := ioconfig.Load("")

	var cfg *config.Config
	if err != nil {
		cfg = config.Defaults()
	} else {
		cfg = result.Config
	}

	cfg.MergeWithDefaults()
	cfg.Database.Database = TestDatabaseName

	return cfg
}

// GetTestDatabaseConfig returns only the database configuration for
// tests that do not need the full Config struct.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}
