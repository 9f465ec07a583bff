package schema

import (
	"fmt"

	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Source{},
		&RawRecord{},
		&Record{},
		&TransformLog{},
		&Concept{},
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// ExtensionDDL returns the statement enabling pgvector.
func ExtensionDDL() string {
	return "CREATE EXTENSION IF NOT EXISTS vector"
}

// VectorDDL returns the statements adding the embedding and centroid
// vector columns for the given dimension, plus the vector index.
// AutoMigrate cannot express the vector type, so these run after it.
func VectorDDL(dim int) []string {
	return []string{
		fmt.Sprintf(
			"ALTER TABLE records ADD COLUMN IF NOT EXISTS embedding vector(%d)",
			dim),
		fmt.Sprintf(
			"ALTER TABLE concepts ADD COLUMN IF NOT EXISTS centroid vector(%d)",
			dim),
		"CREATE INDEX IF NOT EXISTS idx_records_embedding ON records " +
			"USING hnsw (embedding vector_cosine_ops)",
	}
}
