// Package schema provides database schema models for LexDB.
// GORM AutoMigrate creates the tables; the pgvector column and its
// index are added with raw DDL because AutoMigrate cannot express them.
package schema

import (
	"time"
)

// RawRecord is a staged source entry in the raw_records table.
// Entries are append-only; the checksum makes re-ingestion idempotent.
type RawRecord struct {
	// ID is a monotonically growing surrogate key, used for keyset
	// pagination by the pipeline reader.
	ID int64 `gorm:"primaryKey;autoIncrement"`

	// SourceID references the sources table.
	SourceID string `gorm:"type:varchar(50);index;not null"`

	// Payload is the source entry as arrived, stored as JSONB.
	Payload []byte `gorm:"type:jsonb;not null"`

	// Checksum is the SHA-256 hex digest of the canonical JSON payload.
	Checksum string `gorm:"type:char(64);uniqueIndex;not null"`

	// FilePath and LineNumber locate the entry in its source file.
	FilePath   string `gorm:"type:text"`
	LineNumber int

	CreatedAt time.Time
}

// Record is a canonical dictionary entry in the records table.
// The embedding vector column is created separately; see VectorDDL.
type Record struct {
	// ID is the deterministic UUID v5 of the cleaned entry.
	ID string `gorm:"type:uuid;primaryKey"`

	Headword   string `gorm:"type:varchar(255);index;not null"`
	IPA        string `gorm:"type:varchar(255)"`
	Language   string `gorm:"type:varchar(10);index;not null"`
	Definition string `gorm:"type:text;not null"`
	Etymology  string `gorm:"type:text"`
	POSTag     string `gorm:"type:varchar(50)"`

	// ConceptID is the nearest concept centroid, or "unassigned".
	ConceptID string `gorm:"type:varchar(50);index"`

	// Confidence is 1 minus the cosine distance to the concept.
	Confidence float64

	// DataQuality mirrors the concept-assignment confidence, in [0, 1].
	DataQuality float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransformLog is one provenance step in the append-only transform_log
// table.
type TransformLog struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	RunID        string `gorm:"type:uuid;index;not null"`
	RawID        int64  `gorm:"index;not null"`
	StepName     string `gorm:"type:varchar(100);not null"`
	StepVersion  string `gorm:"type:varchar(20);not null"`
	Parameters   string `gorm:"type:text"`
	ExecutedAt   time.Time
	DurationMS   int64
	Success      bool
	ErrorMessage string `gorm:"type:text"`
}

// TableName overrides GORM's pluralization; the log is singular.
func (TransformLog) TableName() string { return "transform_log" }

// Source is a registered data source in the sources table.
type Source struct {
	// ID is the catalog's short identifier, e.g. "kaikki-de".
	ID string `gorm:"type:varchar(50);primaryKey"`

	Title       string `gorm:"type:varchar(255)"`
	Description string `gorm:"type:text"`

	// Format is "jsonl" or "csv".
	Format string `gorm:"type:varchar(20)"`

	// URL is where the source data was obtained.
	URL string `gorm:"type:varchar(255)"`

	// License names the source's license.
	License string `gorm:"type:varchar(100)"`

	// RecordCount is the number of staged raw entries.
	RecordCount int64

	UpdatedAt time.Time
}

// Concept is one row of the semantic concept catalog. The centroid
// vector column is created separately; see VectorDDL.
type Concept struct {
	ID    string `gorm:"type:varchar(50);primaryKey"`
	Label string `gorm:"type:varchar(255)"`
	Size  int

	CreatedAt time.Time
}
