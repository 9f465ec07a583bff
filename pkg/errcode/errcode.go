package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	ReadFileError

	// Config errors
	ConfigLoadError
	ConfigValidationError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableCheckError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaExtensionError

	// Staging errors
	StagingAppendError
	StagingScanError
	StagingCountError

	// Ingest errors
	IngestCatalogError
	IngestSourceUnknownError
	IngestFileError
	IngestFormatError

	// Cleaning errors
	CleanStepError

	// Embedding errors
	EmbedModelError
	EmbedBatchError
	EmbedDimensionError
	EmbedCacheError

	// Concept errors
	ConceptCatalogError
	ConceptDimensionError

	// Bulk writer errors
	BulkInsertError
	BulkUpsertError
	BulkUpdateError
	BulkProvenanceError

	// Pipeline errors
	PipelineStageError
	PipelineCancelledError
)
