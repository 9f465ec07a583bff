// Package record defines the lexical data types that flow through the
// ingestion pipeline: raw staged entries and canonical dictionary records.
package record

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/gnames/gnuuid"
)

// RawRecord is a staged source entry exactly as it arrived from a loader.
// Payload keeps the source's original field names; no interpretation
// happens until the cleaning pipeline runs.
type RawRecord struct {
	// ID is assigned by the database (BIGSERIAL); zero until stored.
	ID int64

	// SourceID identifies the registered data source this entry came from.
	SourceID string

	// Payload is the source entry as parsed from the file (stored as JSONB).
	Payload map[string]any

	// Checksum is the SHA-256 hex digest of the canonical JSON form of
	// Payload. It is UNIQUE in storage; re-ingesting the same entry is a
	// no-op.
	Checksum string

	// FilePath and LineNumber locate the entry in its source file.
	FilePath   string
	LineNumber int
}

// CanonicalRecord is a cleaned, embedded, concept-assigned dictionary
// entry ready for the records table.
type CanonicalRecord struct {
	// ID is a UUID v5 derived from headword, language and definition
	// after cleaning. The same cleaned content always yields the same ID.
	ID string

	Headword   string
	IPA        string
	Language   string
	Definition string
	Etymology  string
	POSTag     string

	// Embedding is an L2-normalized vector of the configured dimension.
	Embedding []float32

	// ConceptID names the nearest concept centroid, or Unassigned when
	// the catalog is empty.
	ConceptID string

	// Confidence is 1 minus the cosine distance to the assigned centroid.
	Confidence float64

	// DataQuality mirrors the concept-assignment confidence, in [0, 1].
	DataQuality float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransformStep is one provenance entry of the append-only transform log.
type TransformStep struct {
	StepName     string
	StepVersion  string
	Parameters   string
	ExecutedAt   time.Time
	DurationMS   int64
	Success      bool
	ErrorMessage string

	// RawID links the step to the staged entry it transformed.
	RawID int64

	// RunID groups all steps of one pipeline invocation.
	RunID string
}

// NewID returns the deterministic UUID v5 identifier for a canonical
// record. Inputs must already be cleaned; the ID is derived from
// "headword|language|definition".
func NewID(headword, language, definition string) string {
	return gnuuid.New(headword + "|" + language + "|" + definition).String()
}

// Checksum returns the SHA-256 hex digest of the canonical JSON encoding
// of a payload. encoding/json sorts map keys, so logically identical
// payloads produce identical digests regardless of field order.
func Checksum(payload map[string]any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
