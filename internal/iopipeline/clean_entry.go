package iopipeline

import (
	"github.com/lexgraph/lexdb/pkg/clean"
	"github.com/lexgraph/lexdb/pkg/record"
)

// entryPipelineSet holds the per-field cleaning pipelines plus a
// non-strict IPA pipeline: a malformed transcription drops the IPA, not
// the record.
type entryPipelineSet struct {
	clean.EntryPipelines
	lenientIPA clean.Pipeline
}

func newEntryPipelineSet() entryPipelineSet {
	s := entryPipelineSet{EntryPipelines: clean.ForEntries()}
	s.lenientIPA = s.IPA
	s.lenientIPA.Strict = false
	return s
}

// payloadString reads a string field from a raw payload; absent or
// non-string values yield "".
func payloadString(payload map[string]any, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// clean maps one raw entry to a canonical record. Returns ok=false when
// the entry fails strict cleaning or the admission gate; provenance
// steps are returned only for admitted records.
func (ec *entryCleaner) clean(
	raw record.RawRecord,
	runID string,
) (record.CanonicalRecord, []record.TransformStep, bool) {
	var rec record.CanonicalRecord
	var steps []record.TransformStep

	headword, s, err := ec.pipes.Headword.Apply(
		payloadString(raw.Payload, "headword"), ec.track)
	steps = append(steps, s...)
	if err != nil {
		ec.logReject(raw, "headword", err)
		return rec, nil, false
	}

	language, s, err := ec.pipes.Language.Apply(
		payloadString(raw.Payload, "language"), ec.track)
	steps = append(steps, s...)
	if err != nil {
		ec.logReject(raw, "language", err)
		return rec, nil, false
	}

	definition, s, err := ec.pipes.Definition.Apply(
		payloadString(raw.Payload, "definition"), ec.track)
	steps = append(steps, s...)
	if err != nil {
		ec.logReject(raw, "definition", err)
		return rec, nil, false
	}

	var ipa string
	if rawIPA := payloadString(raw.Payload, "ipa"); rawIPA != "" {
		ipa, s, _ = ec.pipes.lenientIPA.Apply(rawIPA, ec.track)
		steps = append(steps, s...)
	}

	rec = record.CanonicalRecord{
		ID:         record.NewID(headword, language, definition),
		Headword:   headword,
		IPA:        ipa,
		Language:   language,
		Definition: definition,
		Etymology:  payloadString(raw.Payload, "etymology"),
		POSTag:     payloadString(raw.Payload, "pos_tag"),
	}

	if ok, _ := ec.gate.Evaluate(&rec); !ok {
		return rec, nil, false
	}

	if !ec.track {
		return rec, nil, true
	}
	for i := range steps {
		steps[i].RawID = raw.ID
		steps[i].RunID = runID
	}
	return rec, steps, true
}

func (ec *entryCleaner) logReject(
	raw record.RawRecord,
	field string,
	err error,
) {
	ec.log.Debug("rejected raw entry",
		"raw_id", raw.ID, "source", raw.SourceID,
		"field", field, "error", err)
}
