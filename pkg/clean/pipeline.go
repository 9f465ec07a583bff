package clean

import (
	"strings"
	"time"

	"github.com/lexgraph/lexdb/pkg/record"
)

// Pipeline applies a sequence of cleaners to one value. Pipelines are
// immutable; Add and Compose return new pipelines.
type Pipeline struct {
	cleaners []Cleaner

	// Strict makes Apply fail when a cleaner's Validate rejects its
	// own output.
	Strict bool
}

// NewPipeline creates a strict pipeline from the given cleaners.
func NewPipeline(cleaners ...Cleaner) Pipeline {
	return Pipeline{cleaners: cleaners, Strict: true}
}

// Add returns a new pipeline with an extra cleaner appended.
func (p Pipeline) Add(c Cleaner) Pipeline {
	cleaners := make([]Cleaner, len(p.cleaners), len(p.cleaners)+1)
	copy(cleaners, p.cleaners)
	return Pipeline{cleaners: append(cleaners, c), Strict: p.Strict}
}

// Compose concatenates two pipelines. The result is strict only when
// both inputs are strict.
func (p Pipeline) Compose(other Pipeline) Pipeline {
	cleaners := make([]Cleaner, 0, len(p.cleaners)+len(other.cleaners))
	cleaners = append(cleaners, p.cleaners...)
	cleaners = append(cleaners, other.cleaners...)
	return Pipeline{cleaners: cleaners, Strict: p.Strict && other.Strict}
}

// Signature identifies the pipeline configuration. Records processed by
// pipelines with equal signatures went through identical transformations.
func (p Pipeline) Signature() string {
	parts := make([]string, len(p.cleaners))
	for i, c := range p.cleaners {
		parts[i] = c.Name() + ":" + c.Version()
	}
	return strings.Join(parts, "_")
}

// Apply runs every cleaner in order. With trackProvenance a step is
// recorded per cleaner. In strict mode the first cleaner whose Validate
// rejects its output aborts the run with a StepError; the returned steps
// include the failed one.
func (p Pipeline) Apply(
	value string,
	trackProvenance bool,
) (string, []record.TransformStep, error) {
	res := value
	var steps []record.TransformStep
	if trackProvenance {
		steps = make([]record.TransformStep, 0, len(p.cleaners))
	}

	for _, c := range p.cleaners {
		start := time.Now()
		res = c.Clean(res)

		ok := true
		if p.Strict {
			ok = c.Validate(res)
		}

		if trackProvenance {
			step := record.TransformStep{
				StepName:    c.Name(),
				StepVersion: c.Version(),
				ExecutedAt:  start,
				DurationMS:  time.Since(start).Milliseconds(),
				Success:     ok,
			}
			if !ok {
				step.ErrorMessage = "validation failed"
			}
			steps = append(steps, step)
		}

		if !ok {
			return res, steps, StepError(c.Name(), res)
		}
	}

	return res, steps, nil
}

// ForHeadwords builds the standard headword pipeline.
func ForHeadwords() Pipeline {
	return NewPipeline(Headword{}, DefaultNormalizer())
}

// ForIPA builds the standard IPA pipeline.
func ForIPA() Pipeline {
	return NewPipeline(IPA{})
}

// ForDefinitions builds the standard definition pipeline. Definitions
// keep their case.
func ForDefinitions() Pipeline {
	return NewPipeline(
		DefaultDefinition(),
		NewNormalizer(NormalizerOptions{
			CollapseWhitespace: true,
			UnicodeForm:        "NFC",
		}),
	)
}

// ForLanguageCodes builds the standard language code pipeline.
func ForLanguageCodes() Pipeline {
	return NewPipeline(LanguageCode{})
}

// EntryPipelines holds one pipeline per cleaned field of a record.
type EntryPipelines struct {
	Headword   Pipeline
	IPA        Pipeline
	Definition Pipeline
	Language   Pipeline
}

// ForEntries builds the complete per-field pipeline set.
func ForEntries() EntryPipelines {
	return EntryPipelines{
		Headword:   ForHeadwords(),
		IPA:        ForIPA(),
		Definition: ForDefinitions(),
		Language:   ForLanguageCodes(),
	}
}
