package quality_test

import (
	"testing"

	"github.com/lexgraph/lexdb/pkg/quality"
	"github.com/lexgraph/lexdb/pkg/record"
	"github.com/stretchr/testify/assert"
)

func goodRecord() *record.CanonicalRecord {
	return &record.CanonicalRecord{
		Headword:   "hund",
		IPA:        "hʊnt",
		Language:   "de",
		Definition: "a domesticated canine",
		Etymology:  "from Proto-Germanic *hundaz",
		POSTag:     "noun",
	}
}

func TestDefaultGate(t *testing.T) {
	gate := quality.DefaultGate(5)

	tests := []struct {
		name   string
		mutate func(*record.CanonicalRecord)
		want   bool
	}{
		{"valid record passes", func(r *record.CanonicalRecord) {}, true},
		{"missing headword", func(r *record.CanonicalRecord) { r.Headword = "" }, false},
		{"whitespace headword", func(r *record.CanonicalRecord) { r.Headword = "   " }, false},
		{"missing definition", func(r *record.CanonicalRecord) { r.Definition = "" }, false},
		{"short definition", func(r *record.CanonicalRecord) { r.Definition = "dog" }, false},
		{"exactly min length", func(r *record.CanonicalRecord) { r.Definition = "hound" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := goodRecord()
			tt.mutate(r)
			got, reasons := gate.Evaluate(r)
			assert.Equal(t, tt.want, got)
			if !tt.want {
				assert.NotEmpty(t, reasons)
			}
		})
	}
}

func TestRules(t *testing.T) {
	tests := []struct {
		name   string
		rule   quality.Rule
		mutate func(*record.CanonicalRecord)
		want   bool
	}{
		{
			"max length rejects long headword",
			quality.MaxLength("headword", 4),
			func(r *record.CanonicalRecord) { r.Headword = "hunde" },
			false,
		},
		{
			"regex match on pos tag",
			quality.RegexMatch("pos_tag", `^[a-z]+$`, "must be lowercase letters"),
			func(r *record.CanonicalRecord) {},
			true,
		},
		{
			"ipa unbalanced brackets",
			quality.IPAWellFormed(),
			func(r *record.CanonicalRecord) { r.IPA = "[hʊnt" },
			false,
		},
		{
			"ipa bare digits",
			quality.IPAWellFormed(),
			func(r *record.CanonicalRecord) { r.IPA = "h2nt" },
			false,
		},
		{
			"known language code",
			quality.LanguageCodeKnown(),
			func(r *record.CanonicalRecord) {},
			true,
		},
		{
			"unknown language code",
			quality.LanguageCodeKnown(),
			func(r *record.CanonicalRecord) { r.Language = "xx" },
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := goodRecord()
			tt.mutate(r)
			got, reason := tt.rule.Check(r)
			assert.Equal(t, tt.want, got)
			if !tt.want {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestGate_Score(t *testing.T) {
	gate := quality.StandardGate()

	assert.InDelta(t, 1.0, gate.Score(goodRecord()), 1e-9)

	// One failing rule costs 0.15.
	r := goodRecord()
	r.IPA = "[hʊnt"
	assert.InDelta(t, 0.85, gate.Score(r), 1e-9)

	// The penalty bottoms out at 0.1 however many rules fail.
	empty := &record.CanonicalRecord{}
	assert.InDelta(t, 0.1, gate.Score(empty), 1e-9)
}

func TestStrictAndPermissiveGates(t *testing.T) {
	r := goodRecord()
	r.Etymology = ""

	ok, _ := quality.StrictGate().Evaluate(r)
	assert.False(t, ok)

	ok, _ = quality.PermissiveGate().Evaluate(r)
	assert.True(t, ok)
}
