// Package quality provides named validation rules and composable gates
// for canonical records. A gate decides whether a record enters the
// database; a score summarizes how many rules it satisfies.
package quality

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lexgraph/lexdb/pkg/record"
)

// Rule is a named predicate over a canonical record. Check returns
// whether the record passes and, when it does not, a human-readable
// reason.
type Rule struct {
	Name  string
	Check func(*record.CanonicalRecord) (bool, string)
}

// field returns the value of a named record field. Unknown field names
// yield an empty string, which required/min-length rules then reject.
func field(r *record.CanonicalRecord, name string) string {
	switch name {
	case "headword":
		return r.Headword
	case "ipa":
		return r.IPA
	case "language":
		return r.Language
	case "definition":
		return r.Definition
	case "etymology":
		return r.Etymology
	case "pos_tag":
		return r.POSTag
	default:
		return ""
	}
}

// Required builds a rule rejecting records whose named field is empty
// or whitespace.
func Required(fieldName string) Rule {
	return Rule{
		Name: "required-field",
		Check: func(r *record.CanonicalRecord) (bool, string) {
			if strings.TrimSpace(field(r, fieldName)) == "" {
				return false, fieldName + " is required"
			}
			return true, ""
		},
	}
}

// MinLength builds a rule enforcing a minimum field length in runes.
func MinLength(fieldName string, min int) Rule {
	return Rule{
		Name: "min-length",
		Check: func(r *record.CanonicalRecord) (bool, string) {
			if utf8.RuneCountInString(field(r, fieldName)) < min {
				return false, fmt.Sprintf(
					"%s must be at least %d characters", fieldName, min)
			}
			return true, ""
		},
	}
}

// MaxLength builds a rule enforcing a maximum field length in runes.
func MaxLength(fieldName string, max int) Rule {
	return Rule{
		Name: "max-length",
		Check: func(r *record.CanonicalRecord) (bool, string) {
			if utf8.RuneCountInString(field(r, fieldName)) > max {
				return false, fmt.Sprintf(
					"%s must be at most %d characters", fieldName, max)
			}
			return true, ""
		},
	}
}

// RegexMatch builds a rule requiring the named field to match a pattern.
// The description completes the sentence "<field> <description>".
func RegexMatch(fieldName, pattern, description string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Name: "regex-match",
		Check: func(r *record.CanonicalRecord) (bool, string) {
			if !re.MatchString(field(r, fieldName)) {
				return false, fieldName + " " + description
			}
			return true, ""
		},
	}
}

var (
	reDigit        = regexp.MustCompile(`[0-9]`)
	reIPADiacritic = regexp.MustCompile("[ː̯̥̆̊]")
)

// IPAWellFormed builds a rule applying shallow IPA sanity checks:
// non-empty, balanced brackets, no bare digits.
func IPAWellFormed() Rule {
	return Rule{
		Name: "ipa-well-formed",
		Check: func(r *record.CanonicalRecord) (bool, string) {
			ipa := r.IPA
			if strings.TrimSpace(ipa) == "" {
				return false, "IPA transcription is empty"
			}
			if reDigit.MatchString(ipa) && !reIPADiacritic.MatchString(ipa) {
				return false, "IPA contains suspicious numeric characters"
			}
			if strings.Count(ipa, "[") != strings.Count(ipa, "]") {
				return false, "IPA has unbalanced brackets"
			}
			return true, ""
		},
	}
}

// knownLanguageCodes holds the ISO 639 codes of the covered language
// families, plus proto-language codes.
var knownLanguageCodes = map[string]struct{}{
	// Germanic
	"en": {}, "de": {}, "nl": {}, "sv": {}, "no": {}, "da": {}, "is": {}, "fo": {},
	// Romance
	"fr": {}, "es": {}, "it": {}, "pt": {}, "ro": {}, "ca": {}, "la": {},
	// Slavic and Baltic
	"ru": {}, "pl": {}, "cs": {}, "sk": {}, "uk": {}, "bg": {}, "lt": {}, "lv": {},
	// Greek
	"grc": {}, "el": {},
	// Indo-Iranian
	"sa": {}, "hi": {}, "ur": {}, "fa": {}, "ku": {}, "ps": {},
	// Celtic
	"ga": {}, "cy": {}, "br": {}, "sga": {},
	// Albanian, Armenian
	"sq": {}, "hy": {},
	// Proto-languages
	"pie": {}, "ine": {},
}

// LanguageCodeKnown builds a rule accepting only known ISO 639 codes.
func LanguageCodeKnown() Rule {
	return Rule{
		Name: "language-code-known",
		Check: func(r *record.CanonicalRecord) (bool, string) {
			code := strings.ToLower(r.Language)
			if _, ok := knownLanguageCodes[code]; !ok {
				return false, "unknown language code: " + code
			}
			return true, ""
		},
	}
}

// Gate is an ordered set of rules applied to every record before it is
// written.
type Gate struct {
	rules []Rule
}

// NewGate creates a gate from the given rules.
func NewGate(rules ...Rule) Gate {
	return Gate{rules: rules}
}

// Evaluate runs all rules and collects the reasons of the failing ones.
func (g Gate) Evaluate(r *record.CanonicalRecord) (bool, []string) {
	var reasons []string
	for _, rule := range g.rules {
		if ok, reason := rule.Check(r); !ok {
			reasons = append(reasons, reason)
		}
	}
	return len(reasons) == 0, reasons
}

// Score computes a quality score in [0.1, 1.0]. A fully valid record
// scores 1.0; each failing rule costs 0.15 down to a floor of 0.1.
func (g Gate) Score(r *record.CanonicalRecord) float64 {
	_, reasons := g.Evaluate(r)
	if len(reasons) == 0 {
		return 1.0
	}
	penalty := 0.15 * float64(len(reasons))
	if penalty > 0.9 {
		penalty = 0.9
	}
	return 1.0 - penalty
}

// Len returns the number of rules in the gate.
func (g Gate) Len() int { return len(g.rules) }

// DefaultGate admits records with a headword and a definition of at
// least minDefLen runes. This is the pipeline's write gate.
func DefaultGate(minDefLen int) Gate {
	return NewGate(
		Required("headword"),
		Required("definition"),
		MinLength("definition", minDefLen),
	)
}

// StandardGate covers all core fields; used for scoring rather than
// admission.
func StandardGate() Gate {
	return NewGate(
		Required("headword"),
		Required("ipa"),
		Required("language"),
		Required("definition"),
		MinLength("headword", 1),
		MinLength("definition", 3),
		MaxLength("headword", 255),
		MaxLength("ipa", 255),
		IPAWellFormed(),
		LanguageCodeKnown(),
	)
}

// StrictGate additionally requires etymology and part of speech.
func StrictGate() Gate {
	return NewGate(
		Required("headword"),
		Required("ipa"),
		Required("language"),
		Required("definition"),
		Required("etymology"),
		Required("pos_tag"),
		MinLength("headword", 1),
		MinLength("definition", 10),
		MinLength("etymology", 5),
		MaxLength("headword", 255),
		MaxLength("ipa", 255),
		IPAWellFormed(),
		LanguageCodeKnown(),
	)
}

// PermissiveGate admits anything with a headword and language; used for
// low-quality sources.
func PermissiveGate() Gate {
	return NewGate(
		Required("headword"),
		Required("language"),
		MinLength("headword", 1),
	)
}
