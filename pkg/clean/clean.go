// Package clean provides composable text cleaning transformations for
// lexical data. Each cleaner is single-purpose and side-effect free;
// pipelines compose cleaners and track provenance.
package clean

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Cleaner transforms one text value. Implementations must be pure:
// the same input always yields the same output.
type Cleaner interface {
	// Name identifies the cleaner in signatures and provenance.
	Name() string

	// Version changes whenever the transformation's behavior changes.
	Version() string

	// Clean returns the transformed value.
	Clean(string) string

	// Validate reports whether a value is acceptable after cleaning.
	Validate(string) bool
}

var (
	reSpaces       = regexp.MustCompile(`\s+`)
	reIPABrackets  = regexp.MustCompile(`[\[\]/]`)
	reMarkers      = regexp.MustCompile(`[*†‡§¶]`)
	reParenthetic  = regexp.MustCompile(`\([^)]*\)`)
	reCitations    = regexp.MustCompile(`\[\d+\]`)
	reHTMLTags     = regexp.MustCompile(`<[^>]+>`)
	rePunctuation  = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	reISOCode      = regexp.MustCompile(`^[a-z]{2,3}$`)
	reDigit        = regexp.MustCompile(`[0-9]`)
	reIPADiacritic = regexp.MustCompile("[ː̯̥̆̊]")
)

// collapseSpaces trims a string and folds whitespace runs to one space.
func collapseSpaces(s string) string {
	return reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
}

// IPA normalizes phonetic transcriptions: NFC composition, bracket and
// slash removal, whitespace folding.
type IPA struct{}

func (IPA) Name() string    { return "ipa_cleaner" }
func (IPA) Version() string { return "1.0.0" }

func (IPA) Clean(s string) string {
	res := norm.NFC.String(strings.TrimSpace(s))
	res = reIPABrackets.ReplaceAllString(res, "")
	return collapseSpaces(res)
}

// Validate applies shallow well-formedness checks: non-empty, balanced
// brackets, and no bare digits unless length diacritics are present.
func (IPA) Validate(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	if strings.Count(s, "[") != strings.Count(s, "]") {
		return false
	}
	if reDigit.MatchString(s) && !reIPADiacritic.MatchString(s) {
		return false
	}
	return true
}

// NormalizerOptions parameterize a Normalizer.
type NormalizerOptions struct {
	// Lowercase folds the text to lower case.
	Lowercase bool

	// RemovePunctuation strips everything except letters, digits,
	// underscore and whitespace.
	RemovePunctuation bool

	// CollapseWhitespace trims and folds whitespace runs.
	CollapseWhitespace bool

	// UnicodeForm is one of "NFC", "NFD", "NFKC", "NFKD"; anything else
	// skips Unicode normalization.
	UnicodeForm string
}

// Normalizer applies general text normalization.
type Normalizer struct {
	opts NormalizerOptions
}

// NewNormalizer creates a Normalizer with the given options.
func NewNormalizer(opts NormalizerOptions) Normalizer {
	return Normalizer{opts: opts}
}

// DefaultNormalizer lowercases, collapses whitespace and composes to NFC.
func DefaultNormalizer() Normalizer {
	return NewNormalizer(NormalizerOptions{
		Lowercase:          true,
		CollapseWhitespace: true,
		UnicodeForm:        "NFC",
	})
}

func (Normalizer) Name() string    { return "text_normalizer" }
func (Normalizer) Version() string { return "1.0.0" }

func (n Normalizer) Clean(s string) string {
	res := s

	switch n.opts.UnicodeForm {
	case "NFC":
		res = norm.NFC.String(res)
	case "NFD":
		res = norm.NFD.String(res)
	case "NFKC":
		res = norm.NFKC.String(res)
	case "NFKD":
		res = norm.NFKD.String(res)
	}

	if n.opts.Lowercase {
		res = strings.ToLower(res)
	}
	if n.opts.RemovePunctuation {
		res = rePunctuation.ReplaceAllString(res, "")
	}
	if n.opts.CollapseWhitespace {
		res = collapseSpaces(res)
	}

	return res
}

func (Normalizer) Validate(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Headword cleans dictionary headwords: dictionary markers and
// parenthetical alternate forms are removed, the rest is NFC-composed.
type Headword struct{}

func (Headword) Name() string    { return "headword_cleaner" }
func (Headword) Version() string { return "1.0.0" }

func (Headword) Clean(s string) string {
	res := reMarkers.ReplaceAllString(s, "")
	res = reParenthetic.ReplaceAllString(res, "")
	res = norm.NFC.String(res)
	return collapseSpaces(res)
}

func (Headword) Validate(s string) bool {
	return strings.TrimSpace(s) != ""
}

// DefinitionOptions parameterize a Definition cleaner.
type DefinitionOptions struct {
	// RemoveCitations strips citation markers like [1].
	RemoveCitations bool

	// MaxLength truncates at a word boundary and appends an ellipsis;
	// zero disables truncation.
	MaxLength int
}

// Definition cleans gloss text: citations, HTML tags, whitespace.
type Definition struct {
	opts DefinitionOptions
}

// NewDefinition creates a Definition cleaner with the given options.
func NewDefinition(opts DefinitionOptions) Definition {
	return Definition{opts: opts}
}

// DefaultDefinition removes citations and does not truncate.
func DefaultDefinition() Definition {
	return NewDefinition(DefinitionOptions{RemoveCitations: true})
}

const ellipsis = "..."

func (Definition) Name() string    { return "definition_cleaner" }
func (Definition) Version() string { return "1.1.0" }

func (d Definition) Clean(s string) string {
	res := s
	if d.opts.RemoveCitations {
		res = reCitations.ReplaceAllString(res, "")
	}
	res = reHTMLTags.ReplaceAllString(res, "")
	res = collapseSpaces(res)

	if d.opts.MaxLength > 0 {
		res = d.truncate(res)
	}

	return res
}

// truncate caps a definition at a word boundary. The cap must satisfy
// clean(clean(x)) == clean(x): a value that already carries the
// ellipsis and fits the truncated length passes through unchanged.
func (d Definition) truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= d.opts.MaxLength {
		return s
	}
	if strings.HasSuffix(s, ellipsis) &&
		len(runes) <= d.opts.MaxLength+len(ellipsis) {
		return s
	}
	cut := string(runes[:d.opts.MaxLength])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + ellipsis
}

func (Definition) Validate(s string) bool {
	return len(strings.TrimSpace(s)) >= 3
}

// languageNames maps full language names to ISO 639 codes.
var languageNames = map[string]string{
	"english":             "en",
	"german":              "de",
	"french":              "fr",
	"spanish":             "es",
	"italian":             "it",
	"portuguese":          "pt",
	"russian":             "ru",
	"polish":              "pl",
	"latin":               "la",
	"greek":               "grc",
	"ancient greek":       "grc",
	"sanskrit":            "sa",
	"hindi":               "hi",
	"persian":             "fa",
	"dutch":               "nl",
	"swedish":             "sv",
	"norwegian":           "no",
	"danish":              "da",
	"icelandic":           "is",
	"proto-indo-european": "pie",
}

// LanguageCode normalizes language identifiers to lowercase ISO 639
// codes, mapping common full names along the way.
type LanguageCode struct{}

func (LanguageCode) Name() string    { return "language_code_cleaner" }
func (LanguageCode) Version() string { return "1.0.0" }

func (LanguageCode) Clean(s string) string {
	code := strings.ToLower(strings.TrimSpace(s))
	if iso, ok := languageNames[code]; ok {
		return iso
	}
	return code
}

func (LanguageCode) Validate(s string) bool {
	return reISOCode.MatchString(strings.ToLower(s))
}
