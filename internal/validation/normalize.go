package validation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeOptions controls how answers are canonicalized before
// comparison.
type NormalizeOptions struct {
	// StripDiacritics removes combining marks, so "dziś" == "dzis".
	// Disabled for locales where diacritics are phonemic.
	StripDiacritics bool
}

// DefaultNormalizeOptions returns the production rule: lenient on
// diacritics, since most typos learners make are missing accent marks.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{StripDiacritics: true}
}

// stripMarks decomposes to NFD and drops combining marks.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes an answer: trim, lower-case, collapse
// internal whitespace, and optionally strip diacritics.
func Normalize(s string, opts NormalizeOptions) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	if opts.StripDiacritics {
		if out, _, err := transform.String(stripMarks, s); err == nil {
			s = out
		}
	}
	return s
}

// Equivalent reports whether two answers are equal after
// normalization.
func Equivalent(a, b string, opts NormalizeOptions) bool {
	return Normalize(a, opts) == Normalize(b, opts)
}
