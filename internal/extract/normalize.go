package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackHeader is the identifier used for columns whose label and
// accessibility attribute are both blank.
const FallbackHeader = "col"

// nonAlnum matches every run of characters that cannot appear in a
// normalized identifier.
var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeHeader converts a raw column label into a stable identifier:
// lowercase alphanumerics joined by single underscores with no leading
// or trailing underscore. Diacritics are folded to their base letters
// first so accented labels normalize to ASCII identifiers.
//
// The function is idempotent: normalizing an already-normalized
// identifier returns it unchanged.
func NormalizeHeader(label string) string {
	folded, _, err := transform.String(foldDiacritics(), label)
	if err != nil {
		// Fall back to the raw label; the alphanumeric filter below
		// still produces a usable identifier.
		folded = label
	}

	s := strings.ToLower(strings.TrimSpace(folded))
	s = nonAlnum.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// HeaderOrFallback normalizes label, falling back to the accessibility
// label and then to FallbackHeader when the result is empty. This is the
// lookup order used for header cells: visible text, aria-label, generic
// placeholder.
func HeaderOrFallback(label, ariaLabel string) string {
	if h := NormalizeHeader(label); h != "" {
		return h
	}
	if h := NormalizeHeader(ariaLabel); h != "" {
		return h
	}
	return FallbackHeader
}

// foldDiacritics returns a transformer that strips combining marks:
// decompose, drop the marks, recompose. A fresh chain is built per call
// because transformers carry state and NormalizeHeader must stay safe
// for concurrent use.
func foldDiacritics() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
