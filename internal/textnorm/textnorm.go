// Package textnorm provides the accent- and case-insensitive text
// normalization shared by the date extractor, the intent resolver, and
// the renderer's deduplication.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and strips diacritics ("Février" -> "fevrier").
func Fold(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Canon folds s and collapses all whitespace runs to single spaces,
// trimming the ends. Two strings with equal Canon are considered the
// same sentence by the renderer.
func Canon(s string) string {
	return strings.Join(strings.Fields(Fold(s)), " ")
}
