// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches whitespace, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches anything that is not a letter, digit, or dash.
	nonAlphanumericRe = regexp.MustCompile(`[^\p{L}\p{N}-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// NormalizeTagSlug converts a tag name to the slug used as its identity.
// Two names with the same slug are the same tag.
//
// Normalization rules:
//  1. NFKC fold (full-width "ＧＯ" becomes "GO"), trim, lowercase
//  2. Replace whitespace, underscores and slashes with dashes
//  3. Remove everything that is not a letter, digit or dash
//  4. Collapse multiple dashes
//  5. Trim leading/trailing dashes
//
// Examples:
//
//	"Go"              → "go"
//	" GO "            → "go"
//	"Machine Learning" → "machine-learning"
//	"C++ / Rust"      → "c-rust"
//	"機械学習"          → "機械学習"
//	"!!!"             → ""
func NormalizeTagSlug(input string) string {
	s := strings.ToLower(strings.TrimSpace(norm.NFKC.String(input)))
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonAlphanumericRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
