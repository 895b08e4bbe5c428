// Package normalize provides the canonical forms used for case-insensitive
// identity of contact emails and tag names.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Text trims surrounding whitespace and composes the string to NFC.
// It is applied to user-supplied names and emails before they are stored.
func Text(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Key returns the case-insensitive lookup key for s: trimmed, NFC-composed
// and Unicode case-folded. Two inputs that differ only in surrounding
// whitespace or letter case share a key.
//
// Examples:
//
//	" VIP "     → "vip"
//	"Straße"    → "strasse"
//	"JOHN@X.io" → "john@x.io"
func Key(s string) string {
	// Casers are stateful, so a fresh one is built per call.
	folded := cases.Fold().String(Text(s))
	return norm.NFC.String(folded)
}

// IsBlank reports whether s is empty or whitespace-only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
