// Package normalize provides the text canonicalization primitives used by
// the ingestion pipeline: a lossless-ish normalization that stabilizes the
// dedup fingerprint, and a lossy merchant-label derivation.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Whitespace collapses every run of whitespace to a single space and trims.
func Whitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ForHash canonicalizes a raw description for fingerprinting: NFKC
// normalization, uppercase, collapsed whitespace. All other content is
// preserved so two descriptions differing only in incidental whitespace or
// case hash identically.
func ForHash(s string) string {
	return strings.ToUpper(Whitespace(norm.NFKC.String(s)))
}
