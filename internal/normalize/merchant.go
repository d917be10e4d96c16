package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UnknownMerchant is returned when normalization strips a description down
// to nothing.
const UnknownMerchant = "UNKNOWN"

var (
	// Card-number shapes: 4-digit groups repeated three or more times,
	// optionally space separated (e.g. "4111 1111 1111 1111").
	cardDigitGroups = regexp.MustCompile(`\b\d{4}( ?\d{4}){2,}\b`)

	// Bare long digit runs (account numbers, transaction ids).
	longDigitRun = regexp.MustCompile(`\b\d{6,}\b`)

	// Long alphanumeric tokens are almost always reference ids.
	referenceToken = regexp.MustCompile(`\b[A-Z0-9]{12,}\b`)

	noiseWords = regexp.MustCompile(`\b(VISA|MASTERCARD|MC|CARD|DEBIT|CREDIT|AUTH|TRX|TXN|REF)\b`)
)

// Merchant derives a stable merchant label from a raw transaction
// description. It is deliberately lossy: card digits, reference tokens and
// payment-network noise words are removed so "VISA 4111 1111 1111 1111
// ACME COFFEE" and "ACME COFFEE" collapse to the same label.
func Merchant(rawDescription string) string {
	s := norm.NFKC.String(rawDescription)
	s = strings.ToUpper(s)
	s = Whitespace(s)

	s = cardDigitGroups.ReplaceAllString(s, "")
	s = longDigitRun.ReplaceAllString(s, "")
	s = referenceToken.ReplaceAllString(s, "")
	s = noiseWords.ReplaceAllString(s, "")

	s = Whitespace(s)
	if s == "" {
		return UnknownMerchant
	}
	return s
}
