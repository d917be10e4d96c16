// Package money parses locale-ambiguous amount strings into integer minor
// currency units.
package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mintyhq/minty/internal/ledger"
)

// ParseMinorUnits converts a raw amount cell into signed minor units
// (cents). It accepts both "1,234.56" and "1.234,56" style inputs, currency
// symbols, and spaces as grouping separators.
//
// Disambiguation rules:
//   - both '.' and ',' present: the later one is the decimal separator,
//     the other is a grouping separator and is dropped;
//   - only one of them present: exactly two trailing digits make it a
//     decimal separator, anything else makes every occurrence a grouping
//     separator;
//   - neither present: the string is an integer amount of major units.
//
// The two-trailing-digit rule assumes 2-decimal currencies; 0- and 3-decimal
// currencies can misparse under it and callers must not rely on it for those.
func ParseMinorUnits(raw string) (int64, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return 0, ledger.E(ledger.KindParse, "missing amount value")
	}

	// Keep digits, separators and the sign; drop currency symbols and spaces.
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, ledger.E(ledger.KindParse, "invalid amount: '%s'", raw)
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	normalized := cleaned
	switch {
	case lastDot != -1 && lastComma != -1:
		decimalSep, thousandsSep := ".", ","
		if lastComma > lastDot {
			decimalSep, thousandsSep = ",", "."
		}
		normalized = strings.ReplaceAll(normalized, thousandsSep, "")
		normalized = strings.Replace(normalized, decimalSep, ".", 1)
	case lastComma != -1:
		normalized = resolveSingleSeparator(normalized, ",")
	case lastDot != -1:
		normalized = resolveSingleSeparator(normalized, ".")
	}

	value, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, ledger.E(ledger.KindParse, "invalid amount: '%s'", raw)
	}

	// Round half away from zero at two decimals, then scale to minor units.
	return value.Round(2).Shift(2).IntPart(), nil
}

// resolveSingleSeparator handles a string containing only one separator
// kind: two trailing digits mean decimal, everything else means grouping.
func resolveSingleSeparator(s, sep string) string {
	parts := strings.Split(s, sep)
	fractional := parts[len(parts)-1]
	if len(fractional) == 2 {
		return strings.Join(parts[:len(parts)-1], "") + "." + fractional
	}
	return strings.ReplaceAll(s, sep, "")
}
