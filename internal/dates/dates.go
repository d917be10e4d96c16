// Package dates parses the date literals found in bank CSV exports into
// canonical YYYY-MM-DD strings.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mintyhq/minty/internal/ledger"
)

// Format selects how ambiguous A/B/YYYY literals are interpreted.
// It is a closed enum; unrecognized selector strings are rejected at the
// boundary by ParseFormat.
type Format int

const (
	// Auto applies a heuristic: a first segment greater than 12 is
	// unambiguously a day, everything else is read month-first.
	Auto Format = iota
	// YMD expects year-first literals only.
	YMD
	// DMY reads A/B/YYYY as day/month/year.
	DMY
	// MDY reads A/B/YYYY as month/day/year.
	MDY
)

func (f Format) String() string {
	switch f {
	case Auto:
		return "auto"
	case YMD:
		return "ymd"
	case DMY:
		return "dmy"
	case MDY:
		return "mdy"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat converts a selector string into a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "auto":
		return Auto, nil
	case "ymd":
		return YMD, nil
	case "dmy":
		return DMY, nil
	case "mdy":
		return MDY, nil
	default:
		return Auto, ledger.E(ledger.KindValidation, "unsupported date format: '%s'", s)
	}
}

var (
	isoDate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashYMD  = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)
	dottedDMY = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)
	slashAB   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// ParseToISO parses a raw date cell into canonical YYYY-MM-DD form.
//
// Recognized literal shapes, in order: YYYY-MM-DD, YYYY/MM/DD,
// DD.MM.YYYY (always day-first), and A/B/YYYY interpreted per format.
// Anything else, and any literal failing calendar range checks, fails
// with a parse error carrying the raw value.
func ParseToISO(raw string, format Format) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ledger.E(ledger.KindParse, "missing date value")
	}

	if isoDate.MatchString(s) {
		return validated(s, raw)
	}
	if slashYMD.MatchString(s) {
		return validated(s[:4]+"-"+s[5:7]+"-"+s[8:], raw)
	}

	if m := dottedDMY.FindStringSubmatch(s); m != nil {
		return canonical(m[3], m[2], m[1], raw)
	}

	if m := slashAB.FindStringSubmatch(s); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])

		var month, day int
		switch format {
		case MDY:
			month, day = a, b
		case DMY:
			day, month = a, b
		case Auto:
			if a > 12 && b <= 12 {
				day, month = a, b
			} else {
				month, day = a, b
			}
		default: // YMD admits no A/B/YYYY literal
			return "", ledger.E(ledger.KindParse, "unrecognized date format: '%s'", raw)
		}

		return canonical(m[3], fmt.Sprintf("%02d", month), fmt.Sprintf("%02d", day), raw)
	}

	return "", ledger.E(ledger.KindParse, "unrecognized date format: '%s'", raw)
}

func canonical(year, month, day, raw string) (string, error) {
	return validated(year+"-"+month+"-"+day, raw)
}

// validated round-trips the candidate through time.Parse so impossible
// dates like 2026-02-30 are rejected rather than silently normalized.
func validated(iso, raw string) (string, error) {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil || t.Format("2006-01-02") != iso {
		return "", ledger.E(ledger.KindParse, "unrecognized date format: '%s'", raw)
	}
	return iso, nil
}
