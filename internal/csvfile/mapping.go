package csvfile

import (
	"strings"
	"unicode"

	"github.com/mintyhq/minty/internal/ledger"
)

// Overrides carries explicit column names supplied by the caller. An empty
// field means "auto-detect".
type Overrides struct {
	Date        string
	Amount      string
	Currency    string
	Description string
	ExternalID  string
}

func (o Overrides) any() bool {
	return o.Date != "" || o.Amount != "" || o.Currency != "" ||
		o.Description != "" || o.ExternalID != ""
}

// Mapping is the resolved position of each semantic field in a row.
// Date, Amount and Description are always valid; Currency and ExternalID
// are -1 when the file has no such column.
type Mapping struct {
	Date        int
	Amount      int
	Currency    int
	Description int
	ExternalID  int
}

// Ranked candidate headers per semantic field, matched against normalized
// header text. Order matters: earlier candidates win.
var (
	dateCandidates        = []string{"date", "posted at", "postedat", "booking date", "transaction date"}
	amountCandidates      = []string{"amount", "value", "transaction amount"}
	descriptionCandidates = []string{"description", "details", "memo", "merchant", "payee"}
	currencyCandidates    = []string{"currency", "ccy"}
	externalIDCandidates  = []string{"id", "transaction id", "external id", "reference"}
)

// ResolveMapping picks a column for each semantic field: the explicit
// override when given, otherwise the first candidate whose normalized form
// matches a header. Currency and external id are optional; date, amount and
// description are required and any unresolved one fails with a mapping
// error naming every missing field.
func ResolveMapping(headers []string, overrides Overrides) (Mapping, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	resolve := func(override string, candidates []string) int {
		if override != "" {
			if i, ok := index[normalizeHeader(override)]; ok {
				return i
			}
			return -1
		}
		for _, cand := range candidates {
			if i, ok := index[normalizeHeader(cand)]; ok {
				return i
			}
		}
		return -1
	}

	m := Mapping{
		Date:        resolve(overrides.Date, dateCandidates),
		Amount:      resolve(overrides.Amount, amountCandidates),
		Currency:    resolve(overrides.Currency, currencyCandidates),
		Description: resolve(overrides.Description, descriptionCandidates),
		ExternalID:  resolve(overrides.ExternalID, externalIDCandidates),
	}

	var missing []string
	if m.Date < 0 {
		missing = append(missing, "date")
	}
	if m.Amount < 0 {
		missing = append(missing, "amount")
	}
	if m.Description < 0 {
		missing = append(missing, "description")
	}

	if len(missing) > 0 {
		hint := "Provide mapping via date/amount/description column overrides if auto-detection fails."
		if overrides.any() {
			hint = "Provide the missing columns via date/amount/description column overrides."
		}
		return Mapping{}, ledger.E(ledger.KindMapping,
			"unable to map required CSV columns (%s). %s", strings.Join(missing, ", "), hint)
	}

	return m, nil
}

// normalizeHeader makes header comparison insensitive to case, punctuation
// and separator style: "Posted-At " and "posted at" compare equal.
func normalizeHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ' ' || r == '-' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
