package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Fingerprint computes the per-account dedup hash of a transaction: a
// SHA-256 hex digest over the normalized fields joined by '|' in fixed
// order. Including the account id scopes uniqueness per account, so
// identical rows in two accounts are independent.
func Fingerprint(postedAt string, amountMinor int64, currency, normalizedDesc, accountID string) string {
	payload := strings.Join([]string{
		postedAt,
		strconv.FormatInt(amountMinor, 10),
		currency,
		normalizedDesc,
		accountID,
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
