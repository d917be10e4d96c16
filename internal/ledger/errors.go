package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies ledger errors so callers can map them to exit codes or
// HTTP statuses without string matching.
type Kind int

const (
	// KindUnknown is the zero value; errors without a kind fall here.
	KindUnknown Kind = iota

	// KindNotFound covers missing accounts and other absent records.
	KindNotFound

	// KindIO covers unreadable or missing input files.
	KindIO

	// KindParse covers malformed CSV and unparseable date/amount values.
	KindParse

	// KindMapping covers unresolved required CSV columns.
	KindMapping

	// KindValidation covers rows that parse but violate a requirement,
	// such as a missing currency or description.
	KindValidation

	// KindStore covers unexpected persistence failures. The dedup no-op
	// on (account, hash) conflicts is not an error and never carries this.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindMapping:
		return "mapping"
	case KindValidation:
		return "validation"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error is the single error type crossing package boundaries in the ledger
// core. It wraps an optional cause and carries a Kind.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match on kind sentinels created with E.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// E builds a ledger error with the given kind and formatted message.
func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a ledger error that records cause for errors.Unwrap.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the kind from err, walking the wrap chain.
// Returns KindUnknown for nil or foreign errors.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}
