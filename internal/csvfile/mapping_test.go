package csvfile

import (
	"strings"
	"testing"

	"github.com/mintyhq/minty/internal/ledger"
)

// ============================================================================
// ResolveMapping Tests
// ============================================================================

func TestResolveMapping_AutoDetectsAllFields(t *testing.T) {
	headers := []string{"Date", "Amount", "Currency", "Description", "Id"}

	m, err := ResolveMapping(headers, Overrides{})
	if err != nil {
		t.Fatalf("ResolveMapping() error = %v", err)
	}

	if m.Date != 0 || m.Amount != 1 || m.Currency != 2 || m.Description != 3 || m.ExternalID != 4 {
		t.Errorf("mapping = %+v, want columns 0..4 in header order", m)
	}
}

func TestResolveMapping_CandidateVariants(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		check   func(t *testing.T, m Mapping)
	}{
		{
			name:    "posted at for date",
			headers: []string{"Posted At", "Value", "Memo"},
			check: func(t *testing.T, m Mapping) {
				if m.Date != 0 {
					t.Errorf("Date = %d, want 0", m.Date)
				}
			},
		},
		{
			name:    "punctuated and dashed headers",
			headers: []string{"Booking-Date", "Transaction Amount", "Payee", "CCY"},
			check: func(t *testing.T, m Mapping) {
				if m.Date != 0 || m.Amount != 1 || m.Description != 2 || m.Currency != 3 {
					t.Errorf("mapping = %+v", m)
				}
			},
		},
		{
			name:    "optional fields absent",
			headers: []string{"Date", "Amount", "Description"},
			check: func(t *testing.T, m Mapping) {
				if m.Currency != -1 || m.ExternalID != -1 {
					t.Errorf("optional fields = (%d, %d), want -1", m.Currency, m.ExternalID)
				}
			},
		},
		{
			name:    "earlier candidate wins",
			headers: []string{"Merchant", "Description", "Date", "Amount"},
			check: func(t *testing.T, m Mapping) {
				// "description" outranks "merchant" in the candidate list.
				if m.Description != 1 {
					t.Errorf("Description = %d, want 1", m.Description)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ResolveMapping(tt.headers, Overrides{})
			if err != nil {
				t.Fatalf("ResolveMapping() error = %v", err)
			}
			tt.check(t, m)
		})
	}
}

func TestResolveMapping_Overrides(t *testing.T) {
	headers := []string{"When", "How Much", "What"}

	m, err := ResolveMapping(headers, Overrides{
		Date:        "When",
		Amount:      "How Much",
		Description: "What",
	})
	if err != nil {
		t.Fatalf("ResolveMapping() error = %v", err)
	}
	if m.Date != 0 || m.Amount != 1 || m.Description != 2 {
		t.Errorf("mapping = %+v, want overrides resolved by position", m)
	}
}

func TestResolveMapping_MissingDescription(t *testing.T) {
	headers := []string{"Date", "Amount", "Currency"}

	_, err := ResolveMapping(headers, Overrides{})
	if err == nil {
		t.Fatal("ResolveMapping() succeeded, want mapping error")
	}
	if kind := ledger.KindOf(err); kind != ledger.KindMapping {
		t.Errorf("error kind = %v, want mapping", kind)
	}
	if !strings.Contains(err.Error(), "(description)") {
		t.Errorf("error %q does not name description as the only missing field", err)
	}
}

func TestResolveMapping_NamesEveryMissingField(t *testing.T) {
	_, err := ResolveMapping([]string{"Foo", "Bar"}, Overrides{})
	if err == nil {
		t.Fatal("ResolveMapping() succeeded, want mapping error")
	}
	for _, field := range []string{"date", "amount", "description"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not name %q", err, field)
		}
	}
}

func TestResolveMapping_HintDependsOnOverrides(t *testing.T) {
	headers := []string{"Date", "Amount"}

	autoErr := func() string {
		_, err := ResolveMapping(headers, Overrides{})
		if err == nil {
			t.Fatal("auto-detect resolve succeeded, want error")
		}
		return err.Error()
	}()

	overrideErr := func() string {
		_, err := ResolveMapping(headers, Overrides{Date: "Date"})
		if err == nil {
			t.Fatal("override resolve succeeded, want error")
		}
		return err.Error()
	}()

	if autoErr == overrideErr {
		t.Errorf("hint text should differ between auto-detect and override failures: %q", autoErr)
	}
	if !strings.Contains(autoErr, "auto-detection") {
		t.Errorf("auto-detect hint = %q, want mention of auto-detection", autoErr)
	}
}

func TestResolveMapping_UnknownOverrideFails(t *testing.T) {
	headers := []string{"Date", "Amount", "Description"}

	_, err := ResolveMapping(headers, Overrides{Description: "No Such Column"})
	if err == nil {
		t.Fatal("ResolveMapping() succeeded with unknown override, want error")
	}
	if !strings.Contains(err.Error(), "description") {
		t.Errorf("error %q does not name the unresolved field", err)
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "  Posted At ", want: "posted at"},
		{input: "Posted-At", want: "posted at"},
		{input: "POSTED_AT", want: "postedat"},
		{input: "Transaction Date!", want: "transaction date"},
		{input: "ccy", want: "ccy"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeHeader(tt.input); got != tt.want {
				t.Errorf("normalizeHeader(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
