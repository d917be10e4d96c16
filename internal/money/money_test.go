package money

import "testing"

func TestParseMinorUnits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "plain decimal", input: "12.34", want: 1234},
		{name: "negative decimal", input: "-12.34", want: -1234},
		{name: "european grouping", input: "1.234,56", want: 123456},
		{name: "comma decimal", input: "1234,56", want: 123456},
		{name: "us grouping", input: "1,234.56", want: 123456},
		{name: "space grouping comma decimal", input: "1 234,56", want: 123456},
		{name: "integer major units", input: "1234", want: 123400},
		{name: "currency symbol stripped", input: "$12.34", want: 1234},
		{name: "euro suffix stripped", input: "12,34 EUR", want: 1234},
		{name: "single decimal digit treats dot as grouping", input: "1.2", want: 1200},
		{name: "three digits after dot treated as grouping", input: "1.234", want: 123400},
		{name: "three digits after comma treated as grouping", input: "1,234", want: 123400},
		{name: "zero", input: "0.00", want: 0},
		{name: "negative grouping", input: "-1,234.56", want: -123456},
		{name: "large amount", input: "1,234,567.89", want: 123456789},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMinorUnits(tt.input)
			if err != nil {
				t.Fatalf("ParseMinorUnits(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMinorUnits(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMinorUnits_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   "},
		{name: "no digits", input: "USD"},
		{name: "bare minus", input: "-"},
		{name: "separators only", input: ".,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMinorUnits(tt.input); err == nil {
				t.Errorf("ParseMinorUnits(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestParseMinorUnits_RoundsHalfAwayFromZero(t *testing.T) {
	// Three fractional digits survive separator handling only when both
	// separator kinds appear; rounding then applies.
	got, err := ParseMinorUnits("1,000.005")
	if err != nil {
		t.Fatalf("ParseMinorUnits error = %v", err)
	}
	if got != 100001 {
		t.Errorf("ParseMinorUnits(\"1,000.005\") = %d, want 100001", got)
	}

	got, err = ParseMinorUnits("-1,000.005")
	if err != nil {
		t.Fatalf("ParseMinorUnits error = %v", err)
	}
	if got != -100001 {
		t.Errorf("ParseMinorUnits(\"-1,000.005\") = %d, want -100001", got)
	}
}
