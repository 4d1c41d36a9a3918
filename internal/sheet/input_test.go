package sheet

import "testing"

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"":      0,
		"  ":    0,
		"26":    26,
		" 2.5 ": 2.5,
		"2,5":   2.5,
		"abc":   0,
		"-4":    0,
		"1e3":   1000,
		"NaN":   0,
	}
	for in, want := range cases {
		if got := ParseNumber(in); got != want {
			t.Fatalf("ParseNumber(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseRoundTruncates(t *testing.T) {
	if got := ParseRound("25.9"); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	if got := ParseRound("x"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(0); got != "" {
		t.Fatalf("expected empty for zero, got %q", got)
	}
	if got := FormatNumber(26.5); got != "26.5" {
		t.Fatalf("expected 26.5, got %q", got)
	}
}
