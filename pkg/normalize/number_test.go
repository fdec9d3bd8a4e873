package normalize_test

import (
	"regexp"
	"testing"

	"github.com/carevox/dictascribe/pkg/normalize"
)

func TestTextToNumber_SpokenCompounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"seventy two", 72},
		{"seventy-two", 72},
		{"one twenty", 120},
		{"one oh five", 105},
		{"three hundred", 300},
		{"one hundred and five", 105},
		{"two thousand", 2000},
		{"ninety eight point six", 98.6},
		{"one oh one point four", 101.4},
		{"zero", 0},
	}
	for _, tt := range tests {
		got, ok := normalize.TextToNumber(tt.in)
		if !ok {
			t.Errorf("TextToNumber(%q): ok=false, want true", tt.in)
			continue
		}
		if got != tt.want {
			t.Errorf("TextToNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTextToNumber_DigitLiterals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"72", 72},
		{"98.6", 98.6},
		{"120", 120},
		{"blood pressure 140", 140},
	}
	for _, tt := range tests {
		got, ok := normalize.TextToNumber(tt.in)
		if !ok || got != tt.want {
			t.Errorf("TextToNumber(%q) = %v, %v; want %v, true", tt.in, got, ok, tt.want)
		}
	}
}

func TestTextToNumber_StopsAfterNumberEnds(t *testing.T) {
	t.Parallel()

	// Only the leading number counts; trailing narration is ignored.
	got, ok := normalize.TextToNumber("ninety five and patient is resting")
	if !ok {
		t.Fatalf("TextToNumber: ok=false, want true")
	}
	if got != 95 {
		t.Errorf("TextToNumber = %v, want 95", got)
	}
}

func TestTextToNumber_NoNumber(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "patient resting comfortably", "hundred"} {
		if got, ok := normalize.TextToNumber(in); ok {
			t.Errorf("TextToNumber(%q) = %v, true; want ok=false", in, got)
		}
	}
}

func TestNumberPattern_MatchesSpokenAndDigitForms(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`^` + normalize.NumberPattern() + `$`)

	for _, in := range []string{"72", "98.6", "ninety eight point six", "one twenty", "three hundred"} {
		if !re.MatchString(in) {
			t.Errorf("NumberPattern does not match %q", in)
		}
	}
	for _, in := range []string{"resting", "over"} {
		if re.MatchString(in) {
			t.Errorf("NumberPattern unexpectedly matches %q", in)
		}
	}
}
