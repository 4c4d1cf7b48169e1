package labels_test

import (
	"errors"
	"testing"

	"yoloprep/internal/labels"
)

func TestParseLine(t *testing.T) {
	line, err := labels.ParseLine("  3 0.5 0.25 0.1 0.2 ")
	if err != nil {
		t.Fatalf("ParseLine returned error: %v", err)
	}
	if line.Class != 3 || line.Values != [4]float64{0.5, 0.25, 0.1, 0.2} {
		t.Fatalf("unexpected line: %+v", line)
	}
	if got, want := line.String(), "3 0.500000 0.250000 0.100000 0.200000"; got != want {
		t.Fatalf("unexpected format: got %q want %q", got, want)
	}
}

func TestParseLineRejectsMalformed(t *testing.T) {
	cases := []string{
		"3 0.5 0.5 0.1",
		"3 0.5 0.5 0.1 0.2 0.3",
		"Zebra 0.5 0.5 0.1 0.2",
		"3 0.5 abc 0.1 0.2",
		"2.5 0.5 0.5 0.1 0.2",
		"1e20 0.5 0.5 0.1 0.1",
		"-99999999999 0.5 0.5 0.1 0.1",
		"",
	}
	for _, tc := range cases {
		if _, err := labels.ParseLine(tc); !errors.Is(err, labels.ErrMalformedLine) {
			t.Fatalf("ParseLine(%q): expected ErrMalformedLine, got %v", tc, err)
		}
	}
}

func TestParseClassAcceptsIntegralDecimals(t *testing.T) {
	id, err := labels.ParseClass("4.0")
	if err != nil || id != 4 {
		t.Fatalf("ParseClass: got %d %v want 4 nil", id, err)
	}
	if id, err := labels.ParseClass("-3"); err != nil || id != -3 {
		t.Fatalf("ParseClass(-3): got %d %v", id, err)
	}
	if _, err := labels.ParseClass("1e20"); !errors.Is(err, labels.ErrMalformedLine) {
		t.Fatalf("ParseClass(1e20): expected ErrMalformedLine, got %v", err)
	}
	if labels.IsNumericClass("Harbor") {
		t.Fatal("expected species name to be non-numeric")
	}
}

func TestClassesPresent(t *testing.T) {
	file := labels.File{Lines: []labels.Line{{Class: 5}, {Class: 1}, {Class: 5}, {Class: 0}}}
	got := file.ClassesPresent()
	want := []int{0, 1, 5}
	if len(got) != len(want) {
		t.Fatalf("unexpected classes: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected classes: got %v want %v", got, want)
		}
	}
}
