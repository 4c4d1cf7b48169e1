package geom_test

import (
	"errors"
	"math"
	"testing"

	"yoloprep/internal/geom"
)

func TestNormalizeCornersScenario(t *testing.T) {
	got, err := geom.Normalize([4]float64{50, 60, 150, 160}, 200, 200)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if want := "0.500000 0.550000 0.500000 0.500000"; got.Format() != want {
		t.Fatalf("unexpected format: got %q want %q", got.Format(), want)
	}
}

func TestNormalizeIsIdentityOnNormalizedValues(t *testing.T) {
	cases := [][4]float64{
		{0.5, 0.5, 0.2, 0.3},
		{0, 0, 1, 1},
		{0.123456, 0.999999, 0.000001, 0.5},
	}
	for _, tc := range cases {
		got, err := geom.Normalize(tc, 640, 480)
		if err != nil {
			t.Fatalf("Normalize(%v) returned error: %v", tc, err)
		}
		if got.Values() != tc {
			t.Fatalf("expected identity for %v, got %v", tc, got.Values())
		}
	}
}

func TestCornersRoundTrip(t *testing.T) {
	const tolerance = 1e-9
	cases := []struct {
		box           geom.Corners
		width, height int
	}{
		{geom.Corners{X1: 10, Y1: 20, X2: 110, Y2: 220}, 640, 480},
		{geom.Corners{X1: 1.5, Y1: 2.5, X2: 3.5, Y2: 4.5}, 5, 5},
		{geom.Corners{X1: 300, Y1: 100, X2: 1919, Y2: 1079}, 1920, 1080},
	}
	for _, tc := range cases {
		normalized, err := tc.box.Normalize(tc.width, tc.height)
		if err != nil {
			t.Fatalf("Normalize(%v) returned error: %v", tc.box, err)
		}
		back := normalized.Denormalize(tc.width, tc.height)
		pairs := [][2]float64{{back.X1, tc.box.X1}, {back.Y1, tc.box.Y1}, {back.X2, tc.box.X2}, {back.Y2, tc.box.Y2}}
		for _, p := range pairs {
			if math.Abs(p[0]-p[1]) > tolerance {
				t.Fatalf("round trip mismatch for %v: got %v", tc.box, back)
			}
		}
	}
}

func TestNormalizeClampsOutOfBoundsCorners(t *testing.T) {
	got, err := geom.Normalize([4]float64{-20, 10, 260, 90}, 200, 100)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if got.W != 1 {
		t.Fatalf("expected width clamped to 1, got %v", got.W)
	}
	if got.XC != 0.6 {
		t.Fatalf("unexpected center: got %v want 0.6", got.XC)
	}
}

func TestNormalizeRejectsInvalidDimensions(t *testing.T) {
	_, err := geom.Normalize([4]float64{10, 10, 20, 20}, 0, 100)
	if !errors.Is(err, geom.ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	if geom.Classify([4]float64{0.1, 0.2, 0.3, 0.4}) != geom.FormNormalized {
		t.Fatal("expected normalized form")
	}
	if geom.Classify([4]float64{0.1, 0.2, 3, 0.4}) != geom.FormCorners {
		t.Fatal("expected corners form")
	}
	// Indistinguishable from a normalized box.
	if geom.Classify([4]float64{0, 0, 1, 1}) != geom.FormNormalized {
		t.Fatal("expected tiny pixel box to classify as normalized")
	}
}
