package stats

import (
	"math"
	"testing"

	"voxreport/domain/core"
)

const tol = 1e-12

func TestSignificantSignal_MaskEliminatesBackgroundBias(t *testing.T) {
	// Three in-mask p-values with analytic -log10 of 1, 2, 3 surrounded by
	// a zero-valued background the mask excludes.
	data := []float64{0.1, 0.01, 0.001, 0, 0, 0, 0, 0}
	mask := []float64{1, 1, 1, 0, 0, 0, 0, 0.2}

	got, err := SignificantSignal(data, mask)
	if err != nil {
		t.Fatalf("SignificantSignal failed: %v", err)
	}
	if math.Abs(got.Mean-2) > tol {
		t.Errorf("Mean = %v, want 2", got.Mean)
	}
	if math.Abs(got.Median-2) > tol {
		t.Errorf("Median = %v, want 2", got.Median)
	}

	// Must equal the statistic over the background-stripped array directly.
	direct, err := SignificantSignal([]float64{0.1, 0.01, 0.001}, nil)
	if err != nil {
		t.Fatalf("SignificantSignal on stripped array failed: %v", err)
	}
	if got != direct {
		t.Errorf("masked stats %+v differ from background-stripped stats %+v", got, direct)
	}
}

func TestSignificantSignal_ZeroVoxelsFlooredToScaledMin(t *testing.T) {
	data := []float64{0, 0.1, 0.01}

	got, err := SignificantSignal(data, nil)
	if err != nil {
		t.Fatalf("SignificantSignal failed: %v", err)
	}

	floored := -math.Log10(0.01 * 0.99)
	wantMean := (floored + 1 + 2) / 3
	if math.Abs(got.Mean-wantMean) > tol {
		t.Errorf("Mean = %v, want %v", got.Mean, wantMean)
	}
	// Transformed values sort to [1, 2, floored~2.004]; median is 2.
	if math.Abs(got.Median-2) > tol {
		t.Errorf("Median = %v, want 2", got.Median)
	}
}

func TestSignificantSignal_NaNVoxelsExcluded(t *testing.T) {
	withNaN := []float64{0.1, 0.01, 0.001, math.NaN()}
	without := []float64{0.1, 0.01, 0.001}

	a, err := SignificantSignal(withNaN, nil)
	if err != nil {
		t.Fatalf("SignificantSignal failed: %v", err)
	}
	b, err := SignificantSignal(without, nil)
	if err != nil {
		t.Fatalf("SignificantSignal failed: %v", err)
	}
	if a != b {
		t.Errorf("NaN voxels changed the result: %+v vs %+v", a, b)
	}
}

func TestSignificantSignal_DegenerateInputs(t *testing.T) {
	cases := []struct {
		name string
		data []float64
		mask []float64
	}{
		{"empty", nil, nil},
		{"all zero", []float64{0, 0, 0}, nil},
		{"fully masked", []float64{0.1, 0.2}, []float64{0, 0}},
		{"only zeros in mask", []float64{0, 0, 0.5}, []float64{1, 1, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SignificantSignal(tc.data, tc.mask)
			if !core.IsDegenerateInput(err) {
				t.Errorf("expected ErrDegenerateInput, got %v", err)
			}
		})
	}
}

func TestSignificantSignal_MaskLengthMismatch(t *testing.T) {
	_, err := SignificantSignal([]float64{0.1, 0.2}, []float64{1})
	if err == nil {
		t.Fatal("expected error for mismatched mask length")
	}
	if core.IsDegenerateInput(err) {
		t.Errorf("grid mismatch must not be degenerate-input: %v", err)
	}
}
