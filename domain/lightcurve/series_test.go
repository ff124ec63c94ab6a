package lightcurve

import (
	"math"
	"testing"

	"transitvet/domain/core"
)

// TestNewSeries_Validation verifies shape checks at construction
func TestNewSeries_Validation(t *testing.T) {
	if _, err := NewSeries(nil, nil, nil); !core.IsShapeError(err) {
		t.Errorf("Empty series: expected shape error, got: %v", err)
	}
	if _, err := NewSeries([]float64{1, 2}, []float64{1}, nil); !core.IsShapeError(err) {
		t.Errorf("Flux mismatch: expected shape error, got: %v", err)
	}
	if _, err := NewSeries([]float64{1, 2}, []float64{1, 2}, []float64{1}); !core.IsShapeError(err) {
		t.Errorf("Unc mismatch: expected shape error, got: %v", err)
	}

	s, err := NewSeries([]float64{1, 2}, []float64{5, 6}, nil)
	if err != nil {
		t.Fatalf("Valid series rejected: %v", err)
	}
	if s.Len() != 2 || s.HasUnc() {
		t.Errorf("Unexpected series shape: len=%d hasUnc=%v", s.Len(), s.HasUnc())
	}

	s, err = NewSeries([]float64{1, 2}, []float64{5, 6}, []float64{0.1, 0.1})
	if err != nil {
		t.Fatalf("Valid series with unc rejected: %v", err)
	}
	if !s.HasUnc() {
		t.Error("Expected HasUnc to be true")
	}
}

// TestSeries_FiniteSubset verifies rows with any non-finite value are dropped
func TestSeries_FiniteSubset(t *testing.T) {
	s := &Series{
		Time: []float64{0, 1, math.NaN(), 3, 4, 5},
		Flux: []float64{10, math.Inf(1), 12, 13, 14, 15},
		Unc:  []float64{1, 1, 1, math.NaN(), 1, 1},
	}
	clean := s.FiniteSubset()
	if clean.Len() != 3 {
		t.Fatalf("Expected 3 clean cadences, got %d", clean.Len())
	}
	wantTime := []float64{0, 4, 5}
	wantFlux := []float64{10, 14, 15}
	for i := range wantTime {
		if clean.Time[i] != wantTime[i] || clean.Flux[i] != wantFlux[i] {
			t.Errorf("Row %d: got (%g, %g), want (%g, %g)",
				i, clean.Time[i], clean.Flux[i], wantTime[i], wantFlux[i])
		}
	}
	// Source series untouched
	if s.Len() != 6 || !math.IsNaN(s.Time[2]) {
		t.Error("FiniteSubset mutated the source series")
	}
}

// TestFoldTimes_KnownPhases verifies folding against hand-computed phases
func TestFoldTimes_KnownPhases(t *testing.T) {
	times := []float64{2, 3, 1, 7, 9.5}
	want := []float64{0, 1, 4, 0, 2.5}

	got := FoldTimes(times, 5, 2)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Index %d: expected phase %g, got %g", i, want[i], got[i])
		}
	}
}

// TestFoldTimes_PhaseShiftInvisibleToHarmonics verifies that times far before
// the epoch fold to values that differ only by whole periods, which a
// single-frequency sinusoid cannot distinguish
func TestFoldTimes_PhaseShiftInvisibleToHarmonics(t *testing.T) {
	period := 5.0
	// t - epoch = -12.5 folds to -2.5, one whole period below the +2.5 that a
	// time half a period after the epoch folds to
	early := FoldTimes([]float64{-10.5}, period, 2)
	late := FoldTimes([]float64{4.5}, period, 2)
	if diff := math.Mod(early[0]-late[0], period); diff != 0 {
		t.Errorf("Expected phases congruent mod period, got %g and %g", early[0], late[0])
	}
}

// TestSeries_Select verifies mask selection
func TestSeries_Select(t *testing.T) {
	s := &Series{
		Time: []float64{0, 1, 2, 3},
		Flux: []float64{10, 11, 12, 13},
		Unc:  []float64{1, 2, 3, 4},
	}
	out, err := s.Select([]bool{true, false, false, true})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if out.Len() != 2 || out.Time[1] != 3 || out.Flux[0] != 10 || out.Unc[1] != 4 {
		t.Errorf("Unexpected selection: %+v", out)
	}

	if _, err := s.Select([]bool{true}); !core.IsShapeError(err) {
		t.Errorf("Mask mismatch: expected shape error, got: %v", err)
	}
}
