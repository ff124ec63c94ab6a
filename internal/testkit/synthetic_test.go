package testkit

import (
	"math"
	"testing"

	"transitvet/domain/tce"
)

// TestGenerator_Deterministic verifies the same seed reproduces the same
// series
func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(42).FlatSeries(100, 0, 0.02)
	NewGenerator(42).AddNoise(a, 0.01)
	b := NewGenerator(42).FlatSeries(100, 0, 0.02)
	NewGenerator(42).AddNoise(b, 0.01)

	for i := range a.Flux {
		if a.Flux[i] != b.Flux[i] {
			t.Fatalf("Seeded runs diverge at index %d: %g vs %g", i, a.Flux[i], b.Flux[i])
		}
	}
}

// TestGenerator_FlatSeries verifies the sampling grid
func TestGenerator_FlatSeries(t *testing.T) {
	s := NewGenerator(1).FlatSeries(5, 10.0, 0.5)
	wantTime := []float64{10, 10.5, 11, 11.5, 12}
	for i := range wantTime {
		if s.Time[i] != wantTime[i] {
			t.Errorf("Time %d: expected %g, got %g", i, wantTime[i], s.Time[i])
		}
		if s.Flux[i] != 1.0 {
			t.Errorf("Flux %d: expected unit flux, got %g", i, s.Flux[i])
		}
	}
}

// TestGenerator_InjectTransits verifies depth lands only inside the windows
func TestGenerator_InjectTransits(t *testing.T) {
	gen := NewGenerator(1)
	s := gen.FlatSeries(100, 0, 0.1) // 0 .. 9.9
	eph := tce.Tce{PeriodDays: 5, EpochDays: 2, DurationDays: 1, Depth: 0.01}
	gen.InjectTransits(s, eph)

	for i, tt := range s.Time {
		inWindow := math.Abs(tt-2) < 0.5 || math.Abs(tt-7) < 0.5
		if inWindow && s.Flux[i] != 1.0-eph.Depth {
			t.Errorf("t=%g: expected dip, got %g", tt, s.Flux[i])
		}
		if !inWindow && s.Flux[i] != 1.0 {
			t.Errorf("t=%g: expected flat flux, got %g", tt, s.Flux[i])
		}
	}
}

// TestGenerator_SaltNaNs verifies the NaN stride
func TestGenerator_SaltNaNs(t *testing.T) {
	gen := NewGenerator(1)
	s := gen.FlatSeries(10, 0, 1)
	gen.SaltNaNs(s, 3)

	for i := range s.Flux {
		wantNaN := (i+1)%3 == 0
		if wantNaN != math.IsNaN(s.Flux[i]) {
			t.Errorf("Index %d: NaN placement wrong", i)
		}
	}
}

// TestGenerator_AddSinusoid verifies amplitude and zero crossings
func TestGenerator_AddSinusoid(t *testing.T) {
	gen := NewGenerator(1)
	s := gen.FlatSeries(5, 0, 1) // 0..4
	gen.AddSinusoid(s, 4.0, 0, 0.5)

	// sin phase at t=0..4 with period 4: 0, 1, 0, -1, 0
	want := []float64{1, 1.5, 1, 0.5, 1}
	for i := range want {
		if math.Abs(s.Flux[i]-want[i]) > 1e-12 {
			t.Errorf("t=%g: expected %g, got %g", s.Time[i], want[i], s.Flux[i])
		}
	}
}
