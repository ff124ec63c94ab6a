package harmonic

import (
	"errors"
	"math"
	"testing"

	"transitvet/domain/core"
)

// TestSineBasis_Terms verifies the sine/cosine pair at known angles
func TestSineBasis_Terms(t *testing.T) {
	b := SineBasis{Period: 4.0} // w = pi/2, so x counts quarter turns

	cases := []struct {
		x     float64
		order int
		want  float64
	}{
		{0, 0, 0},  // sin(0)
		{0, 1, 1},  // cos(0)
		{1, 0, 1},  // sin(pi/2)
		{1, 1, 0},  // cos(pi/2)
		{2, 0, 0},  // sin(pi)
		{2, 1, -1}, // cos(pi)
	}
	for _, tc := range cases {
		got, err := b.Term(tc.x, tc.order)
		if err != nil {
			t.Fatalf("Term(%g, %d) failed: %v", tc.x, tc.order, err)
		}
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Term(%g, %d): expected %g, got %g", tc.x, tc.order, tc.want, got)
		}
	}
}

// TestSineBasis_RefusesHigherOrders verifies the basis is a pair, not an
// expandable harmonic series
func TestSineBasis_RefusesHigherOrders(t *testing.T) {
	b := SineBasis{Period: 1.0}
	for _, order := range []int{2, 3, -1, 10} {
		_, err := b.Term(0.5, order)
		if err == nil {
			t.Errorf("Order %d: expected error", order)
			continue
		}
		if !errors.Is(err, core.ErrInvalidOrder) {
			t.Errorf("Order %d: expected ErrInvalidOrder, got: %v", order, err)
		}
	}
}

// TestSineBasis_Validate verifies period validation
func TestSineBasis_Validate(t *testing.T) {
	for _, period := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		err := SineBasis{Period: period}.Validate()
		if err == nil {
			t.Errorf("Period %g: expected error", period)
			continue
		}
		if !errors.Is(err, core.ErrBadPeriod) {
			t.Errorf("Period %g: expected ErrBadPeriod, got: %v", period, err)
		}
	}
	if err := (SineBasis{Period: 2.5}).Validate(); err != nil {
		t.Errorf("Valid period rejected: %v", err)
	}
}

// TestPolynomialBasis_Terms verifies power terms
func TestPolynomialBasis_Terms(t *testing.T) {
	b := PolynomialBasis{}
	for order, want := range []float64{1, 2, 4, 8} {
		got, err := b.Term(2.0, order)
		if err != nil {
			t.Fatalf("Term(2, %d) failed: %v", order, err)
		}
		if got != want {
			t.Errorf("Term(2, %d): expected %g, got %g", order, want, got)
		}
	}

	if _, err := b.Term(2.0, -1); !errors.Is(err, core.ErrInvalidOrder) {
		t.Errorf("Negative order: expected ErrInvalidOrder, got: %v", err)
	}
}
