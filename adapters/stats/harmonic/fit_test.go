package harmonic

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"transitvet/domain/core"
)

// TestNewFit_RecoversSinusoid verifies amplitude, phase, and variance are
// recovered from a noisy sinusoid with known parameters
func TestNewFit_RecoversSinusoid(t *testing.T) {
	period := 2.0
	a, b := 0.8, 0.6 // amplitude hypot(a,b) = 1
	sigma := 0.05
	n := 500

	x, y := genSinusoid(n, period, a, b, sigma)
	fit, err := NewFit(x, y, UniformSigma(n, sigma), 2, SineBasis{Period: period})
	if err != nil {
		t.Fatalf("NewFit failed: %v", err)
	}

	amp, ampUnc, err := fit.Amplitude()
	if err != nil {
		t.Fatalf("Amplitude failed: %v", err)
	}
	if math.Abs(amp-1.0) > 5*ampUnc {
		t.Errorf("Amplitude %g not within 5 uncertainties (%g) of 1", amp, ampUnc)
	}

	phase, phaseUnc, err := fit.Phase()
	if err != nil {
		t.Fatalf("Phase failed: %v", err)
	}
	// a*sin + b*cos with a,b > 0 resolves to the fourth quadrant
	wantPhase := 2*math.Pi - math.Acos(a)
	if math.Abs(phase-wantPhase) > 5*phaseUnc {
		t.Errorf("Phase %g not within 5 uncertainties (%g) of %g", phase, phaseUnc, wantPhase)
	}

	// Residual variance should track the generating noise
	if math.Abs(fit.Variance()-sigma*sigma)/(sigma*sigma) > 0.25 {
		t.Errorf("Variance %g far from sigma^2 = %g", fit.Variance(), sigma*sigma)
	}

	params := fit.Params()
	if math.Abs(params[0]-a) > 5*ampUnc || math.Abs(params[1]-b) > 5*ampUnc {
		t.Errorf("Params [%g, %g] far from [%g, %g]", params[0], params[1], a, b)
	}

	t.Logf("amp=%.4f+/-%.4f phase=%.4f+/-%.4f var=%.6f",
		amp, ampUnc, phase, phaseUnc, fit.Variance())
}

// TestNewFit_UncertaintyShrinks verifies the amplitude uncertainty falls with
// lower noise and with more samples
func TestNewFit_UncertaintyShrinks(t *testing.T) {
	period := 2.0

	uncAt := func(n int, sigma float64) float64 {
		x, y := genSinusoid(n, period, 0.8, 0.6, sigma)
		fit, err := NewFit(x, y, UniformSigma(n, sigma), 2, SineBasis{Period: period})
		if err != nil {
			t.Fatalf("NewFit(n=%d, sigma=%g) failed: %v", n, sigma, err)
		}
		_, unc, err := fit.Amplitude()
		if err != nil {
			t.Fatalf("Amplitude failed: %v", err)
		}
		return unc
	}

	noisy := uncAt(400, 0.5)
	quiet := uncAt(400, 0.05)
	if quiet >= noisy {
		t.Errorf("Uncertainty should shrink with noise: %g vs %g", quiet, noisy)
	}

	few := uncAt(100, 0.2)
	many := uncAt(2000, 0.2)
	if many >= few {
		t.Errorf("Uncertainty should shrink with samples: %g vs %g", many, few)
	}
}

// TestFit_PhaseQuadrants verifies the phase convention in all four quadrants
// using noiseless fits
func TestFit_PhaseQuadrants(t *testing.T) {
	period := 3.0
	v := math.Acos(0.8) // equals asin(0.6): the two estimates agree exactly

	cases := []struct {
		name string
		a, b float64
		want float64
	}{
		{"first quadrant", 0.8, -0.6, v},
		{"second quadrant", -0.8, -0.6, math.Pi - v},
		{"third quadrant", -0.8, 0.6, math.Pi + v},
		{"fourth quadrant", 0.8, 0.6, 2*math.Pi - v},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, y := genSinusoid(64, period, tc.a, tc.b, 0)
			fit, err := NewFit(x, y, nil, 2, SineBasis{Period: period})
			if err != nil {
				t.Fatalf("NewFit failed: %v", err)
			}
			phase, _, err := fit.Phase()
			if err != nil {
				t.Fatalf("Phase failed: %v", err)
			}
			if math.Abs(phase-tc.want) > 1e-8 {
				t.Errorf("Expected phase %.10f, got %.10f", tc.want, phase)
			}
		})
	}
}

// TestNewFit_PerfectFit verifies a noiseless sinusoid is reproduced to
// numerical precision
func TestNewFit_PerfectFit(t *testing.T) {
	x, y := genSinusoid(100, 2.0, 0.8, 0.6, 0)
	fit, err := NewFit(x, y, nil, 2, SineBasis{Period: 2.0})
	if err != nil {
		t.Fatalf("NewFit failed: %v", err)
	}
	if fit.Variance() > 1e-20 {
		t.Errorf("Expected near-zero variance, got %g", fit.Variance())
	}
	amp, _, err := fit.Amplitude()
	if err != nil {
		t.Fatalf("Amplitude failed: %v", err)
	}
	if math.Abs(amp-1.0) > 1e-10 {
		t.Errorf("Expected amplitude 1, got %g", amp)
	}
}

// TestFit_ResidualIdentity verifies residuals are exactly y minus the model
func TestFit_ResidualIdentity(t *testing.T) {
	x, y := genSinusoid(200, 2.0, 0.3, -0.4, 0.1)
	fit, err := NewFit(x, y, nil, 2, SineBasis{Period: 2.0})
	if err != nil {
		t.Fatalf("NewFit failed: %v", err)
	}
	model, err := fit.Model(nil)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}
	resid := fit.Residuals()
	for i := range resid {
		if resid[i] != y[i]-model[i] {
			t.Fatalf("Residual identity broken at index %d: %g vs %g", i, resid[i], y[i]-model[i])
		}
	}
}

// TestFit_ModelAtNewAbscissas verifies model evaluation away from the fitted
// samples
func TestFit_ModelAtNewAbscissas(t *testing.T) {
	period := 2.0
	a, b := 0.8, 0.6
	x, y := genSinusoid(128, period, a, b, 0)
	fit, err := NewFit(x, y, nil, 2, SineBasis{Period: period})
	if err != nil {
		t.Fatalf("NewFit failed: %v", err)
	}

	xs := []float64{0.1, 0.77, 1.3}
	model, err := fit.Model(xs)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}
	w := 2 * math.Pi / period
	for i, xv := range xs {
		want := a*math.Sin(w*xv) + b*math.Cos(w*xv)
		if math.Abs(model[i]-want) > 1e-10 {
			t.Errorf("Model(%g): expected %g, got %g", xv, want, model[i])
		}
	}
}

// TestFit_WeightsDownweightBadPoints verifies a corrupted sample with a huge
// uncertainty barely moves a linear fit
func TestFit_WeightsDownweightBadPoints(t *testing.T) {
	n := 10
	x := make([]float64, n)
	y := make([]float64, n)
	sigma := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = 2.0 + 3.0*x[i]
		sigma[i] = 0.01
	}
	y[5] = 1000.0
	sigma[5] = 1e6

	fit, err := NewFit(x, y, sigma, 2, PolynomialBasis{})
	if err != nil {
		t.Fatalf("NewFit failed: %v", err)
	}
	params := fit.Params()
	if math.Abs(params[0]-2.0) > 1e-6 || math.Abs(params[1]-3.0) > 1e-6 {
		t.Errorf("Expected params [2, 3], got %v", params)
	}
}

// TestNewFit_ValidationMatrix verifies every construction guard
func TestNewFit_ValidationMatrix(t *testing.T) {
	goodX := []float64{0, 1, 2, 3}
	goodY := []float64{1, 2, 3, 4}
	sine := SineBasis{Period: 5.0}

	cases := []struct {
		name  string
		x     []float64
		y     []float64
		sigma []float64
		order int
		basis Basis
		check func(error) bool
	}{
		{"empty series", nil, nil, nil, 2, sine, core.IsShapeError},
		{"y length mismatch", goodX, []float64{1, 2}, nil, 2, sine, core.IsShapeError},
		{"sigma length mismatch", goodX, goodY, []float64{1}, 2, sine, core.IsShapeError},
		{"order too small", goodX, goodY, nil, 0, sine, core.IsValueError},
		{"order too large", goodX, goodY, nil, 4, sine, core.IsValueError},
		{"NaN in x", []float64{0, math.NaN(), 2, 3}, goodY, nil, 2, sine, core.IsValueError},
		{"Inf in y", goodX, []float64{1, math.Inf(1), 3, 4}, nil, 2, sine, core.IsValueError},
		{"NaN in sigma", goodX, goodY, []float64{1, 1, math.NaN(), 1}, 2, sine, core.IsValueError},
		{"nil basis", goodX, goodY, nil, 2, nil, core.IsValueError},
		{"bad period", goodX, goodY, nil, 2, SineBasis{Period: -1}, core.IsValueError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFit(tc.x, tc.y, tc.sigma, tc.order, tc.basis)
			if err == nil {
				t.Fatal("Expected construction to fail")
			}
			if !tc.check(err) {
				t.Errorf("Wrong error kind: %v", err)
			}
		})
	}
}

// TestNewFit_SingularSystem verifies degenerate designs surface as numerical
// errors instead of garbage parameters
func TestNewFit_SingularSystem(t *testing.T) {
	// Identical abscissas collapse the design matrix to rank one; at x=0 the
	// sine column even vanishes identically.
	_, err := NewFit([]float64{0, 0, 0, 0}, []float64{1, 2, 3, 4}, nil, 2, SineBasis{Period: 1})
	if err == nil {
		t.Fatal("Expected singular matrix error for identical abscissas")
	}
	if !core.IsNumericalError(err) {
		t.Errorf("Expected numerical error, got: %v", err)
	}

	_, err = NewFit([]float64{5, 5, 5, 5}, []float64{1, 2, 3, 4}, nil, 2, PolynomialBasis{})
	if err == nil {
		t.Fatal("Expected singular matrix error for constant polynomial design")
	}
	if !core.IsNumericalError(err) {
		t.Errorf("Expected numerical error, got: %v", err)
	}
}

// TestFit_AmplitudeNeedsSinePair verifies amplitude and phase refuse other
// bases and orders
func TestFit_AmplitudeNeedsSinePair(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, 5, 7, 9}

	poly, err := NewFit(x, y, nil, 2, PolynomialBasis{})
	if err != nil {
		t.Fatalf("NewFit failed: %v", err)
	}
	if _, _, err := poly.Amplitude(); !core.IsValueError(err) {
		t.Errorf("Amplitude on polynomial basis: expected value error, got: %v", err)
	}
	if _, _, err := poly.Phase(); !core.IsValueError(err) {
		t.Errorf("Phase on polynomial basis: expected value error, got: %v", err)
	}

	// Sine basis at order 1 is just a lone sine term, not the pair
	lone, err := NewFit(x, y, nil, 1, SineBasis{Period: 7})
	if err != nil {
		t.Fatalf("NewFit failed: %v", err)
	}
	if _, _, err := lone.Amplitude(); !core.IsValueError(err) {
		t.Errorf("Amplitude at order 1: expected value error, got: %v", err)
	}
}

// TestFit_AccessorsAreCopies verifies callers cannot reach into fit state
func TestFit_AccessorsAreCopies(t *testing.T) {
	x, y := genSinusoid(50, 2.0, 0.8, 0.6, 0.1)
	fit, err := NewFit(x, y, nil, 2, SineBasis{Period: 2.0})
	if err != nil {
		t.Fatalf("NewFit failed: %v", err)
	}

	params := fit.Params()
	params[0] = 999
	if fit.Params()[0] == 999 {
		t.Error("Params returned internal slice")
	}

	resid := fit.Residuals()
	resid[0] = 999
	if fit.Residuals()[0] == 999 {
		t.Error("Residuals returned internal slice")
	}

	cov := fit.Covariance()
	cov.SetSym(0, 0, 999)
	if fit.Covariance().At(0, 0) == 999 {
		t.Error("Covariance returned internal matrix")
	}

	// Inputs are copied at construction, so later mutation has no effect
	before := fit.Params()
	x[0] = 1e9
	y[0] = 1e9
	after := fit.Params()
	if before[0] != after[0] || before[1] != after[1] {
		t.Error("Fit state changed after input mutation")
	}
}

// Helper functions for test data generation

// genSinusoid samples a*sin(wx) + b*cos(wx) plus Gaussian noise over five
// periods
func genSinusoid(n int, period, a, b, noise float64) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	w := 2 * math.Pi / period
	floats.Span(x, 0, 5*period)
	for i := range x {
		y[i] = a*math.Sin(w*x[i]) + b*math.Cos(w*x[i])
		if noise > 0 {
			y[i] += randNorm() * noise
		}
	}
	return x, y
}

// Simple pseudo-random normal distribution (Box-Muller transform)
var randState = 12345.0

func randNorm() float64 {
	// Update state with linear congruential generator
	randState = math.Mod(randState*1103515245+12345, 2147483648)
	u1 := randState / 2147483648.0

	randState = math.Mod(randState*1103515245+12345, 2147483648)
	u2 := randState / 2147483648.0

	// Box-Muller transform
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
