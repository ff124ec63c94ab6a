package harmonic

import (
	"fmt"
	"math"

	"transitvet/domain/core"

	"gonum.org/v1/gonum/mat"
)

// Fit is a weighted least squares fit of basis terms to a series. The normal
// equations are solved eagerly at construction and the result is immutable:
// a Fit can be queried repeatedly and shared across goroutines.
//
// The normal equations square the condition number compared to a QR solve,
// which is accepted here; a genuinely singular or ill-conditioned system is
// reported as an error rather than silently producing garbage.
type Fit struct {
	x, y, sigma []float64
	order       int
	basis       Basis

	params   []float64
	covar    *mat.SymDense
	resid    []float64
	variance float64
}

// UniformSigma broadcasts one per-point uncertainty over n samples
func UniformSigma(n int, s float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// NewFit validates the inputs, solves the weighted normal equations, and
// returns the finished fit. A nil sigma means unit uncertainties. The input
// slices are copied; callers may reuse them afterwards.
func NewFit(x, y, sigma []float64, order int, basis Basis) (*Fit, error) {
	if basis == nil {
		return nil, fmt.Errorf("%w: nil basis", core.ErrUnsupportedBasis)
	}
	if err := basis.Validate(); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, core.ErrEmptySeries
	}
	if len(y) != len(x) {
		return nil, core.NewLengthMismatchError("y", len(x), len(y))
	}
	if order < 1 {
		return nil, fmt.Errorf("%w: order must be at least 1, got %d", core.ErrInvalidOrder, order)
	}
	if order >= len(x) {
		return nil, fmt.Errorf("%w: order %d needs more than %d samples", core.ErrInvalidOrder, order, len(x))
	}
	if !allFinite(x) {
		return nil, core.NewNonFiniteError("x")
	}
	if !allFinite(y) {
		return nil, core.NewNonFiniteError("y")
	}
	if sigma == nil {
		sigma = UniformSigma(len(x), 1)
	} else {
		if len(sigma) != len(x) {
			return nil, core.NewLengthMismatchError("sigma", len(x), len(sigma))
		}
		if !allFinite(sigma) {
			return nil, core.NewNonFiniteError("sigma")
		}
	}

	f := &Fit{
		x:     append([]float64(nil), x...),
		y:     append([]float64(nil), y...),
		sigma: append([]float64(nil), sigma...),
		order: order,
		basis: basis,
	}
	if err := f.solve(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Fit) solve() error {
	n := len(f.x)

	// Design matrix, one basis term per column, rows divided by sigma
	design := mat.NewDense(n, f.order, nil)
	for j := 0; j < f.order; j++ {
		for i := 0; i < n; i++ {
			v, err := f.basis.Term(f.x[i], j)
			if err != nil {
				return err
			}
			design.Set(i, j, v/f.sigma[i])
		}
	}

	// A = D^T D; the covariance is its inverse
	var a mat.Dense
	a.Mul(design.T(), design)
	var inv mat.Dense
	if err := inv.Inverse(&a); err != nil {
		return core.NewSingularMatrixError(err)
	}

	wy := make([]float64, n)
	for i := range wy {
		wy[i] = f.y[i] / f.sigma[i]
	}
	var beta mat.VecDense
	beta.MulVec(design.T(), mat.NewVecDense(n, wy))

	// A is symmetric, so A^-1 beta equals beta A^-1
	var p mat.VecDense
	p.MulVec(&inv, &beta)

	f.params = make([]float64, f.order)
	for j := 0; j < f.order; j++ {
		f.params[j] = p.AtVec(j)
	}

	f.covar = mat.NewSymDense(f.order, nil)
	for i := 0; i < f.order; i++ {
		for j := i; j < f.order; j++ {
			f.covar.SetSym(i, j, inv.At(i, j))
		}
	}

	model, err := f.modelAt(f.x)
	if err != nil {
		return err
	}
	f.resid = make([]float64, n)
	ssr := 0.0
	for i := range f.resid {
		f.resid[i] = f.y[i] - model[i]
		ssr += f.resid[i] * f.resid[i]
	}
	f.variance = ssr / float64(n-f.order)
	return nil
}

// Size returns the number of fitted samples
func (f *Fit) Size() int { return len(f.x) }

// Order returns the number of fitted parameters
func (f *Fit) Order() int { return f.order }

// Params returns a copy of the best fit parameters
func (f *Fit) Params() []float64 {
	return append([]float64(nil), f.params...)
}

// Covariance returns a copy of the parameter covariance matrix
func (f *Fit) Covariance() *mat.SymDense {
	out := mat.NewSymDense(f.order, nil)
	out.CopySym(f.covar)
	return out
}

// Residuals returns a copy of y minus the best fit model
func (f *Fit) Residuals() []float64 {
	return append([]float64(nil), f.resid...)
}

// Variance returns the residual variance, sum of squares over (N - order)
func (f *Fit) Variance() float64 { return f.variance }

// Model evaluates the best fit model at xs, or at the fitted abscissas when
// xs is nil
func (f *Fit) Model(xs []float64) ([]float64, error) {
	if xs == nil {
		xs = f.x
	}
	return f.modelAt(xs)
}

func (f *Fit) modelAt(xs []float64) ([]float64, error) {
	model := make([]float64, len(xs))
	for j := 0; j < f.order; j++ {
		for i, xv := range xs {
			v, err := f.basis.Term(xv, j)
			if err != nil {
				return nil, err
			}
			model[i] += f.params[j] * v
		}
	}
	return model, nil
}

// sinePair rejects amplitude and phase queries on anything but the
// sine/cosine pair
func (f *Fit) sinePair() error {
	if _, ok := f.basis.(SineBasis); !ok || f.order != 2 {
		return fmt.Errorf("%w: amplitude and phase need the sine basis at order 2, have %s at order %d",
			core.ErrUnsupportedBasis, f.basis.Name(), f.order)
	}
	return nil
}

// Amplitude returns the amplitude of the fitted sinusoid and its uncertainty.
// Only defined for the sine/cosine pair.
func (f *Fit) Amplitude() (amp, unc float64, err error) {
	if err := f.sinePair(); err != nil {
		return 0, 0, err
	}
	amp = math.Hypot(f.params[0], f.params[1])
	unc = math.Sqrt(2 * f.variance / float64(len(f.x)))
	return amp, unc, nil
}

// Phase returns the phase of the fitted sinusoid in radians and its
// uncertainty. The sine and cosine parameters each give an estimate of the
// angle; both are resolved onto [0, 2*pi] by quadrant and averaged. A zero
// amplitude has no phase and yields NaN.
func (f *Fit) Phase() (phase, unc float64, err error) {
	if err := f.sinePair(); err != nil {
		return 0, 0, err
	}
	amp, ampUnc, _ := f.Amplitude()

	// params[0] tracks cos(phase) and -params[1] tracks sin(phase)
	r1 := f.params[0] / amp
	r2 := -f.params[1] / amp

	invcos := math.Acos(math.Abs(r1))
	invsin := math.Asin(math.Abs(r2))

	switch {
	case r1 <= 0 && r2 >= 0: // second quadrant
		invcos = math.Pi - invcos
		invsin = math.Pi - invsin
	case r1 <= 0 && r2 <= 0: // third quadrant
		invcos += math.Pi
		invsin += math.Pi
	case r1 >= 0 && r2 <= 0: // fourth quadrant
		invcos = 2*math.Pi - invcos
		invsin = 2*math.Pi - invsin
	}

	phase = 0.5 * (invcos + invsin)
	return phase, ampUnc / amp, nil
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
