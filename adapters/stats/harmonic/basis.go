package harmonic

import (
	"fmt"
	"math"

	"transitvet/domain/core"
)

// Basis supplies the columns of a least squares design matrix. Term evaluates
// the column for the given order at one abscissa; Validate rejects unusable
// configuration before any fitting starts.
type Basis interface {
	Name() string
	Term(x float64, order int) (float64, error)
	Validate() error
}

// SineBasis is the harmonic pair at one frequency: order 0 is sine and order 1
// is cosine, both at angular frequency 2*pi/Period. Higher orders are refused;
// multi-harmonic expansions are a different basis, not a larger order here.
type SineBasis struct {
	Period float64
}

// Name returns the basis name
func (b SineBasis) Name() string { return "sine" }

// Validate checks that the period is usable
func (b SineBasis) Validate() error {
	if math.IsNaN(b.Period) || math.IsInf(b.Period, 0) || b.Period <= 0 {
		return fmt.Errorf("%w: sine basis needs a positive finite period, got %g",
			core.ErrBadPeriod, b.Period)
	}
	return nil
}

// Term evaluates sin(wx) for order 0 and cos(wx) for order 1
func (b SineBasis) Term(x float64, order int) (float64, error) {
	w := 2 * math.Pi / b.Period
	switch order {
	case 0:
		return math.Sin(w * x), nil
	case 1:
		return math.Cos(w * x), nil
	}
	return 0, fmt.Errorf("%w: sine basis order must be zero or one, got %d",
		core.ErrInvalidOrder, order)
}

// PolynomialBasis supplies plain power terms: order k evaluates to x^k
type PolynomialBasis struct{}

// Name returns the basis name
func (PolynomialBasis) Name() string { return "polynomial" }

// Validate always passes; the basis has no configuration
func (PolynomialBasis) Validate() error { return nil }

// Term evaluates x^order
func (PolynomialBasis) Term(x float64, order int) (float64, error) {
	if order < 0 {
		return 0, fmt.Errorf("%w: polynomial order must be >= 0, got %d",
			core.ErrInvalidOrder, order)
	}
	return math.Pow(x, float64(order)), nil
}
