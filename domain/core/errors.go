package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrReportNotFound = fmt.Errorf("%w: report", ErrNotFound)

	// Shape errors
	ErrLengthMismatch = errors.New("array length mismatch")
	ErrEmptySeries    = errors.New("empty series")

	// Value errors
	ErrNonFinite        = errors.New("non-finite value")
	ErrInvalidOrder     = errors.New("invalid fit order")
	ErrUnsupportedBasis = errors.New("unsupported basis for operation")
	ErrBadEphemeris     = errors.New("invalid transit ephemeris")
	ErrBadPeriod        = errors.New("invalid period")
	ErrBadWindow        = errors.New("invalid filter window")
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Numerical errors
	ErrSingularMatrix = errors.New("singular normal matrix")

	// Range errors
	ErrTransitBounds = errors.New("error bounding transit time")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewLengthMismatchError(name string, want, got int) error {
	return fmt.Errorf("%w: %s has %d elements, want %d", ErrLengthMismatch, name, got, want)
}

func NewNonFiniteError(name string) error {
	return fmt.Errorf("%w in %s", ErrNonFinite, name)
}

func NewEphemerisError(field string, value float64) error {
	return fmt.Errorf("%w: %s = %g", ErrBadEphemeris, field, value)
}

func NewSingularMatrixError(err error) error {
	return fmt.Errorf("%w: %v", ErrSingularMatrix, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsShapeError(err error) bool {
	return errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrEmptySeries)
}

func IsValueError(err error) bool {
	return errors.Is(err, ErrNonFinite) ||
		errors.Is(err, ErrInvalidOrder) ||
		errors.Is(err, ErrUnsupportedBasis) ||
		errors.Is(err, ErrBadEphemeris) ||
		errors.Is(err, ErrBadPeriod) ||
		errors.Is(err, ErrBadWindow) ||
		errors.Is(err, ErrInsufficientData)
}

func IsNumericalError(err error) bool {
	return errors.Is(err, ErrSingularMatrix)
}

func IsRangeError(err error) bool {
	return errors.Is(err, ErrTransitBounds)
}
