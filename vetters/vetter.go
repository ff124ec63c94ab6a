package vetters

import (
	"context"

	"transitvet/domain/lightcurve"
	"transitvet/domain/tce"
	"transitvet/domain/vet"
)

// Vetter is one diagnostic check of a transit candidate against a lightcurve.
// Run must be safe for repeated and concurrent calls: a vetter holds only
// configuration, never per-call state, and every call returns a fresh report.
type Vetter interface {
	// Name returns the short lowercase vetter name used in stored reports
	Name() string

	// Description returns a human-readable description
	Description() string

	// Run computes the diagnostic for one candidate
	Run(ctx context.Context, series *lightcurve.Series, candidate tce.Tce) (*vet.Report, error)
}
