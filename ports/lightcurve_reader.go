package ports

import (
	"context"

	"transitvet/domain/lightcurve"
)

// LightcurveReader loads observation series from external sources
type LightcurveReader interface {
	// ReadSeries loads a lightcurve from the given path
	ReadSeries(ctx context.Context, path string) (*lightcurve.Series, error)
}
