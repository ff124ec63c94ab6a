package vetters

import (
	"context"
	"fmt"

	"transitvet/adapters/stats/cadence"
	"transitvet/adapters/stats/harmonic"
	"transitvet/adapters/stats/robust"
	"transitvet/domain/core"
	"transitvet/domain/lightcurve"
	"transitvet/domain/tce"
	"transitvet/domain/vet"
	"transitvet/internal/logging"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultThresholdSigma is the amplitude-to-uncertainty ratio above which a
// trial period is flagged
const DefaultThresholdSigma = 3.0

// SweetConfig tunes the SWEET check. Zero values mean defaults: a 3 sigma
// threshold, a one-duration transit mask, and no detrending.
type SweetConfig struct {
	ThresholdSigma float64
	NumDurations   float64 // transit mask width in durations
	DetrendWindow  int     // median detrend half window in cadences, 0 disables
}

// Sweet checks a candidate for sine waves at the transit period. An eclipsing
// binary or spotted star leaks a smooth sinusoid into the out-of-transit flux
// at the candidate period (or half or twice it, for secondary eclipses and
// period aliases); a genuine transit leaves the out-of-transit flux flat.
// The check masks in-transit cadences, phase-folds the rest at each trial
// period, fits the sine/cosine pair, and compares each fitted amplitude to
// its uncertainty.
type Sweet struct {
	cfg    SweetConfig
	logger *logging.Logger
}

// NewSweet creates a SWEET vetter with defaults applied
func NewSweet(cfg SweetConfig) *Sweet {
	if cfg.ThresholdSigma <= 0 {
		cfg.ThresholdSigma = DefaultThresholdSigma
	}
	return &Sweet{
		cfg:    cfg,
		logger: logging.Default.WithComponent("sweet"),
	}
}

// Name returns the vetter name
func (s *Sweet) Name() string { return "sweet" }

// Description returns a human-readable description
func (s *Sweet) Description() string {
	return "Detects sinusoidal out-of-transit variability at half, once, and twice the candidate period"
}

// Run computes the check and flattens the result into a storage envelope
func (s *Sweet) Run(ctx context.Context, series *lightcurve.Series, candidate tce.Tce) (*vet.Report, error) {
	rep, err := s.RunSweet(ctx, series, candidate)
	if err != nil {
		return nil, err
	}
	return rep.ToReport(s.Name()), nil
}

// RunSweet computes the check and returns the typed result
func (s *Sweet) RunSweet(ctx context.Context, series *lightcurve.Series, candidate tce.Tce) (*vet.SweetReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	if series == nil || series.Len() == 0 {
		return nil, core.ErrEmptySeries
	}

	clean := series.FiniteSubset()
	if clean.Len() == 0 {
		return nil, fmt.Errorf("%w: no finite cadences", core.ErrInsufficientData)
	}

	flux := clean.Flux
	if s.cfg.DetrendWindow > 0 {
		detrended, err := robust.MedianDetrend(flux, s.cfg.DetrendWindow)
		if err != nil {
			return nil, err
		}
		flux = detrended
	}

	inTransit, err := cadence.MarkTransits(clean.Time, candidate, cadence.MaskOptions{
		NumDurations: s.cfg.NumDurations,
	})
	if err != nil {
		return nil, err
	}

	ootTime := make([]float64, 0, clean.Len())
	ootFlux := make([]float64, 0, clean.Len())
	masked := 0
	for i, in := range inTransit {
		if in {
			masked++
			continue
		}
		ootTime = append(ootTime, clean.Time[i])
		ootFlux = append(ootFlux, flux[i])
	}
	if len(ootFlux) == 0 {
		return nil, fmt.Errorf("%w: every cadence is in transit", core.ErrInsufficientData)
	}

	// The sine/cosine pair has no constant term, so the flux is centered on
	// its out-of-transit median before fitting
	med, _ := stats.Median(ootFlux)
	for i := range ootFlux {
		ootFlux[i] -= med
	}

	scatter, err := robust.EstimateScatter(ootFlux)
	if err != nil {
		return nil, err
	}
	// A zero scatter would zero-divide the design matrix. Uniform weights
	// leave the fitted parameters unchanged, so fall back to unit sigma.
	sigma := scatter
	if sigma == 0 {
		s.logger.Debug("zero scatter estimate, fitting unweighted")
		sigma = 1
	}

	trials := []struct {
		trial  vet.Trial
		period float64
	}{
		{vet.TrialHalfPeriod, candidate.PeriodDays / 2},
		{vet.TrialPeriod, candidate.PeriodDays},
		{vet.TrialDoublePeriod, candidate.PeriodDays * 2},
	}

	// The trial fits are independent; run them concurrently
	type rowWithIndex struct {
		row   vet.SweetRow
		err   error
		index int
	}
	resultChan := make(chan rowWithIndex, len(trials))
	for i, tr := range trials {
		go func(idx int, trial vet.Trial, period float64) {
			row, err := s.fitTrial(ootTime, ootFlux, sigma, trial, period, candidate.EpochDays)
			resultChan <- rowWithIndex{row: row, err: err, index: idx}
		}(i, tr.trial, tr.period)
	}

	rows := make([]vet.SweetRow, len(trials))
	for range trials {
		res := <-resultChan
		if res.err != nil {
			return nil, fmt.Errorf("trial %s: %w", trials[res.index].trial, res.err)
		}
		rows[res.index] = res.row
	}

	report := &vet.SweetReport{
		Target:         candidate.Target,
		Rows:           rows,
		Messages:       s.constructMessages(rows),
		ThresholdSigma: s.cfg.ThresholdSigma,
		Scatter:        scatter,
		CadencesUsed:   len(ootFlux),
		CadencesMasked: masked,
		SeriesHash:     series.Hash(),
		ComputedAt:     core.Now(),
	}
	s.logger.Info("target=%s period=%.4f suspicious=%v", candidate.Target, candidate.PeriodDays, report.Suspicious())
	return report, nil
}

// fitTrial phase-folds the out-of-transit cadences at one trial period and
// fits the harmonic pair
func (s *Sweet) fitTrial(times, flux []float64, sigma float64, trial vet.Trial, periodDays, epochDays float64) (vet.SweetRow, error) {
	phase := lightcurve.FoldTimes(times, periodDays, epochDays)

	fit, err := harmonic.NewFit(phase, flux, harmonic.UniformSigma(len(flux), sigma), 2,
		harmonic.SineBasis{Period: periodDays})
	if err != nil {
		return vet.SweetRow{}, err
	}

	amp, ampUnc, err := fit.Amplitude()
	if err != nil {
		return vet.SweetRow{}, err
	}
	ph, phUnc, err := fit.Phase()
	if err != nil {
		return vet.SweetRow{}, err
	}

	snr := amp / ampUnc
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	return vet.SweetRow{
		Trial:        trial,
		PeriodDays:   periodDays,
		Amplitude:    amp,
		AmplitudeUnc: ampUnc,
		Phase:        ph,
		PhaseUnc:     phUnc,
		SNR:          snr,
		PValue:       2 * normal.Survival(snr),
	}, nil
}

// constructMessages turns the rows into WARN lines, or a single OK line when
// nothing crossed the threshold
func (s *Sweet) constructMessages(rows []vet.SweetRow) []string {
	labels := map[vet.Trial]string{
		vet.TrialHalfPeriod:   "half the candidate period",
		vet.TrialPeriod:       "the candidate period",
		vet.TrialDoublePeriod: "twice the candidate period",
	}

	var msgs []string
	for _, row := range rows {
		if row.SNR > s.cfg.ThresholdSigma {
			msgs = append(msgs, fmt.Sprintf(
				"WARN: SWEET finds a sinusoid at %s (amp/unc %.1f above %g sigma threshold)",
				labels[row.Trial], row.SNR, s.cfg.ThresholdSigma))
		}
	}
	if len(msgs) == 0 {
		msgs = append(msgs, fmt.Sprintf(
			"OK: SWEET finds no sinusoidal variability above %g sigma at half, once, or twice the candidate period",
			s.cfg.ThresholdSigma))
	}
	return msgs
}
