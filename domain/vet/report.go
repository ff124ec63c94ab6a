package vet

import (
	"fmt"

	"transitvet/domain/core"
)

// Trial names the period multiple a diagnostic row was computed at
type Trial string

const (
	TrialHalfPeriod   Trial = "half_period"
	TrialPeriod       Trial = "period"
	TrialDoublePeriod Trial = "double_period"
)

// Trials lists the standard trial periods in report order
func Trials() []Trial {
	return []Trial{TrialHalfPeriod, TrialPeriod, TrialDoublePeriod}
}

// SweetRow is one sine-fit diagnostic: the best fit amplitude at a trial
// period, its uncertainty, the amplitude-to-uncertainty ratio, and the
// two-sided Gaussian p-value for that ratio.
type SweetRow struct {
	Trial        Trial   `json:"trial"`
	PeriodDays   float64 `json:"period_days"`
	Amplitude    float64 `json:"amplitude"`
	AmplitudeUnc float64 `json:"amplitude_unc"`
	Phase        float64 `json:"phase"` // radians in [0, 2*pi)
	PhaseUnc     float64 `json:"phase_unc"`
	SNR          float64 `json:"snr"`
	PValue       float64 `json:"p_value"`
}

// SweetReport is the immutable result of one SWEET run
type SweetReport struct {
	Target         core.TargetKey  `json:"target,omitempty"`
	Rows           []SweetRow      `json:"rows"`
	Messages       []string        `json:"messages"`
	ThresholdSigma float64         `json:"threshold_sigma"`
	Scatter        float64         `json:"scatter"`
	CadencesUsed   int             `json:"cadences_used"`
	CadencesMasked int             `json:"cadences_masked"`
	SeriesHash     core.SeriesHash `json:"series_hash"`
	ComputedAt     core.Timestamp  `json:"computed_at"`
}

// Suspicious reports whether any trial row crossed the threshold
func (r *SweetReport) Suspicious() bool {
	for _, row := range r.Rows {
		if row.SNR > r.ThresholdSigma {
			return true
		}
	}
	return false
}

// Row returns the row for a trial, or an error if absent
func (r *SweetReport) Row(trial Trial) (SweetRow, error) {
	for _, row := range r.Rows {
		if row.Trial == trial {
			return row, nil
		}
	}
	return SweetRow{}, fmt.Errorf("no row for trial %s", trial)
}

// Report is the storage envelope for a vetter run: flat metrics and messages
// plus enough provenance to trace the result back to its inputs.
type Report struct {
	ID         core.ReportID      `json:"id"`
	Target     core.TargetKey     `json:"target,omitempty"`
	Vetter     string             `json:"vetter"`
	Metrics    map[string]float64 `json:"metrics"`
	Messages   []string           `json:"messages"`
	SeriesHash core.SeriesHash    `json:"series_hash"`
	CreatedAt  core.Timestamp     `json:"created_at"`
}

// ToReport flattens the sweet result into a storage envelope
func (r *SweetReport) ToReport(vetter string) *Report {
	metrics := map[string]float64{
		"threshold_sigma": r.ThresholdSigma,
		"scatter":         r.Scatter,
		"cadences_used":   float64(r.CadencesUsed),
		"cadences_masked": float64(r.CadencesMasked),
	}
	for _, row := range r.Rows {
		metrics["period_days_"+string(row.Trial)] = row.PeriodDays
		metrics["amp_"+string(row.Trial)] = row.Amplitude
		metrics["amp_unc_"+string(row.Trial)] = row.AmplitudeUnc
		metrics["phase_"+string(row.Trial)] = row.Phase
		metrics["phase_unc_"+string(row.Trial)] = row.PhaseUnc
		metrics["snr_"+string(row.Trial)] = row.SNR
		metrics["p_value_"+string(row.Trial)] = row.PValue
	}
	return &Report{
		ID:         core.ReportID(core.NewID()),
		Target:     r.Target,
		Vetter:     vetter,
		Metrics:    metrics,
		Messages:   append([]string{}, r.Messages...),
		SeriesHash: r.SeriesHash,
		CreatedAt:  r.ComputedAt,
	}
}
