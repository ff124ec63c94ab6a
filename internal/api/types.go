package api

import (
	"transitvet/domain/core"
	"transitvet/domain/tce"
	"transitvet/domain/vet"
)

// SweetRequest is the payload for POST /api/v1/sweet
type SweetRequest struct {
	Time    []float64     `json:"time"`
	Flux    []float64     `json:"flux"`
	Unc     []float64     `json:"unc,omitempty"`
	Tce     tce.Tce       `json:"tce"`
	Options *SweetOptions `json:"options,omitempty"`
}

// SweetBatchRequest is the payload for POST /api/v1/sweet/batch: one
// lightcurve, many candidate ephemerides
type SweetBatchRequest struct {
	Time    []float64     `json:"time"`
	Flux    []float64     `json:"flux"`
	Unc     []float64     `json:"unc,omitempty"`
	Tces    []tce.Tce     `json:"tces"`
	Options *SweetOptions `json:"options,omitempty"`
}

// SweetOptions overrides the server's vetting defaults per request.
// Zero-valued fields keep the defaults.
type SweetOptions struct {
	ThresholdSigma float64 `json:"threshold_sigma,omitempty"`
	NumDurations   float64 `json:"num_durations,omitempty"`
	DetrendWindow  int     `json:"detrend_window,omitempty"`
}

// SweetResponse pairs the typed result with its stored envelope ID
type SweetResponse struct {
	ReportID core.ReportID    `json:"report_id"`
	Report   *vet.SweetReport `json:"report"`
}

// BatchItem is one slot of a batch response, in input order. Either Report
// or Error is set.
type BatchItem struct {
	Index      int            `json:"index"`
	Target     core.TargetKey `json:"target,omitempty"`
	ReportID   core.ReportID  `json:"report_id,omitempty"`
	Report     *vet.Report    `json:"report,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMS float64        `json:"duration_ms"`
}

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
