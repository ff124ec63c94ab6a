package tce

import (
	"math"
	"testing"

	"transitvet/domain/core"
)

// TestNew_ValidEphemeris verifies a plausible TCE is accepted
func TestNew_ValidEphemeris(t *testing.T) {
	eph, err := New("kplr-10666592", 2.2047, 132.545, 0.18, 0.0014)
	if err != nil {
		t.Fatalf("Valid TCE rejected: %v", err)
	}
	if eph.PeriodDays != 2.2047 || eph.Target != "kplr-10666592" {
		t.Errorf("Fields not preserved: %+v", eph)
	}
}

// TestValidate_RejectsBadEphemerides verifies each invariant
func TestValidate_RejectsBadEphemerides(t *testing.T) {
	cases := []struct {
		name string
		eph  Tce
	}{
		{"zero period", Tce{PeriodDays: 0, EpochDays: 1, DurationDays: 0.1}},
		{"negative period", Tce{PeriodDays: -2, EpochDays: 1, DurationDays: 0.1}},
		{"NaN period", Tce{PeriodDays: math.NaN(), EpochDays: 1, DurationDays: 0.1}},
		{"Inf epoch", Tce{PeriodDays: 2, EpochDays: math.Inf(1), DurationDays: 0.1}},
		{"zero duration", Tce{PeriodDays: 2, EpochDays: 1, DurationDays: 0}},
		{"duration at period", Tce{PeriodDays: 2, EpochDays: 1, DurationDays: 2}},
		{"duration beyond period", Tce{PeriodDays: 2, EpochDays: 1, DurationDays: 3}},
		{"negative depth", Tce{PeriodDays: 2, EpochDays: 1, DurationDays: 0.1, Depth: -0.01}},
		{"NaN depth", Tce{PeriodDays: 2, EpochDays: 1, DurationDays: 0.1, Depth: math.NaN()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.eph.Validate()
			if err == nil {
				t.Fatal("Expected validation to fail")
			}
			if !core.IsValueError(err) {
				t.Errorf("Expected ephemeris error, got: %v", err)
			}
		})
	}
}
