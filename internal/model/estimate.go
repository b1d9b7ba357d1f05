package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// FallbackMarker prefixes the reasoning of an estimate that did not come
// from the language model.
const FallbackMarker = "⚠️"

// MaintenanceEstimate splits S&M and R&D spend into maintenance and growth.
// Both ratios are in [0,1].
type MaintenanceEstimate struct {
	MaintenanceSGA float64 `json:"maintenance_sga_percent" yaml:"maintenance_sga_percent"`
	MaintenanceRND float64 `json:"maintenance_rnd_percent" yaml:"maintenance_rnd_percent"`
	Reasoning      string  `json:"reasoning" yaml:"reasoning"`
	Fallback       bool    `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Validate checks that both ratios lie within [0,1].
func (e MaintenanceEstimate) Validate() error {
	if e.MaintenanceSGA < 0 || e.MaintenanceSGA > 1 {
		return eris.Errorf("model: maintenance_sga_percent %v out of range [0,1]", e.MaintenanceSGA)
	}
	if e.MaintenanceRND < 0 || e.MaintenanceRND > 1 {
		return eris.Errorf("model: maintenance_rnd_percent %v out of range [0,1]", e.MaintenanceRND)
	}
	return nil
}

// IsFallback reports whether the estimate is the conservative default
// rather than a model answer.
func (e MaintenanceEstimate) IsFallback() bool {
	return e.Fallback || strings.HasPrefix(e.Reasoning, FallbackMarker)
}

// FallbackEstimate is biased toward treating most spend as growth so an
// unavailable model never inflates earnings power.
func FallbackEstimate() MaintenanceEstimate {
	return MaintenanceEstimate{
		MaintenanceSGA: 0.20,
		MaintenanceRND: 0.20,
		Reasoning:      FallbackMarker + " AI Unavailable - Using Conservative Defaults (80% Growth / 20% Maintenance). Check API keys or connection.",
		Fallback:       true,
	}
}

// NormalizedEarnings is derived from a FinancialRecord and a
// MaintenanceEstimate.
type NormalizedEarnings struct {
	ReportedEBIT   float64 `json:"reported_ebit" yaml:"reported_ebit"`
	GrowthSGA      float64 `json:"growth_sga" yaml:"growth_sga"`
	GrowthRND      float64 `json:"growth_rnd" yaml:"growth_rnd"`
	NormalizedEBIT float64 `json:"normalized_ebit" yaml:"normalized_ebit"`
	NOPAT          float64 `json:"nopat" yaml:"nopat"`
}
