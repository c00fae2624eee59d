package domain

import "time"

// ComponentKind distinguishes long-period swell from locally generated wind waves.
type ComponentKind string

const (
	ComponentSwell    ComponentKind = "swell"
	ComponentWindWave ComponentKind = "wind_wave"
)

// SpectralPeak is one directional wave component extracted from a buoy
// spectral summary record. Peaks are constructed once per observation parse
// and never mutated afterwards.
type SpectralPeak struct {
	FrequencyHz       float64       `json:"frequency_hz"`
	PeriodSeconds     float64       `json:"period_seconds"`
	DirectionDegrees  float64       `json:"direction_degrees"` // normalized to [0, 360)
	EnergyDensity     float64       `json:"energy_density"`    // m²/Hz, derived from height
	HeightMeters      float64       `json:"height_meters"`
	DirectionalSpread float64       `json:"directional_spread"`
	Confidence        float64       `json:"confidence"` // 0–1
	Kind              ComponentKind `json:"kind"`
}

// SpectralAnalysisResult is one buoy observation's decomposition into ranked
// components. Peaks are ordered by descending energy density; Dominant, when
// present, is always Peaks[0].
type SpectralAnalysisResult struct {
	BuoyID      string         `json:"buoy_id"`
	Timestamp   time.Time      `json:"timestamp"`
	Peaks       []SpectralPeak `json:"peaks"`
	TotalEnergy float64        `json:"total_energy"`
	Dominant    *SpectralPeak  `json:"dominant,omitempty"`

	// Raw summary fields carried through for audit.
	RawTotalHeight *float64 `json:"raw_total_height,omitempty"`
	AveragePeriod  *float64 `json:"average_period,omitempty"`
	MeanDirection  *float64 `json:"mean_direction,omitempty"`
}
