// Package spectral parses NDBC spectral summary records into ranked wave
// components. The decomposer holds configuration but no other state; one
// instance is safe for concurrent use.
package spectral

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stonezone/surfcastai/internal/domain"
	"github.com/stonezone/surfcastai/internal/observability"
)

// missingSentinel marks absent numeric fields in NDBC files. Any value at or
// above it is treated as no measurement, never as a real reading.
const missingSentinel = 99.0

// spectralBandwidth is the fixed bandwidth assumption used to derive energy
// density from component height: E = h²/(16 × 0.03).
const spectralBandwidth = 0.03

const (
	swellSpread        = 30.0
	swellConfidence    = 0.85
	windWaveSpread     = 60.0
	windWaveConfidence = 0.75
)

// Config tunes peak extraction. Zero values are not meaningful; start from
// DefaultConfig.
type Config struct {
	SwellPeriodMin         float64 // seconds, component validity lower bound
	SwellPeriodMax         float64 // seconds, component validity upper bound
	MinSeparationPeriod    float64 // seconds between swell and wind-wave periods
	MinSeparationDirection float64 // degrees between swell and wind-wave directions
	MaxComponents          int
}

// DefaultConfig returns the operational defaults.
func DefaultConfig() Config {
	return Config{
		SwellPeriodMin:         8,
		SwellPeriodMax:         25,
		MinSeparationPeriod:    3,
		MinSeparationDirection: 30,
		MaxComponents:          5,
	}
}

// Decomposer extracts ranked spectral peaks from observation lines.
type Decomposer struct {
	cfg     Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Decomposer with the given configuration.
func New(cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Decomposer {
	return &Decomposer{cfg: cfg, logger: logger, metrics: metrics}
}

// Decompose parses one spectral summary line into an analysis result.
// Expected layout (15+ whitespace-separated fields):
//
//	YY MM DD hh mm WVHT SwH SwP WWH WWP SwD WWD STEEPNESS APD MWD
//
// Returns nil and an error on structural failure (too few fields, bad
// timestamp); a structurally valid line with no usable components yields a
// result with an empty peak list.
func (d *Decomposer) Decompose(buoyID, line string) (*domain.SpectralAnalysisResult, error) {
	fields := strings.Fields(line)
	if len(fields) < 15 {
		return nil, fmt.Errorf("decompose %s: %d fields, need at least 15", buoyID, len(fields))
	}

	timestamp, err := parseTimestamp(fields[:5])
	if err != nil {
		return nil, fmt.Errorf("decompose %s: %w", buoyID, err)
	}

	totalHeight := parseMeasurement(fields[5])
	swellHeight := parseMeasurement(fields[6])
	swellPeriod := parseMeasurement(fields[7])
	windWaveHeight := parseMeasurement(fields[8])
	windWavePeriod := parseMeasurement(fields[9])
	swellDir := parseCompass(fields[10])
	windWaveDir := parseCompass(fields[11])
	// fields[12] is the steepness code, unused.
	avgPeriod := parseMeasurement(fields[13])
	meanDir := parseDirectionDegrees(fields[14])

	var peaks []domain.SpectralPeak

	swellPeak := d.buildPeak(domain.ComponentSwell, swellHeight, swellPeriod, swellDir)
	if swellPeak != nil {
		peaks = append(peaks, *swellPeak)
	}

	windPeak := d.buildPeak(domain.ComponentWindWave, windWaveHeight, windWavePeriod, windWaveDir)
	if windPeak != nil && !d.suppressWindWave(swellPeak, windPeak) {
		peaks = append(peaks, *windPeak)
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].EnergyDensity > peaks[j].EnergyDensity
	})
	if len(peaks) > d.cfg.MaxComponents {
		peaks = peaks[:d.cfg.MaxComponents]
	}

	result := &domain.SpectralAnalysisResult{
		BuoyID:         buoyID,
		Timestamp:      timestamp,
		Peaks:          peaks,
		RawTotalHeight: totalHeight,
		AveragePeriod:  avgPeriod,
		MeanDirection:  meanDir,
	}
	for i := range peaks {
		result.TotalEnergy += peaks[i].EnergyDensity
	}
	if len(peaks) > 0 {
		result.Dominant = &result.Peaks[0]
	}

	return result, nil
}

// DecomposeAll parses many lines, skipping failures. Malformed lines are
// logged and dropped rather than failing the batch.
func (d *Decomposer) DecomposeAll(buoyID string, lines []string) []domain.SpectralAnalysisResult {
	results := make([]domain.SpectralAnalysisResult, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		result, err := d.Decompose(buoyID, trimmed)
		if err != nil {
			d.logger.Warn("skipping spectral line", "buoy", buoyID, "line", i, "error", err)
			d.metrics.SpectralParseFailures.Inc()
			continue
		}
		d.metrics.SpectralLinesParsed.Inc()
		results = append(results, *result)
	}
	return results
}

// buildPeak constructs a component peak when height, period, and direction
// all pass the validity rules. Returns nil otherwise.
func (d *Decomposer) buildPeak(kind domain.ComponentKind, height, period, direction *float64) *domain.SpectralPeak {
	if height == nil || *height <= 0 || period == nil || direction == nil {
		return nil
	}
	if *period < d.cfg.SwellPeriodMin || *period > d.cfg.SwellPeriodMax {
		return nil
	}

	spread, confidence := swellSpread, swellConfidence
	if kind == domain.ComponentWindWave {
		spread, confidence = windWaveSpread, windWaveConfidence
	}

	return &domain.SpectralPeak{
		FrequencyHz:       1 / *period,
		PeriodSeconds:     *period,
		DirectionDegrees:  domain.NormalizeDegrees(*direction),
		EnergyDensity:     (*height) * (*height) / (16 * spectralBandwidth),
		HeightMeters:      *height,
		DirectionalSpread: spread,
		Confidence:        confidence,
		Kind:              kind,
	}
}

// suppressWindWave reports whether a wind-wave peak is a near-duplicate of an
// existing swell peak. Suppression needs BOTH a small period gap and a small
// direction gap; either being large enough keeps both components.
func (d *Decomposer) suppressWindWave(swell, windWave *domain.SpectralPeak) bool {
	if swell == nil {
		return false
	}
	periodGap := swell.PeriodSeconds - windWave.PeriodSeconds
	if periodGap < 0 {
		periodGap = -periodGap
	}
	directionGap := domain.AngularDifference(swell.DirectionDegrees, windWave.DirectionDegrees)
	return periodGap < d.cfg.MinSeparationPeriod && directionGap < d.cfg.MinSeparationDirection
}

// parseTimestamp builds a UTC time from the five leading integer fields
// (year, month, day, hour, minute).
func parseTimestamp(fields []string) (time.Time, error) {
	parts := make([]int, 5)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp field %d %q: %w", i, f, err)
		}
		parts[i] = n
	}

	year := parts[0]
	if year < 100 {
		year += 2000
	}
	if parts[1] < 1 || parts[1] > 12 || parts[2] < 1 || parts[2] > 31 ||
		parts[3] < 0 || parts[3] > 23 || parts[4] < 0 || parts[4] > 59 {
		return time.Time{}, fmt.Errorf("timestamp out of range: %v", parts)
	}

	return time.Date(year, time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, time.UTC), nil
}

// parseMeasurement parses a numeric field, mapping unparsable values and the
// ≥99.0 missing-data sentinel to nil.
func parseMeasurement(field string) *float64 {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || v >= missingSentinel {
		return nil
	}
	return &v
}

// parseDirectionDegrees parses a numeric bearing field. Bearings legitimately
// exceed 99, so the missing sentinel here is the NDBC 999 value (or anything
// outside a plausible bearing).
func parseDirectionDegrees(field string) *float64 {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || v >= 999 || v < 0 {
		return nil
	}
	return &v
}

// parseCompass resolves a 16-point compass label to degrees, mapping the
// "MM" sentinel and unknown labels to nil.
func parseCompass(field string) *float64 {
	deg, ok := domain.CompassToDegrees(field)
	if !ok {
		return nil
	}
	return &deg
}
