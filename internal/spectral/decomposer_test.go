package spectral

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonezone/surfcastai/internal/domain"
	"github.com/stonezone/surfcastai/internal/observability"
)

func newTestDecomposer() *Decomposer {
	return New(DefaultConfig(), slog.Default(), observability.NewMetricsForTesting())
}

func TestDecompose(t *testing.T) {
	d := newTestDecomposer()

	t.Run("swell and wind wave", func(t *testing.T) {
		// 1.8 m 14.3 s NW swell plus a clearly separated 0.8 m 8.0 s NNE wind wave.
		line := "2025 10 08 12 40 2.1 1.8 14.3 0.8 8.0 NW NNE STEEP 9.1 325.0"

		result, err := d.Decompose("51201", line)
		require.NoError(t, err)

		assert.Equal(t, "51201", result.BuoyID)
		assert.Equal(t, time.Date(2025, 10, 8, 12, 40, 0, 0, time.UTC), result.Timestamp)
		require.Len(t, result.Peaks, 2)

		swell := result.Peaks[0]
		assert.Equal(t, domain.ComponentSwell, swell.Kind)
		assert.Equal(t, 14.3, swell.PeriodSeconds)
		assert.Equal(t, 315.0, swell.DirectionDegrees)
		assert.InDelta(t, 1.8*1.8/(16*0.03), swell.EnergyDensity, 1e-9)
		assert.Equal(t, 30.0, swell.DirectionalSpread)
		assert.Equal(t, 0.85, swell.Confidence)
		assert.InDelta(t, 1/14.3, swell.FrequencyHz, 1e-9)

		windWave := result.Peaks[1]
		assert.Equal(t, domain.ComponentWindWave, windWave.Kind)
		assert.Equal(t, 22.5, windWave.DirectionDegrees)
		assert.Equal(t, 60.0, windWave.DirectionalSpread)
		assert.Equal(t, 0.75, windWave.Confidence)

		require.NotNil(t, result.Dominant)
		assert.Equal(t, result.Peaks[0], *result.Dominant)
		assert.InDelta(t, swell.EnergyDensity+windWave.EnergyDensity, result.TotalEnergy, 1e-9)

		require.NotNil(t, result.RawTotalHeight)
		assert.Equal(t, 2.1, *result.RawTotalHeight)
		require.NotNil(t, result.AveragePeriod)
		assert.Equal(t, 9.1, *result.AveragePeriod)
		require.NotNil(t, result.MeanDirection)
		assert.Equal(t, 325.0, *result.MeanDirection)
	})

	t.Run("peaks ordered by descending energy", func(t *testing.T) {
		// Wind wave taller than the swell, so it must rank first.
		line := "2025 10 08 12 40 2.5 0.9 15.0 2.2 9.0 NW E STEEP 9.1 325.0"

		result, err := d.Decompose("51201", line)
		require.NoError(t, err)
		require.Len(t, result.Peaks, 2)

		assert.Equal(t, domain.ComponentWindWave, result.Peaks[0].Kind)
		assert.Greater(t, result.Peaks[0].EnergyDensity, result.Peaks[1].EnergyDensity)
		assert.Equal(t, domain.ComponentWindWave, result.Dominant.Kind)
	})

	t.Run("missing data sentinel", func(t *testing.T) {
		line := "2025 10 08 12 40 99.0 99.0 99.0 99.0 99.0 MM MM STEEP 99.0 999.0"

		result, err := d.Decompose("51201", line)
		require.NoError(t, err)

		assert.Empty(t, result.Peaks)
		assert.Nil(t, result.Dominant)
		assert.Zero(t, result.TotalEnergy)
		assert.Nil(t, result.RawTotalHeight)
		assert.Nil(t, result.AveragePeriod)
		assert.Nil(t, result.MeanDirection)
	})

	t.Run("swell period outside validity window", func(t *testing.T) {
		tooShort := "2025 10 08 12 40 1.0 0.9 6.0 99.0 99.0 NW MM STEEP 9.1 325.0"
		tooLong := "2025 10 08 12 40 1.0 0.9 26.0 99.0 99.0 NW MM STEEP 9.1 325.0"

		for _, line := range []string{tooShort, tooLong} {
			result, err := d.Decompose("51201", line)
			require.NoError(t, err)
			assert.Empty(t, result.Peaks)
		}
	})

	t.Run("missing direction blocks peak", func(t *testing.T) {
		line := "2025 10 08 12 40 1.5 1.2 12.0 99.0 99.0 MM MM STEEP 9.1 325.0"

		result, err := d.Decompose("51201", line)
		require.NoError(t, err)
		assert.Empty(t, result.Peaks)
	})

	t.Run("too few fields", func(t *testing.T) {
		_, err := d.Decompose("51201", "2025 10 08 12 40 2.1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "need at least 15")
	})

	t.Run("bad timestamp", func(t *testing.T) {
		_, err := d.Decompose("51201", "2025 13 08 12 40 2.1 1.8 14.3 0.8 8.0 NW NNE STEEP 9.1 325.0")
		require.Error(t, err)

		_, err = d.Decompose("51201", "YYYY 10 08 12 40 2.1 1.8 14.3 0.8 8.0 NW NNE STEEP 9.1 325.0")
		require.Error(t, err)
	})

	t.Run("two digit year", func(t *testing.T) {
		result, err := d.Decompose("51201", "25 10 08 12 40 2.1 1.8 14.3 99.0 99.0 NW MM STEEP 9.1 325.0")
		require.NoError(t, err)
		assert.Equal(t, 2025, result.Timestamp.Year())
	})
}

func TestWindWaveSuppression(t *testing.T) {
	d := newTestDecomposer()

	tests := []struct {
		name      string
		line      string
		wantPeaks int
	}{
		{
			// Period gap 1 s, direction gap 0: near-duplicate.
			name:      "similar period and direction suppressed",
			line:      "2025 10 08 12 40 2.0 1.5 10.0 0.9 9.0 NW NW STEEP 9.1 325.0",
			wantPeaks: 1,
		},
		{
			// Period gap 1 s but directions 90° apart: keep both.
			name:      "similar period, different direction kept",
			line:      "2025 10 08 12 40 2.0 1.5 10.0 0.9 9.0 NW NE STEEP 9.1 325.0",
			wantPeaks: 2,
		},
		{
			// Same direction but 6 s apart: keep both.
			name:      "different period, same direction kept",
			line:      "2025 10 08 12 40 2.0 1.5 16.0 0.9 10.0 NW NW STEEP 9.1 325.0",
			wantPeaks: 2,
		},
		{
			// Gap exactly at the 3 s threshold is not "less than": keep both.
			name:      "period gap at threshold kept",
			line:      "2025 10 08 12 40 2.0 1.5 12.0 0.9 9.0 NW NW STEEP 9.1 325.0",
			wantPeaks: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := d.Decompose("51201", tt.line)
			require.NoError(t, err)
			assert.Len(t, result.Peaks, tt.wantPeaks)
		})
	}
}

func TestDecomposeAll(t *testing.T) {
	d := newTestDecomposer()

	lines := []string{
		"#YY  MM DD hh mm WVHT  SwH  SwP  WWH  WWP SwD WWD  STEEPNESS  APD MWD",
		"2025 10 08 12 40 2.1 1.8 14.3 99.0 99.0 NW MM STEEP 9.1 325.0",
		"garbage line",
		"",
		"2025 10 08 13 40 2.0 1.6 13.8 99.0 99.0 NW MM STEEP 9.0 320.0",
	}

	results := d.DecomposeAll("51201", lines)

	require.Len(t, results, 2)
	assert.Equal(t, time.Date(2025, 10, 8, 12, 40, 0, 0, time.UTC), results[0].Timestamp)
	assert.Equal(t, time.Date(2025, 10, 8, 13, 40, 0, 0, time.UTC), results[1].Timestamp)
}
