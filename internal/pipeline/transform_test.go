package pipeline_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonezone/surfcastai/internal/domain"
	"github.com/stonezone/surfcastai/internal/pipeline"
	"github.com/stonezone/surfcastai/internal/stormtext"
)

const analysisText = "Storm-force low near 45N 155E with winds to 50 knots, " +
	"central pressure 955 mb, a fetch of 600 nm, persisting for 72 hours"

func makeRawAnalysis(t *testing.T, id, text string, issuedAt time.Time) domain.RawAnalysis {
	t.Helper()
	data, err := json.Marshal(domain.AnalysisDocument{
		ID:       id,
		Text:     text,
		IssuedAt: issuedAt,
		Source:   "opc",
	})
	require.NoError(t, err)
	return domain.RawAnalysis{Key: []byte(id), Value: data}
}

func TestAnalysisTransformer_Transform(t *testing.T) {
	frozenNow := time.Date(2025, 10, 8, 18, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozenNow))
	t.Cleanup(func() { domain.SetClock(nil) })

	issuedAt := time.Date(2025, 10, 8, 12, 0, 0, 0, time.UTC)

	t.Run("happy path", func(t *testing.T) {
		metrics := newTestMetrics()
		tfm := pipeline.NewTransformer(stormtext.New(slog.Default()), slog.Default(), metrics)

		raw := makeRawAnalysis(t, "analysis-1", analysisText, issuedAt)
		batch, err := tfm.Transform(context.Background(), raw)
		require.NoError(t, err)

		assert.Equal(t, "analysis-1", batch.AnalysisID)
		assert.Equal(t, frozenNow, batch.ProcessedAt)
		require.Len(t, batch.Predictions, 1)

		pred := batch.Predictions[0]
		assert.Equal(t, "kuril_20251008_001", pred.StormID)
		assert.Equal(t, 20.0, pred.PeriodSeconds)
		assert.Equal(t, 1.0, pred.Confidence)
		assert.Greater(t, pred.DistanceNm, 2000.0)
		assert.Less(t, pred.DistanceNm, 3500.0)
		assert.Equal(t, issuedAt.Add(time.Duration(pred.TravelTimeHours*float64(time.Hour))), pred.ArrivalTime)

		type endpoints struct {
			Source domain.Geo
			Target domain.Geo
		}
		want := endpoints{
			Source: domain.Geo{Lat: 45, Lon: 155},
			Target: domain.Geo{Lat: 21.6, Lon: -158.1},
		}
		got := endpoints{Source: pred.Source, Target: pred.Target}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("prediction endpoints mismatch (-want +got):\n%s", diff)
		}

		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StormsExtracted))
		assert.Equal(t, 0.0, testutil.ToFloat64(metrics.StormSectionsSkipped))
	})

	t.Run("quiet analysis yields empty batch", func(t *testing.T) {
		metrics := newTestMetrics()
		tfm := pipeline.NewTransformer(stormtext.New(slog.Default()), slog.Default(), metrics)

		raw := makeRawAnalysis(t, "analysis-2", "Light and variable winds across the basin", issuedAt)
		batch, err := tfm.Transform(context.Background(), raw)
		require.NoError(t, err)

		assert.Equal(t, "analysis-2", batch.AnalysisID)
		assert.Empty(t, batch.Predictions)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StormSectionsSkipped))
	})

	t.Run("zero issue time falls back to the message timestamp", func(t *testing.T) {
		metrics := newTestMetrics()
		tfm := pipeline.NewTransformer(stormtext.New(slog.Default()), slog.Default(), metrics)

		raw := makeRawAnalysis(t, "analysis-3", analysisText, time.Time{})
		raw.Timestamp = time.Date(2025, 10, 9, 6, 0, 0, 0, time.UTC)

		batch, err := tfm.Transform(context.Background(), raw)
		require.NoError(t, err)
		require.Len(t, batch.Predictions, 1)
		assert.Equal(t, "kuril_20251009_001", batch.Predictions[0].StormID)
	})

	t.Run("malformed payloads error", func(t *testing.T) {
		metrics := newTestMetrics()
		tfm := pipeline.NewTransformer(stormtext.New(slog.Default()), slog.Default(), metrics)

		cases := []struct {
			name  string
			value []byte
		}{
			{name: "not json", value: []byte("not json")},
			{name: "missing id", value: []byte(`{"text":"gale near 45N 155E"}`)},
			{name: "missing text", value: []byte(`{"id":"analysis-4"}`)},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := tfm.Transform(context.Background(), domain.RawAnalysis{Value: tc.value})
				assert.Error(t, err)
			})
		}
	})
}
