// Package validation scores past forecasts against observed buoy readings.
// A run loads a forecast's predictions, fetches actual observations per
// shore, matches prediction to nearest-in-time observation within a
// tolerance window, computes accuracy metrics, and persists one validation
// record per matched pair.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/stonezone/surfcastai/internal/domain"
	"github.com/stonezone/surfcastai/internal/observability"
)

// DirectionToleranceDegrees is the maximum angular error still counted as a
// direction hit.
const DirectionToleranceDegrees = 22.5

// Store is the persistence collaborator. GetForecast reports absence via the
// boolean rather than an error; infrastructure failures are errors.
type Store interface {
	GetForecast(ctx context.Context, forecastID string) (domain.Forecast, bool, error)
	ListPredictions(ctx context.Context, forecastID string) ([]domain.Prediction, error)
	SaveActual(ctx context.Context, actual domain.Actual) (int64, error)
	SaveValidation(ctx context.Context, record domain.ValidationRecord) (int64, error)
}

// ObservationFetcher is the external data-source collaborator providing
// observed buoy readings for one shore and time window.
type ObservationFetcher interface {
	FetchObservations(ctx context.Context, shore string, start, end time.Time) ([]domain.Actual, error)
}

// Config tunes a validator. Zero values mean defaults.
type Config struct {
	MinForecastAge time.Duration // reject younger forecasts; default 24h
	MatchWindow    time.Duration // max |prediction time − observation time|; default 2h
}

func (c Config) withDefaults() Config {
	if c.MinForecastAge == 0 {
		c.MinForecastAge = 24 * time.Hour
	}
	if c.MatchWindow == 0 {
		c.MatchWindow = 2 * time.Hour
	}
	return c
}

// Status is the terminal state of a validation run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Rejection reasons. These are expected conditions, distinct from
// infrastructure errors: the caller needs "nothing to validate yet" to be
// inspectable, not thrown.
const (
	ReasonForecastNotFound  = "forecast not found"
	ReasonForecastTooRecent = "forecast too recent"
	ReasonNoObservations    = "no observations available"
	ReasonNoMatches         = "no matches found"
)

// Metrics are the aggregate accuracy numbers of one run. MAE/RMSE are nil
// when no matched pair had both heights; DirectionAccuracy is nil when no
// pair had both a predicted compass label and an observed bearing.
type Metrics struct {
	MAE                 *float64 `json:"mae,omitempty"`
	RMSE                *float64 `json:"rmse,omitempty"`
	CategoricalAccuracy float64  `json:"categorical_accuracy"`
	DirectionAccuracy   *float64 `json:"direction_accuracy,omitempty"`
	SampleSize          int      `json:"sample_size"`
}

// Result describes how a validation run ended. Stage names the last stage
// reached, so a rejected result says exactly where the run stopped.
type Result struct {
	RunID         string  `json:"run_id"`
	ForecastID    string  `json:"forecast_id"`
	Status        Status  `json:"status"`
	Reason        string  `json:"reason,omitempty"`
	Stage         string  `json:"stage"`
	MatchedPairs  int     `json:"matched_pairs"`
	Metrics       Metrics `json:"metrics"`
	ValidationIDs []int64 `json:"validation_ids,omitempty"`
}

// matchedPair joins one prediction with its nearest observation.
type matchedPair struct {
	prediction domain.Prediction
	actual     domain.Actual
}

// Validator runs forecast validations. Each run operates on its own loaded
// prediction set and fetched observation set; instances are safe for
// concurrent use.
type Validator struct {
	store   Store
	fetcher ObservationFetcher
	logger  *slog.Logger
	metrics *observability.Metrics
	cfg     Config
}

// New creates a Validator.
func New(store Store, fetcher ObservationFetcher, logger *slog.Logger, metrics *observability.Metrics, cfg Config) *Validator {
	return &Validator{
		store:   store,
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg.withDefaults(),
	}
}

// ValidateForecast scores one forecast. Expected preconditions (missing
// forecast, too recent, nothing observed, nothing matched) come back as
// rejected Results; only infrastructure failures return an error.
func (v *Validator) ValidateForecast(ctx context.Context, forecastID string) (Result, error) {
	result := Result{
		RunID:      uuid.NewString(),
		ForecastID: forecastID,
		Stage:      "start",
	}

	forecast, found, err := v.store.GetForecast(ctx, forecastID)
	if err != nil {
		return Result{}, fmt.Errorf("load forecast %s: %w", forecastID, err)
	}
	if !found {
		return v.reject(result, ReasonForecastNotFound), nil
	}
	result.Stage = "forecast_loaded"

	age := domain.Clock().Now().Sub(forecast.CreatedAt)
	if age < v.cfg.MinForecastAge {
		v.logger.Info("forecast too recent to validate",
			"forecast", forecastID, "age", age, "min_age", v.cfg.MinForecastAge)
		return v.reject(result, ReasonForecastTooRecent), nil
	}

	predictions, err := v.store.ListPredictions(ctx, forecastID)
	if err != nil {
		return Result{}, fmt.Errorf("list predictions for %s: %w", forecastID, err)
	}
	result.Stage = "predictions_retrieved"

	actuals := v.fetchActuals(ctx, predictions)
	if len(actuals) == 0 {
		return v.reject(result, ReasonNoObservations), nil
	}
	result.Stage = "observations_fetched"

	pairs := v.matchPredictions(predictions, actuals)
	if len(pairs) == 0 {
		return v.reject(result, ReasonNoMatches), nil
	}
	result.Stage = "matched"
	result.MatchedPairs = len(pairs)

	result.Metrics = computeMetrics(pairs)
	result.Stage = "metrics_computed"

	ids, err := v.persistRecords(ctx, forecastID, pairs, result.Metrics)
	if err != nil {
		return Result{}, err
	}
	result.Stage = "persisted"
	result.Status = StatusCompleted
	result.ValidationIDs = ids

	v.metrics.ValidationRuns.WithLabelValues(string(StatusCompleted)).Inc()
	v.metrics.ValidationMatchedPairs.Observe(float64(len(pairs)))
	v.logger.Info("forecast validated",
		"forecast", forecastID, "run", result.RunID,
		"matched_pairs", len(pairs), "sample_size", result.Metrics.SampleSize)
	return result, nil
}

func (v *Validator) reject(result Result, reason string) Result {
	result.Status = StatusRejected
	result.Reason = reason
	v.metrics.ValidationRuns.WithLabelValues(string(StatusRejected)).Inc()
	return result
}

// fetchActuals requests observations once per distinct shore, sequentially,
// over the span of the predictions' valid times padded by the match window.
// Fetch failures for one shore are logged and the other shores still count;
// an all-shores failure surfaces as the no-observations rejection upstream.
func (v *Validator) fetchActuals(ctx context.Context, predictions []domain.Prediction) []domain.Actual {
	windows := make(map[string][2]time.Time)
	for _, p := range predictions {
		if p.ValidAt == nil {
			continue
		}
		w, ok := windows[p.Shore]
		if !ok {
			windows[p.Shore] = [2]time.Time{*p.ValidAt, *p.ValidAt}
			continue
		}
		if p.ValidAt.Before(w[0]) {
			w[0] = *p.ValidAt
		}
		if p.ValidAt.After(w[1]) {
			w[1] = *p.ValidAt
		}
		windows[p.Shore] = w
	}

	var actuals []domain.Actual
	for shore, w := range windows {
		start := w[0].Add(-v.cfg.MatchWindow)
		end := w[1].Add(v.cfg.MatchWindow)

		fetchStart := time.Now()
		observed, err := v.fetcher.FetchObservations(ctx, shore, start, end)
		v.metrics.ObservationFetchDuration.Observe(time.Since(fetchStart).Seconds())
		if err != nil {
			v.logger.Warn("observation fetch failed", "shore", shore, "error", err)
			continue
		}
		for i := range observed {
			observed[i].Shore = shore
		}
		actuals = append(actuals, observed...)
	}
	return actuals
}

// matchPredictions pairs each usable prediction with the nearest-in-time
// observation on the same shore inside the match window. Matching is
// per-prediction nearest-neighbor without exclusivity: one observation can
// satisfy several predictions.
func (v *Validator) matchPredictions(predictions []domain.Prediction, actuals []domain.Actual) []matchedPair {
	var pairs []matchedPair

	for _, p := range predictions {
		if p.ValidAt == nil || p.HeightFt == nil {
			continue
		}

		var best *domain.Actual
		bestDelta := v.cfg.MatchWindow + 1
		for i := range actuals {
			a := &actuals[i]
			if a.Shore != p.Shore || a.ObservedAt == nil || a.WaveHeightFt == nil {
				continue
			}
			delta := p.ValidAt.Sub(*a.ObservedAt)
			if delta < 0 {
				delta = -delta
			}
			if delta < bestDelta {
				bestDelta = delta
				best = a
			}
		}

		if best != nil && bestDelta <= v.cfg.MatchWindow {
			pairs = append(pairs, matchedPair{prediction: p, actual: *best})
		}
	}
	return pairs
}

// computeMetrics aggregates accuracy over matched pairs.
func computeMetrics(pairs []matchedPair) Metrics {
	var (
		sumAbs, sumSq  float64
		heightSamples  int
		categoryHits   int
		directionHits  int
		directionTotal int
	)

	for _, pair := range pairs {
		if pair.prediction.HeightFt != nil && pair.actual.WaveHeightFt != nil {
			err := *pair.prediction.HeightFt - *pair.actual.WaveHeightFt
			sumAbs += math.Abs(err)
			sumSq += err * err
			heightSamples++

			if pair.prediction.Category == CategoryForHeight(*pair.actual.WaveHeightFt) {
				categoryHits++
			}
		}

		if deg, ok := predictedBearing(pair.prediction); ok && pair.actual.DirectionDeg != nil {
			directionTotal++
			if domain.AngularDifference(deg, *pair.actual.DirectionDeg) <= DirectionToleranceDegrees {
				directionHits++
			}
		}
	}

	m := Metrics{SampleSize: heightSamples}
	if heightSamples > 0 {
		mae := sumAbs / float64(heightSamples)
		rmse := math.Sqrt(sumSq / float64(heightSamples))
		m.MAE = &mae
		m.RMSE = &rmse
		m.CategoricalAccuracy = float64(categoryHits) / float64(heightSamples)
	}
	if directionTotal > 0 {
		acc := float64(directionHits) / float64(directionTotal)
		m.DirectionAccuracy = &acc
	}
	return m
}

// persistRecords writes one validation record per matched pair, each
// carrying its own errors plus the run-level MAE/RMSE.
func (v *Validator) persistRecords(ctx context.Context, forecastID string, pairs []matchedPair, metrics Metrics) ([]int64, error) {
	ids := make([]int64, 0, len(pairs))

	for _, pair := range pairs {
		actualID := pair.actual.ID
		if actualID == 0 {
			id, err := v.store.SaveActual(ctx, pair.actual)
			if err != nil {
				return nil, fmt.Errorf("save actual for prediction %d: %w", pair.prediction.ID, err)
			}
			actualID = id
		}

		record := domain.ValidationRecord{
			ForecastID:    forecastID,
			PredictionID:  pair.prediction.ID,
			ActualID:      actualID,
			CategoryMatch: false,
			MAE:           metrics.MAE,
			RMSE:          metrics.RMSE,
		}

		if pair.prediction.HeightFt != nil && pair.actual.WaveHeightFt != nil {
			heightErr := math.Abs(*pair.prediction.HeightFt - *pair.actual.WaveHeightFt)
			record.HeightError = &heightErr
			record.CategoryMatch = pair.prediction.Category == CategoryForHeight(*pair.actual.WaveHeightFt)
		}
		if pair.prediction.PeriodSec != nil && pair.actual.DominantPeriod != nil {
			periodErr := math.Abs(*pair.prediction.PeriodSec - *pair.actual.DominantPeriod)
			record.PeriodError = &periodErr
		}
		if deg, ok := predictedBearing(pair.prediction); ok && pair.actual.DirectionDeg != nil {
			dirErr := domain.AngularDifference(deg, *pair.actual.DirectionDeg)
			record.DirectionError = &dirErr
		}

		id, err := v.store.SaveValidation(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("save validation for prediction %d: %w", pair.prediction.ID, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// predictedBearing resolves a prediction's compass label to degrees.
func predictedBearing(p domain.Prediction) (float64, bool) {
	if p.Direction == nil {
		return 0, false
	}
	return domain.CompassToDegrees(*p.Direction)
}
