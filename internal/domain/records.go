package domain

import "time"

// Forecast is the persisted header of one published forecast run.
type Forecast struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Prediction is one persisted per-shore forecast row. Optional fields are
// pointers: a forecast may carry a direction outlook without a height, or a
// height without a period, depending on what the upstream model produced.
type Prediction struct {
	ID         int64      `json:"id"`
	ForecastID string     `json:"forecast_id"`
	Shore      string     `json:"shore"`
	IssuedAt   time.Time  `json:"issued_at"`
	ValidAt    *time.Time `json:"valid_at,omitempty"`
	HeightFt   *float64   `json:"height_ft,omitempty"`
	PeriodSec  *float64   `json:"period_sec,omitempty"`
	Direction  *string    `json:"direction,omitempty"` // compass label, e.g. "NW"
	Category   string     `json:"category"`            // small | moderate | large | extra_large
	Confidence float64    `json:"confidence"`
}

// Actual is one observed buoy reading used to score predictions.
type Actual struct {
	ID             int64      `json:"id"`
	BuoyID         string     `json:"buoy_id"`
	Shore          string     `json:"shore"`
	ObservedAt     *time.Time `json:"observed_at,omitempty"`
	WaveHeightFt   *float64   `json:"wave_height_ft,omitempty"`
	DominantPeriod *float64   `json:"dominant_period,omitempty"`
	DirectionDeg   *float64   `json:"direction_deg,omitempty"`
	Source         string     `json:"source"`
}

// ValidationRecord links one prediction to its matched actual with per-field
// errors plus the run-level aggregate MAE/RMSE. A record exists only for a
// matched pair.
type ValidationRecord struct {
	ID             int64    `json:"id"`
	ForecastID     string   `json:"forecast_id"`
	PredictionID   int64    `json:"prediction_id"`
	ActualID       int64    `json:"actual_id"`
	HeightError    *float64 `json:"height_error,omitempty"`
	PeriodError    *float64 `json:"period_error,omitempty"`
	DirectionError *float64 `json:"direction_error,omitempty"`
	CategoryMatch  bool     `json:"category_match"`
	MAE            *float64 `json:"mae,omitempty"`
	RMSE           *float64 `json:"rmse,omitempty"`
}
