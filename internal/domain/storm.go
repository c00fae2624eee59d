package domain

import (
	"context"
	"fmt"
	"time"
)

// Geo is a latitude/longitude coordinate pair in decimal degrees.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// StormInfo is one detected low-pressure system mined from analysis text.
// Created by the extractor, mutated once by parameter estimation to fill
// missing fetch/duration, and never mutated after arrival calculation.
type StormInfo struct {
	ID              string    `json:"id"`
	Location        Geo       `json:"location"`
	WindSpeedKt     float64   `json:"wind_speed_kt"`
	CentralPressure *float64  `json:"central_pressure_mb,omitempty"` // 900–1100 mb
	FetchNm         *float64  `json:"fetch_nm,omitempty"`
	DurationHours   *float64  `json:"duration_hours,omitempty"`
	DetectedAt      time.Time `json:"detected_at"`
	Source          string    `json:"source"`
	Confidence      float64   `json:"confidence"` // additive heuristic score, 0–1
}

// NewStormInfo validates and constructs a StormInfo. Out-of-range values are
// rejected here rather than silently corrected; callers that want tolerance
// must filter before constructing.
func NewStormInfo(id string, loc Geo, windSpeedKt float64, detectedAt time.Time, source string, confidence float64) (StormInfo, error) {
	if loc.Lat < -90 || loc.Lat > 90 {
		return StormInfo{}, fmt.Errorf("storm %s: latitude %.2f outside [-90, 90]", id, loc.Lat)
	}
	if loc.Lon < -180 || loc.Lon > 180 {
		return StormInfo{}, fmt.Errorf("storm %s: longitude %.2f outside [-180, 180]", id, loc.Lon)
	}
	if windSpeedKt <= 0 {
		return StormInfo{}, fmt.Errorf("storm %s: wind speed %.1f kt must be positive", id, windSpeedKt)
	}
	if confidence < 0 || confidence > 1 {
		return StormInfo{}, fmt.Errorf("storm %s: confidence %.2f outside [0, 1]", id, confidence)
	}
	return StormInfo{
		ID:          id,
		Location:    loc,
		WindSpeedKt: windSpeedKt,
		DetectedAt:  detectedAt,
		Source:      source,
		Confidence:  confidence,
	}, nil
}

// SetCentralPressure attaches a central pressure reading, rejecting values
// outside the plausible 900–1100 mb range.
func (s *StormInfo) SetCentralPressure(mb float64) error {
	if mb < 900 || mb > 1100 {
		return fmt.Errorf("storm %s: central pressure %.0f mb outside [900, 1100]", s.ID, mb)
	}
	s.CentralPressure = &mb
	return nil
}

// ArrivalPrediction is the derived output of propagating one storm to the
// target coastline. It is not persisted as its own entity.
type ArrivalPrediction struct {
	StormID           string    `json:"storm_id"`
	Source            Geo       `json:"source"`
	Target            Geo       `json:"target"`
	DistanceNm        float64   `json:"distance_nm"`
	PeriodSeconds     float64   `json:"period_seconds"`
	GroupVelocityKt   float64   `json:"group_velocity_kt"`
	TravelTimeHours   float64   `json:"travel_time_hours"`
	ArrivalTime       time.Time `json:"arrival_time"`
	EstimatedHeightFt float64   `json:"estimated_height_ft"`
	Confidence        float64   `json:"confidence"` // inherited from the storm
}

// RawAnalysis is an unprocessed analysis-text message from the source topic.
type RawAnalysis struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// AnalysisDocument is the JSON payload carried by a RawAnalysis message:
// one block of free-form marine weather analysis plus its issue time.
type AnalysisDocument struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	IssuedAt time.Time `json:"issued_at"`
	Source   string    `json:"source"`
}

// PredictionBatch is the serialized form destined for the sink topic: all
// arrival predictions derived from one analysis document.
type PredictionBatch struct {
	AnalysisID  string              `json:"analysis_id"`
	Predictions []ArrivalPrediction `json:"predictions"`
	ProcessedAt time.Time           `json:"processed_at"`
}
