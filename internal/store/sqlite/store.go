// Package sqlite persists forecasts, predictions, actual observations, and
// validation records in a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stonezone/surfcastai/internal/domain"
)

// Store implements the validation engine's persistence collaborator.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS forecasts (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS predictions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			forecast_id TEXT NOT NULL REFERENCES forecasts(id),
			shore TEXT NOT NULL,
			issued_at DATETIME NOT NULL,
			valid_at DATETIME,
			height_ft REAL,
			period_sec REAL,
			direction TEXT,
			category TEXT NOT NULL,
			confidence REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_predictions_forecast ON predictions(forecast_id);
		CREATE TABLE IF NOT EXISTS actuals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			buoy_id TEXT NOT NULL,
			shore TEXT NOT NULL,
			observed_at DATETIME,
			wave_height_ft REAL,
			dominant_period REAL,
			direction_deg REAL,
			source TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS validations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			forecast_id TEXT NOT NULL REFERENCES forecasts(id),
			prediction_id INTEGER NOT NULL REFERENCES predictions(id),
			actual_id INTEGER NOT NULL REFERENCES actuals(id),
			height_error REAL,
			period_error REAL,
			direction_error REAL,
			category_match INTEGER NOT NULL,
			mae REAL,
			rmse REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveForecast inserts a forecast header, ignoring duplicates.
func (s *Store) SaveForecast(ctx context.Context, forecast domain.Forecast) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO forecasts (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		forecast.ID, forecast.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save forecast %s: %w", forecast.ID, err)
	}
	return nil
}

// GetForecast loads one forecast header. Absence is reported via the boolean.
func (s *Store) GetForecast(ctx context.Context, forecastID string) (domain.Forecast, bool, error) {
	var f domain.Forecast
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM forecasts WHERE id = ?`, forecastID,
	).Scan(&f.ID, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Forecast{}, false, nil
	}
	if err != nil {
		return domain.Forecast{}, false, fmt.Errorf("get forecast %s: %w", forecastID, err)
	}
	return f, true, nil
}

// SavePrediction inserts one prediction row and returns its ID.
func (s *Store) SavePrediction(ctx context.Context, p domain.Prediction) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO predictions (forecast_id, shore, issued_at, valid_at, height_ft, period_sec, direction, category, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ForecastID, p.Shore, p.IssuedAt.UTC(), nullableTime(p.ValidAt),
		p.HeightFt, p.PeriodSec, p.Direction, p.Category, p.Confidence,
	)
	if err != nil {
		return 0, fmt.Errorf("save prediction for %s: %w", p.ForecastID, err)
	}
	return res.LastInsertId()
}

// ListPredictions returns all predictions belonging to a forecast.
func (s *Store) ListPredictions(ctx context.Context, forecastID string) ([]domain.Prediction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, forecast_id, shore, issued_at, valid_at, height_ft, period_sec, direction, category, confidence
		 FROM predictions WHERE forecast_id = ? ORDER BY id`, forecastID)
	if err != nil {
		return nil, fmt.Errorf("list predictions for %s: %w", forecastID, err)
	}
	defer rows.Close()

	var predictions []domain.Prediction
	for rows.Next() {
		var p domain.Prediction
		var validAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.ForecastID, &p.Shore, &p.IssuedAt, &validAt,
			&p.HeightFt, &p.PeriodSec, &p.Direction, &p.Category, &p.Confidence); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if validAt.Valid {
			t := validAt.Time
			p.ValidAt = &t
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// SaveActual inserts one observed buoy reading and returns its ID.
func (s *Store) SaveActual(ctx context.Context, a domain.Actual) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO actuals (buoy_id, shore, observed_at, wave_height_ft, dominant_period, direction_deg, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.BuoyID, a.Shore, nullableTime(a.ObservedAt),
		a.WaveHeightFt, a.DominantPeriod, a.DirectionDeg, a.Source,
	)
	if err != nil {
		return 0, fmt.Errorf("save actual for buoy %s: %w", a.BuoyID, err)
	}
	return res.LastInsertId()
}

// SaveValidation inserts one validation record and returns its ID.
func (s *Store) SaveValidation(ctx context.Context, r domain.ValidationRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO validations (forecast_id, prediction_id, actual_id, height_error, period_error, direction_error, category_match, mae, rmse)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ForecastID, r.PredictionID, r.ActualID,
		r.HeightError, r.PeriodError, r.DirectionError, r.CategoryMatch, r.MAE, r.RMSE,
	)
	if err != nil {
		return 0, fmt.Errorf("save validation for prediction %d: %w", r.PredictionID, err)
	}
	return res.LastInsertId()
}

// ListValidations returns the validation records of one forecast.
func (s *Store) ListValidations(ctx context.Context, forecastID string) ([]domain.ValidationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, forecast_id, prediction_id, actual_id, height_error, period_error, direction_error, category_match, mae, rmse
		 FROM validations WHERE forecast_id = ? ORDER BY id`, forecastID)
	if err != nil {
		return nil, fmt.Errorf("list validations for %s: %w", forecastID, err)
	}
	defer rows.Close()

	var records []domain.ValidationRecord
	for rows.Next() {
		var r domain.ValidationRecord
		if err := rows.Scan(&r.ID, &r.ForecastID, &r.PredictionID, &r.ActualID,
			&r.HeightError, &r.PeriodError, &r.DirectionError, &r.CategoryMatch, &r.MAE, &r.RMSE); err != nil {
			return nil, fmt.Errorf("scan validation: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
