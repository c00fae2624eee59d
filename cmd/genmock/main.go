// Command genmock seeds local development fixtures: a sample forecast with
// per-shore predictions in the database, and a set of analysis documents
// ready to publish to the source topic. It uses the real domain and store
// packages so seeded rows match pipeline behavior exactly.
//
// Usage:
//
//	go run ./cmd/genmock -db data/surfcast.db -analysis-out data/mock/analyses.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/stonezone/surfcastai/internal/domain"
	"github.com/stonezone/surfcastai/internal/store/sqlite"
	"github.com/stonezone/surfcastai/internal/validation"
)

var baseDate = time.Date(2025, time.October, 8, 12, 0, 0, 0, time.UTC)

var analysisTexts = []string{
	"Storm-force low near 45N 155E with winds to 50 knots, central pressure 955 mb, " +
		"a fetch of 600 nm, persisting for 72 hours",
	"Gale developing over the Aleutian waters with winds to 45 knots and a fetch of 400 nm",
	"Deepening low pressure southeast of New Zealand with storm-force winds to 55 knots " +
		"lasting 48 hours",
}

// shoreOutlook is one seeded per-shore prediction row.
type shoreOutlook struct {
	shore     string
	heightFt  float64
	periodSec float64
	direction string
}

var outlooks = []shoreOutlook{
	{shore: "north_shore", heightFt: 6.5, periodSec: 15, direction: "NW"},
	{shore: "west_side", heightFt: 4.0, periodSec: 14, direction: "WNW"},
	{shore: "south_shore", heightFt: 1.5, periodSec: 12, direction: "S"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dbPath := flag.String("db", "data/surfcast.db", "path to the forecast database")
	analysisOut := flag.String("analysis-out", "data/mock/analyses.json", "output path for analysis document fixtures")
	forecastID := flag.String("forecast-id", "fc_"+baseDate.Format("20060102"), "ID of the seeded forecast")
	flag.Parse()

	ctx := context.Background()

	if err := seedForecast(ctx, *dbPath, *forecastID); err != nil {
		return fmt.Errorf("seed forecast: %w", err)
	}
	if err := writeAnalyses(*analysisOut); err != nil {
		return fmt.Errorf("write analyses: %w", err)
	}

	fmt.Printf("seeded forecast %s into %s\n", *forecastID, *dbPath)
	fmt.Printf("wrote %d analysis fixtures to %s\n", len(analysisTexts), *analysisOut)
	return nil
}

// seedForecast inserts one forecast with a prediction per shore, valid 36
// hours after issue so a fresh seed is immediately old enough to validate
// against day-old observations.
func seedForecast(ctx context.Context, dbPath, forecastID string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveForecast(ctx, domain.Forecast{ID: forecastID, CreatedAt: baseDate}); err != nil {
		return err
	}

	validAt := baseDate.Add(36 * time.Hour)
	for _, o := range outlooks {
		p := domain.Prediction{
			ForecastID: forecastID,
			Shore:      o.shore,
			IssuedAt:   baseDate,
			ValidAt:    &validAt,
			HeightFt:   &o.heightFt,
			PeriodSec:  &o.periodSec,
			Direction:  &o.direction,
			Category:   validation.CategoryForHeight(o.heightFt),
			Confidence: 0.75,
		}
		if _, err := store.SavePrediction(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func writeAnalyses(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	docs := make([]domain.AnalysisDocument, 0, len(analysisTexts))
	for i, text := range analysisTexts {
		docs = append(docs, domain.AnalysisDocument{
			ID:       fmt.Sprintf("analysis-%s-%03d", baseDate.Format("20060102"), i+1),
			Text:     text,
			IssuedAt: baseDate,
			Source:   "opc",
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}
