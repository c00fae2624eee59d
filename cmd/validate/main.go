// Command validate checks one stored forecast against observed buoy data.
// It loads the forecast's predictions from the local database, fetches NDBC
// observations around each prediction's valid time, matches the two sets,
// and persists accuracy metrics.
//
// Usage:
//
//	go run ./cmd/validate -forecast fc_20251008
//	go run ./cmd/validate -forecast fc_20251008 -db data/surfcast.db -json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/stonezone/surfcastai/internal/adapter/ndbc"
	"github.com/stonezone/surfcastai/internal/config"
	"github.com/stonezone/surfcastai/internal/observability"
	"github.com/stonezone/surfcastai/internal/store/sqlite"
	"github.com/stonezone/surfcastai/internal/validation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	forecastID := flag.String("forecast", "", "forecast ID to validate")
	dbPath := flag.String("db", "", "path to the forecast database (defaults to DATABASE_PATH)")
	asJSON := flag.Bool("json", false, "print the full result as JSON")
	flag.Parse()

	if *forecastID == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -forecast")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *dbPath == "" {
		*dbPath = cfg.DatabasePath
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting()

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	client := ndbc.NewClient(cfg.NDBCBaseURL, cfg.NDBCTimeout, logger, metrics)
	fetcher := ndbc.NewCachedFetcher(client, cfg.ObservationCacheSize, metrics)

	validator := validation.New(store, fetcher, logger, metrics, validation.Config{
		MinForecastAge: cfg.MinForecastAge,
		MatchWindow:    cfg.MatchWindow,
	})

	result, err := validator.ValidateForecast(context.Background(), *forecastID)
	if err != nil {
		return fmt.Errorf("validate forecast %s: %w", *forecastID, err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	if result.Status == validation.StatusRejected {
		os.Exit(2)
	}
	return nil
}

func printResult(r validation.Result) {
	fmt.Printf("run:       %s\n", r.RunID)
	fmt.Printf("forecast:  %s\n", r.ForecastID)
	fmt.Printf("status:    %s\n", r.Status)
	if r.Reason != "" {
		fmt.Printf("reason:    %s\n", r.Reason)
	}
	if r.Status != validation.StatusCompleted {
		return
	}

	fmt.Printf("matched:   %d pairs\n", r.MatchedPairs)
	m := r.Metrics
	if m.MAE != nil {
		fmt.Printf("MAE:       %.2f ft\n", *m.MAE)
	}
	if m.RMSE != nil {
		fmt.Printf("RMSE:      %.2f ft\n", *m.RMSE)
	}
	fmt.Printf("category:  %.0f%% accurate\n", m.CategoricalAccuracy*100)
	if m.DirectionAccuracy != nil {
		fmt.Printf("direction: %.0f%% within tolerance\n", *m.DirectionAccuracy*100)
	}
	fmt.Printf("samples:   %d\n", m.SampleSize)
}
