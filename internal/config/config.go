package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration
	BatchSize        int

	// Persistence and observation fetch.
	DatabasePath         string
	NDBCBaseURL          string
	NDBCTimeout          time.Duration
	ObservationCacheSize int

	// Validation tuning.
	MinForecastAge time.Duration
	MatchWindow    time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	ndbcTimeout, err := envDuration("NDBC_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	minAge, err := envDuration("MIN_FORECAST_AGE", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	matchWindow, err := envDuration("MATCH_WINDOW", 2*time.Hour)
	if err != nil {
		return nil, err
	}
	batchSize, err := envInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}
	cacheSize, err := envInt("OBSERVATION_CACHE_SIZE", 500)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:     splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: envOrDefault("KAFKA_SOURCE_TOPIC", "marine-analysis-text"),
		KafkaSinkTopic:   envOrDefault("KAFKA_SINK_TOPIC", "swell-arrival-predictions"),
		KafkaGroupID:     envOrDefault("KAFKA_GROUP_ID", "surfcast-core"),
		HTTPAddr:         envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		BatchSize:        batchSize,

		DatabasePath:         envOrDefault("DATABASE_PATH", "data/surfcast.db"),
		NDBCBaseURL:          envOrDefault("NDBC_BASE_URL", "https://www.ndbc.noaa.gov/data/realtime2"),
		NDBCTimeout:          ndbcTimeout,
		ObservationCacheSize: cacheSize,

		MinForecastAge: minAge,
		MatchWindow:    matchWindow,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("BATCH_SIZE must be positive")
	}
	if cfg.MatchWindow <= 0 {
		return nil, errors.New("MATCH_WINDOW must be positive")
	}

	return cfg, nil
}

// envOrDefault returns the environment value or the fallback when unset.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

// splitBrokers parses a comma-separated broker list, dropping empty entries.
func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
