// Package ndbc fetches observed buoy readings from NDBC realtime2 spectral
// summary files and adapts them into the validation engine's Actual records.
package ndbc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/stonezone/surfcastai/internal/domain"
	"github.com/stonezone/surfcastai/internal/observability"
	"github.com/stonezone/surfcastai/internal/spectral"
	"github.com/stonezone/surfcastai/internal/validation"
)

const metersToFeet = 3.28084

// Client implements validation.ObservationFetcher against the NDBC
// realtime2 file server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	decomposer *spectral.Decomposer
	logger     *slog.Logger
}

// NewClient creates an NDBC client. baseURL is the realtime2 root without a
// trailing slash.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		decomposer: spectral.New(spectral.DefaultConfig(), logger, metrics),
		logger:     logger,
	}
}

// FetchObservations downloads each of the shore's buoys and returns the
// decomposed readings inside [start, end]. A buoy that fails to download or
// parse is logged and skipped; the call errors only when the shore is
// unknown or every buoy failed.
func (c *Client) FetchObservations(ctx context.Context, shore string, start, end time.Time) ([]domain.Actual, error) {
	buoys, ok := validation.BuoysForShore(shore)
	if !ok {
		return nil, fmt.Errorf("unknown shore %q", shore)
	}

	var actuals []domain.Actual
	failures := 0
	for _, buoy := range buoys {
		readings, err := c.fetchBuoy(ctx, buoy, start, end)
		if err != nil {
			c.logger.Warn("buoy fetch failed", "shore", shore, "buoy", buoy, "error", err)
			failures++
			continue
		}
		actuals = append(actuals, readings...)
	}

	if failures == len(buoys) {
		return nil, fmt.Errorf("all %d buoys failed for shore %s", len(buoys), shore)
	}
	return actuals, nil
}

func (c *Client) fetchBuoy(ctx context.Context, buoy string, start, end time.Time) ([]domain.Actual, error) {
	url := fmt.Sprintf("%s/%s.spec", c.baseURL, buoy)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ndbc status %d: %s", resp.StatusCode, body)
	}

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	var actuals []domain.Actual
	for _, result := range c.decomposer.DecomposeAll(buoy, lines) {
		if result.Timestamp.Before(start) || result.Timestamp.After(end) {
			continue
		}
		actuals = append(actuals, toActual(result))
	}
	return actuals, nil
}

// toActual maps one spectral decomposition to an observed reading. Wave
// height prefers the summary's raw total over the dominant component, and
// meters become feet to match the prediction units.
func toActual(result domain.SpectralAnalysisResult) domain.Actual {
	observedAt := result.Timestamp
	actual := domain.Actual{
		BuoyID:     result.BuoyID,
		ObservedAt: &observedAt,
		Source:     "ndbc",
	}

	if result.RawTotalHeight != nil {
		h := *result.RawTotalHeight * metersToFeet
		actual.WaveHeightFt = &h
	} else if result.Dominant != nil {
		h := result.Dominant.HeightMeters * metersToFeet
		actual.WaveHeightFt = &h
	}

	if result.Dominant != nil {
		period := result.Dominant.PeriodSeconds
		direction := result.Dominant.DirectionDegrees
		actual.DominantPeriod = &period
		actual.DirectionDeg = &direction
	} else if result.MeanDirection != nil {
		actual.DirectionDeg = result.MeanDirection
	}

	return actual
}
