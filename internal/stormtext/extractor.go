// Package stormtext mines free-form marine weather analysis for storm
// systems and turns them into swell arrival predictions for the target
// coastline. Extraction is fuzzy by design: explicit values are regex
// matched, missing ones are inferred from descriptor keywords or named
// storm-generation regions, and every storm carries an additive confidence
// score recording how much of it was explicit.
package stormtext

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stonezone/surfcastai/internal/domain"
	"github.com/stonezone/surfcastai/internal/physics"
)

// DefaultTarget is the fixed reference point arrivals are computed for:
// the north shore of Oahu.
var DefaultTarget = domain.Geo{Lat: 21.6, Lon: -158.1}

var (
	// coordPatterns is tried in order; the first match wins. All patterns
	// capture (lat, N|S, lon, E|W).
	coordPatterns = []*regexp.Regexp{
		// "45°N 155°E", "45.5°N, 155.2°E"
		regexp.MustCompile(`(?i)(\d{1,2}(?:\.\d+)?)\s*°\s*([NS])[,\s]+(\d{1,3}(?:\.\d+)?)\s*°\s*([EW])`),
		// "at 45.5N, 155.2E", "near 45N 155E"
		regexp.MustCompile(`(?i)(?:at|near)\s+(\d{1,2}(?:\.\d+)?)\s*([NS])[,\s]+(\d{1,3}(?:\.\d+)?)\s*([EW])`),
		// "latitude 45N longitude 155E"
		regexp.MustCompile(`(?i)latitude\s+(\d{1,2}(?:\.\d+)?)\s*([NS])[,\s]+?\s*longitude\s+(\d{1,3}(?:\.\d+)?)\s*([EW])`),
		// bare "45.5N 155.2E"
		regexp.MustCompile(`(?i)\b(\d{1,2}(?:\.\d+)?)([NS])[,\s]+(\d{1,3}(?:\.\d+)?)([EW])\b`),
	}

	windRe     = regexp.MustCompile(`(?i)(\d{1,3}(?:\.\d+)?)[\s-]*(?:knots?|kts?)\b`)
	pressureRe = regexp.MustCompile(`(?i)(\d{3,4})\s*(?:mb|hpa|millibars?)\b`)
	fetchRe    = regexp.MustCompile(`(?i)fetch\D{0,40}?(\d{2,4}(?:\.\d+)?)\s*(?:nautical\s+miles?|nm)\b`)
	durationRe = regexp.MustCompile(`(?i)(?:for|over|persist\w*\s+for|last\w*)\s+(?:the\s+next\s+)?(\d{1,3})\s*(?:hours?|hrs?)\b`)

	sentenceRe  = regexp.MustCompile(`\.\s+`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
)

// stormKeywords gates sections: anything without at least one indicator is
// discarded before the expensive extraction passes.
var stormKeywords = []string{
	"storm", "low pressure", "depression", "cyclone", "gale",
	"fetch", "deepening", "wind", "low at", "low near", "pressure system",
}

// region is one named storm-generation area, used both as a coordinate
// fallback when no explicit position parses and as the label source for
// storm IDs.
type region struct {
	slug     string
	keywords []string
	loc      domain.Geo
}

var regions = []region{
	{slug: "kamchatka", keywords: []string{"kamchatka"}, loc: domain.Geo{Lat: 50, Lon: 160}},
	{slug: "kuril", keywords: []string{"kuril"}, loc: domain.Geo{Lat: 46, Lon: 152}},
	{slug: "aleutian", keywords: []string{"aleutian"}, loc: domain.Geo{Lat: 52, Lon: -175}},
	{slug: "gulf_of_alaska", keywords: []string{"gulf of alaska"}, loc: domain.Geo{Lat: 55, Lon: -145}},
	{slug: "tasman", keywords: []string{"tasman"}, loc: domain.Geo{Lat: -40, Lon: 160}},
	{slug: "southern_ocean", keywords: []string{"southern ocean"}, loc: domain.Geo{Lat: -50, Lon: 160}},
	{slug: "new_zealand", keywords: []string{"new zealand"}, loc: domain.Geo{Lat: -42, Lon: 170}},
}

// Extractor parses analysis text into storms and storm batches into arrival
// predictions. It holds configuration only; one instance is safe for
// concurrent use.
type Extractor struct {
	target domain.Geo
	logger *slog.Logger
}

// New creates an Extractor predicting arrivals at the default target.
func New(logger *slog.Logger) *Extractor {
	return NewWithTarget(DefaultTarget, logger)
}

// NewWithTarget creates an Extractor for an arbitrary target coastline.
func NewWithTarget(target domain.Geo, logger *slog.Logger) *Extractor {
	return &Extractor{target: target, logger: logger}
}

// ExtractStorms mines one block of analysis text for storm systems. Sections
// that fail extraction are skipped, never fatal. Storm IDs embed the nearest
// named region, the detection date, and a per-call sequence number.
func (e *Extractor) ExtractStorms(text string, detectedAt time.Time, source string) []domain.StormInfo {
	var storms []domain.StormInfo
	counter := 0

	for _, section := range splitSections(text) {
		if !hasStormIndicator(section) {
			continue
		}

		loc, explicit, ok := extractCoordinates(section)
		if !ok {
			continue
		}

		wind := extractWindSpeed(section)
		pressure := extractPressure(section)
		fetch := extractFetch(section)
		duration := extractDuration(section)

		confidence := scoreConfidence(explicit, pressure != nil, fetch != nil, duration != nil)

		counter++
		id := fmt.Sprintf("%s_%s_%03d", nearestRegionSlug(loc), detectedAt.Format("20060102"), counter)

		storm, err := domain.NewStormInfo(id, loc, wind, detectedAt, source, confidence)
		if err != nil {
			e.logger.Warn("discarding storm section", "id", id, "error", err)
			counter--
			continue
		}
		if pressure != nil {
			if err := storm.SetCentralPressure(*pressure); err != nil {
				e.logger.Warn("ignoring pressure", "id", id, "error", err)
			}
		}
		storm.FetchNm = fetch
		storm.DurationHours = duration

		storms = append(storms, storm)
	}

	return storms
}

// EstimateMissingParameters fills absent fetch and duration from wind-speed
// and pressure tiers, so downstream period estimation always has something
// to work with. Explicit values are never overwritten.
func EstimateMissingParameters(s *domain.StormInfo) {
	if s.FetchNm == nil {
		var fetch float64
		switch {
		case s.WindSpeedKt >= 50:
			fetch = 600
		case s.WindSpeedKt >= 40:
			fetch = 400
		default:
			fetch = 250
		}
		s.FetchNm = &fetch
	}

	if s.DurationHours == nil {
		duration := 36.0
		if s.CentralPressure != nil {
			switch {
			case *s.CentralPressure < 970:
				duration = 72
			case *s.CentralPressure < 990:
				duration = 48
			}
		}
		s.DurationHours = &duration
	}
}

// CalculateArrivals propagates each storm to the target and returns the
// predictions sorted by arrival time. A storm whose calculation fails is
// logged and skipped; one bad storm never drops the batch.
func (e *Extractor) CalculateArrivals(storms []domain.StormInfo) []domain.ArrivalPrediction {
	predictions := make([]domain.ArrivalPrediction, 0, len(storms))

	for _, storm := range storms {
		prediction, err := e.arrivalFor(storm)
		if err != nil {
			e.logger.Warn("skipping storm arrival", "storm", storm.ID, "error", err)
			continue
		}
		predictions = append(predictions, prediction)
	}

	sort.Slice(predictions, func(i, j int) bool {
		return predictions[i].ArrivalTime.Before(predictions[j].ArrivalTime)
	})
	return predictions
}

func (e *Extractor) arrivalFor(storm domain.StormInfo) (domain.ArrivalPrediction, error) {
	period := physics.EstimatePeriodFromStorm(storm.WindSpeedKt, storm.FetchNm, storm.DurationHours)

	arrivalTime, details := physics.Arrival(
		storm.Location.Lat, storm.Location.Lon, period,
		storm.DetectedAt, e.target.Lat, e.target.Lon,
	)

	if math.IsNaN(details.DistanceNm) || details.DistanceNm <= 0 {
		return domain.ArrivalPrediction{}, fmt.Errorf("degenerate distance %.1f nm", details.DistanceNm)
	}
	if details.TravelTimeHours <= 0 || math.IsInf(details.TravelTimeHours, 0) {
		return domain.ArrivalPrediction{}, fmt.Errorf("degenerate travel time %.1f h", details.TravelTimeHours)
	}

	// Bounded linear decay with distance: the height never drops below 30%
	// of the wind-speed-scaled baseline.
	decay := math.Max(0.3, 1-details.DistanceNm/5000)
	height := 8.0 * (storm.WindSpeedKt / 50) * decay

	return domain.ArrivalPrediction{
		StormID:           storm.ID,
		Source:            storm.Location,
		Target:            e.target,
		DistanceNm:        details.DistanceNm,
		PeriodSeconds:     period,
		GroupVelocityKt:   details.GroupVelocityKt,
		TravelTimeHours:   details.TravelTimeHours,
		ArrivalTime:       arrivalTime,
		EstimatedHeightFt: height,
		Confidence:        storm.Confidence,
	}, nil
}

// splitSections breaks analysis text at blank-line paragraph breaks and
// sentence boundaries.
func splitSections(text string) []string {
	var sections []string
	for _, paragraph := range paragraphRe.Split(text, -1) {
		for _, sentence := range sentenceRe.Split(paragraph, -1) {
			s := strings.TrimSpace(sentence)
			if s != "" {
				sections = append(sections, s)
			}
		}
	}
	return sections
}

func hasStormIndicator(section string) bool {
	lower := strings.ToLower(section)
	for _, kw := range stormKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// extractCoordinates tries the explicit coordinate patterns in order, then
// falls back to named-region keywords. The second return reports whether the
// position was regex matched rather than region inferred.
func extractCoordinates(section string) (domain.Geo, bool, bool) {
	for _, pattern := range coordPatterns {
		m := pattern.FindStringSubmatch(section)
		if m == nil {
			continue
		}
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lon, errLon := strconv.ParseFloat(m[3], 64)
		if errLat != nil || errLon != nil {
			continue
		}
		if strings.EqualFold(m[2], "S") {
			lat = -lat
		}
		if strings.EqualFold(m[4], "W") {
			lon = -lon
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			continue
		}
		return domain.Geo{Lat: lat, Lon: lon}, true, true
	}

	lower := strings.ToLower(section)
	for _, r := range regions {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.loc, false, true
			}
		}
	}

	return domain.Geo{}, false, false
}

// extractWindSpeed regex-matches a knot value, falling back to descriptor
// keywords when nothing explicit validates.
func extractWindSpeed(section string) float64 {
	if m := windRe.FindStringSubmatch(section); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 10 && v <= 150 {
			return v
		}
	}

	lower := strings.ToLower(section)
	switch {
	case strings.Contains(lower, "storm-force"):
		return 50
	case strings.Contains(lower, "gale"):
		return 40
	case strings.Contains(lower, "strong"):
		return 35
	default:
		return 40
	}
}

func extractPressure(section string) *float64 {
	m := pressureRe.FindStringSubmatch(section)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 900 || v > 1050 {
		return nil
	}
	return &v
}

func extractFetch(section string) *float64 {
	m := fetchRe.FindStringSubmatch(section)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 50 || v > 2000 {
		return nil
	}
	return &v
}

func extractDuration(section string) *float64 {
	if m := durationRe.FindStringSubmatch(section); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 6 && v <= 240 {
			return &v
		}
	}

	lower := strings.ToLower(section)
	if strings.Contains(lower, "long-lived") || strings.Contains(lower, "persistent") {
		v := 72.0
		return &v
	}
	if strings.Contains(lower, "brief") || strings.Contains(lower, "short-lived") {
		v := 24.0
		return &v
	}
	return nil
}

// scoreConfidence is the additive heuristic score: 0.5 base, bonuses per
// explicitly extracted parameter, capped at 1.0. The weights are observable
// behavior; changing them is a compatibility break.
func scoreConfidence(explicitCoords, hasPressure, hasFetch, hasDuration bool) float64 {
	confidence := 0.5
	if explicitCoords {
		confidence += 0.2
	}
	if hasPressure {
		confidence += 0.15
	}
	if hasFetch {
		confidence += 0.1
	}
	if hasDuration {
		confidence += 0.05
	}
	return math.Min(1.0, confidence)
}

// nearestRegionSlug labels a position with the closest named generation
// region by plain degree-space distance. Labeling only; independent of the
// coordinate fallback.
func nearestRegionSlug(loc domain.Geo) string {
	best := regions[0].slug
	bestDist := math.Inf(1)
	for _, r := range regions {
		dLat := loc.Lat - r.loc.Lat
		dLon := loc.Lon - r.loc.Lon
		dist := math.Sqrt(dLat*dLat + dLon*dLon)
		if dist < bestDist {
			bestDist = dist
			best = r.slug
		}
	}
	return best
}
