// Package physics implements deep-water swell propagation: group velocity,
// great-circle distance, travel time, arrival arithmetic, and an empirical
// period estimate from storm parameters. Everything here is a pure function
// of its arguments; callers own validation and logging.
package physics

import (
	"math"
	"time"

	"github.com/stonezone/surfcastai/internal/domain"
)

const (
	gravity       = 9.81     // m/s²
	earthRadiusKm = 6371.0   // spherical Earth
	kmPerNm       = 1.852    // 1 nautical mile in km
	msPerKnot     = 0.514444 // 1 knot in m/s
)

// GroupVelocity returns the deep-water group velocity in m/s for a wave of
// the given period: Cg = gT/4π. The formula is evaluated literally for
// non-positive periods; validating T > 0 is the caller's job.
func GroupVelocity(periodSeconds float64) float64 {
	return gravity * periodSeconds / (4 * math.Pi)
}

// GreatCircleDistanceNm returns the haversine distance between two points in
// nautical miles. Handles date-line crossings and near-antipodal pairs
// without numerical blow-up (atan2 form rather than acos).
func GreatCircleDistanceNm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c / kmPerNm
}

// TravelTime returns the hours for swell of the given period to travel from
// source to target, along with the distance in nautical miles and the group
// velocity converted to knots.
func TravelTime(srcLat, srcLon, periodSeconds, dstLat, dstLon float64) (hours, distanceNm, speedKt float64) {
	distanceNm = GreatCircleDistanceNm(srcLat, srcLon, dstLat, dstLon)
	speedKt = GroupVelocity(periodSeconds) / msPerKnot
	hours = distanceNm / speedKt
	return hours, distanceNm, speedKt
}

// ArrivalDetails bundles the intermediate physical quantities of one arrival
// calculation for audit and logging.
type ArrivalDetails struct {
	Source          domain.Geo
	Target          domain.Geo
	PeriodSeconds   float64
	DistanceNm      float64
	GroupVelocityMs float64
	GroupVelocityKt float64
	TravelTimeHours float64
}

// Arrival returns when swell generated at the source reaches the target,
// plus the intermediate quantities used to get there.
func Arrival(srcLat, srcLon, periodSeconds float64, generated time.Time, dstLat, dstLon float64) (time.Time, ArrivalDetails) {
	hours, distanceNm, speedKt := TravelTime(srcLat, srcLon, periodSeconds, dstLat, dstLon)

	details := ArrivalDetails{
		Source:          domain.Geo{Lat: srcLat, Lon: srcLon},
		Target:          domain.Geo{Lat: dstLat, Lon: dstLon},
		PeriodSeconds:   periodSeconds,
		DistanceNm:      distanceNm,
		GroupVelocityMs: GroupVelocity(periodSeconds),
		GroupVelocityKt: speedKt,
		TravelTimeHours: hours,
	}

	arrival := generated.Add(time.Duration(hours * float64(time.Hour)))
	return arrival, details
}

// EstimatePeriodFromStorm estimates the dominant swell period a storm will
// produce. This is an empirical fit, not derived physics: base period is
// 0.4 × wind speed in m/s, boosted by fetch (linear toward a 1.8× cap around
// 1000 nm) and duration (linear toward a 1.5× cap), then clamped to [8, 20]
// seconds. The clamp bounds are load-bearing and must not change.
func EstimatePeriodFromStorm(windSpeedKt float64, fetchNm, durationHours *float64) float64 {
	windMs := windSpeedKt * msPerKnot
	period := 0.4 * windMs

	if fetchNm != nil {
		factor := 1 + *fetchNm/500*0.4
		period *= math.Min(1.8, factor)
	}
	if durationHours != nil {
		factor := 1 + *durationHours/48*0.4
		period *= math.Min(1.5, factor)
	}

	return math.Min(20, math.Max(8, period))
}
