package domain

import "math"

// compassDegrees maps the 16-point compass rose to bearings. NDBC spectral
// summary files report swell and wind-wave directions as compass points, with
// "MM" as the missing-data sentinel.
var compassDegrees = map[string]float64{
	"N": 0, "NNE": 22.5, "NE": 45, "ENE": 67.5,
	"E": 90, "ESE": 112.5, "SE": 135, "SSE": 157.5,
	"S": 180, "SSW": 202.5, "SW": 225, "WSW": 247.5,
	"W": 270, "WNW": 292.5, "NW": 315, "NNW": 337.5,
}

// CompassToDegrees converts a 16-point compass label to a bearing.
// Returns false for unknown labels and the "MM" sentinel.
func CompassToDegrees(label string) (float64, bool) {
	deg, ok := compassDegrees[label]
	return deg, ok
}

// NormalizeDegrees maps any angle to [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// AngularDifference returns the smallest angle between two bearings,
// always in [0, 180]. 350 vs 10 is 20, never 340.
func AngularDifference(a, b float64) float64 {
	diff := math.Abs(NormalizeDegrees(a) - NormalizeDegrees(b))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}
