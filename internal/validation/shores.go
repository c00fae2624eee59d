package validation

// shoreBuoys maps each named shore to the NDBC buoys that observe it.
// Two buoys per shore: a nearshore station and an offshore reference.
var shoreBuoys = map[string][]string{
	"north_shore": {"51201", "51001"},
	"south_shore": {"51211", "51210"},
	"west_side":   {"51212", "51003"},
}

// BuoysForShore returns the buoy identifiers observing a shore.
func BuoysForShore(shore string) ([]string, bool) {
	buoys, ok := shoreBuoys[shore]
	return buoys, ok
}

// Shores returns the known shore keys.
func Shores() []string {
	keys := make([]string, 0, len(shoreBuoys))
	for k := range shoreBuoys {
		keys = append(keys, k)
	}
	return keys
}

// CategoryForHeight buckets a wave height in feet into the reporting
// categories. Boundaries are half-open on the low end: 4.0 ft is already
// "moderate", 3.999 ft is still "small".
func CategoryForHeight(heightFt float64) string {
	switch {
	case heightFt < 4:
		return "small"
	case heightFt < 8:
		return "moderate"
	case heightFt < 12:
		return "large"
	default:
		return "extra_large"
	}
}
