package prediction

import (
	"math"

	"trailcast/internal/types"
)

// HighElevationThresholdM is roughly 8000 ft. Trails whose lowest point sits
// above it dry more slowly.
const HighElevationThresholdM = 2438

// AspectModifier scales dry time by slope orientation. South faces get the
// most sun. The values are empirical and must not be interpolated.
func AspectModifier(a *types.Aspect) float64 {
	if a == nil {
		return 1.0
	}
	switch *a {
	case types.AspectS:
		return 0.6
	case types.AspectSE, types.AspectSW:
		return 0.7
	case types.AspectE, types.AspectW:
		return 0.85
	case types.AspectNE, types.AspectNW:
		return 1.1
	case types.AspectN:
		return 1.3
	default:
		return 1.0
	}
}

// ElevationModifier is 1.2 above HighElevationThresholdM and 1.0 otherwise,
// including when the elevation is unknown.
func ElevationModifier(elevationMinM *int) float64 {
	if elevationMinM != nil && *elevationMinM > HighElevationThresholdM {
		return 1.2
	}
	return 1.0
}

// TemperatureModifier is a step function of the elevation-corrected average
// temperature. A value exactly on a boundary belongs to the colder bucket.
func TemperatureModifier(tempC float64) float64 {
	switch {
	case tempC > 20:
		return 0.7
	case tempC > 10:
		return 1.0
	case tempC > 0:
		return 1.5
	default:
		return 3.0
	}
}

// EffectiveDryHours multiplies the base dry time by all three modifiers and
// rounds the product half away from zero. The modifiers are not rounded
// individually.
func EffectiveDryHours(baseDryHours int, aspectMod, elevationMod, temperatureMod float64) int {
	return int(math.Round(float64(baseDryHours) * aspectMod * elevationMod * temperatureMod))
}
