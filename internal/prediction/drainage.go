// Package prediction is the trail condition engine. Every function in it is a
// pure computation over its arguments: there is no I/O, no logging and no
// reading of the wall clock. Callers pass "now" explicitly and must use the
// same value for every trail in one run.
package prediction

import "trailcast/internal/types"

// DefaultBaseDryHours applies when a trail has neither a precomputed dry time
// nor a recognised drainage class.
const DefaultBaseDryHours = 48

// BaseDryHours returns the hours a soil of the given drainage class needs to
// dry after saturating rain.
func BaseDryHours(dc *types.DrainageClass) int {
	if dc == nil {
		return DefaultBaseDryHours
	}
	switch *dc {
	case types.DrainageExcessively:
		return 6
	case types.DrainageWell:
		return 24
	case types.DrainageModeratelyWell:
		return 48
	case types.DrainageSomewhatPoorly:
		return 72
	case types.DrainagePoorly:
		return 120
	case types.DrainageVeryPoorly:
		return 168
	default:
		return DefaultBaseDryHours
	}
}

// TrailBaseDryHours prefers the trail's precomputed base dry time and falls
// back to the drainage-class table. A stored zero is honoured as a value.
func TrailBaseDryHours(t types.Trail) int {
	if t.BaseDryHours != nil {
		return *t.BaseDryHours
	}
	return BaseDryHours(t.SoilDrainageClass)
}
