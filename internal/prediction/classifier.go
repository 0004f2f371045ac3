package prediction

import (
	"time"

	"trailcast/internal/types"
)

// Confidence scoring. A trail starts at BaseConfidence and gains a bonus for
// each optional attribute that is known.
const (
	BaseConfidence           = 50
	SoilConfidenceBonus      = 25
	AspectConfidenceBonus    = 10
	ElevationConfidenceBonus = 10
	MaxConfidence            = 100

	// SnowConfidence is fixed for the snow/ice override.
	SnowConfidence = 90

	// UnknownConfidence is reported when the region has no weather history.
	UnknownConfidence = 0
)

// Snow/ice override thresholds.
const (
	snowElevationFt         = 11000
	seasonalSnowElevationFt = 9500
	seasonalSnowTempC       = 5.0
	freezingC               = 0.0
)

// Dry-time ratios that separate the four weather-driven labels.
const (
	rideableRatio       = 1.5
	likelyRideableRatio = 1.0
	likelyMuddyRatio    = 0.5
)

// Input is everything the classifier needs for one trail.
type Input struct {
	Trail types.Trail

	// Window is the weather history of WeatherRegion, in any order.
	Window []types.WeatherDay

	// Region is the trail's nearest region. WeatherRegion supplied the
	// window and its station elevation is the lapse-rate baseline; it equals
	// Region unless the batch runner fell back to the default region.
	Region        types.Region
	WeatherRegion types.Region

	Now time.Time
}

// Classify produces the prediction for one trail. It is deterministic: equal
// inputs yield equal predictions.
func Classify(in Input) types.Prediction {
	t := in.Trail

	stationAvg := StationAverageTemp(in.Window)
	trailElevation := in.WeatherRegion.StationElevationM
	if t.ElevationMinM != nil {
		trailElevation = *t.ElevationMinM
	}
	corrected := CorrectedTemp(stationAvg, trailElevation, in.WeatherRegion.StationElevationM)

	base := TrailBaseDryHours(t)
	aspectMod := AspectModifier(t.DominantAspect)
	elevationMod := ElevationModifier(t.ElevationMinM)
	temperatureMod := TemperatureModifier(corrected)

	access := EvaluateAccess(t.Access, t.ElevationMinM, in.Now)

	p := types.Prediction{
		TrailID:     t.ID,
		PredictedAt: in.Now,
		Factors: types.Factors{
			Region:                in.Region.Name,
			WeatherRegion:         in.WeatherRegion.Name,
			SoilDrainageClass:     t.SoilDrainageClass,
			DominantAspect:        t.DominantAspect,
			ElevationMinM:         t.ElevationMinM,
			ElevationMaxM:         t.ElevationMaxM,
			RecentPrecipitationMM: RecentPrecipitationTotal(in.Window, RecentPrecipitationDays),
			BaseDryHours:          base,
			StationAvgTempC:       stationAvg,
			CorrectedTempC:        corrected,
			AspectModifier:        aspectMod,
			ElevationModifier:     elevationMod,
			TemperatureModifier:   temperatureMod,
			AccessRule:            access.Rule,
			WeatherDays:           len(in.Window),
		},
	}

	if access.Closed {
		p.Condition = types.ConditionClosed
		p.Confidence = access.Confidence
		return p
	}

	p.EffectiveDryHours = EffectiveDryHours(base, aspectMod, elevationMod, temperatureMod)
	p.HoursSinceRain = HoursSinceSignificantRain(in.Window, in.Now)

	if snowLikely(corrected, t.ElevationMinM, in.Now) {
		p.Condition = types.ConditionSnow
		p.Confidence = SnowConfidence
		return p
	}

	if len(in.Window) == 0 {
		p.Condition = types.ConditionUnknown
		p.Confidence = UnknownConfidence
		return p
	}

	p.Condition = conditionFromDryTime(p.HoursSinceRain, p.EffectiveDryHours)
	p.Confidence = Confidence(t)
	return p
}

// Confidence scores how much of the trail's optional data is known.
func Confidence(t types.Trail) int {
	c := BaseConfidence
	if t.SoilDrainageClass != nil {
		c += SoilConfidenceBonus
	}
	if t.DominantAspect != nil {
		c += AspectConfidenceBonus
	}
	if t.ElevationMinM != nil {
		c += ElevationConfidenceBonus
	}
	return min(c, MaxConfidence)
}

func snowLikely(correctedTempC float64, elevationMinM *int, now time.Time) bool {
	if correctedTempC < freezingC {
		return true
	}
	if elevationMinM == nil || !InSnowSeason(now) {
		return false
	}
	elevationFt := float64(*elevationMinM) * FeetPerMeter
	if elevationFt > snowElevationFt {
		return true
	}
	return elevationFt > seasonalSnowElevationFt && correctedTempC < seasonalSnowTempC
}

func conditionFromDryTime(hoursSinceRain, effectiveDryHours int) types.Condition {
	h := float64(hoursSinceRain)
	e := float64(effectiveDryHours)
	switch {
	case h > e*rideableRatio:
		return types.ConditionRideable
	case h > e*likelyRideableRatio:
		return types.ConditionLikelyRideable
	case h > e*likelyMuddyRatio:
		return types.ConditionLikelyMuddy
	default:
		return types.ConditionMuddy
	}
}
