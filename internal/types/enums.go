package types

import "strings"

// Condition is the rideability label produced for a trail by one prediction run.
type Condition string

const (
	ConditionRideable       Condition = "rideable"
	ConditionLikelyRideable Condition = "likely_rideable"
	ConditionLikelyMuddy    Condition = "likely_muddy"
	ConditionMuddy          Condition = "muddy"
	ConditionSnow           Condition = "snow"
	ConditionClosed         Condition = "closed"
	// ConditionUnknown is reserved for trails whose region has no weather history at all.
	ConditionUnknown        Condition = "unknown"
)

// AllConditions lists every label in presentation order. Batch summaries are
// zero-initialised from this list so that every label is always present.
var AllConditions = []Condition{
	ConditionRideable,
	ConditionLikelyRideable,
	ConditionLikelyMuddy,
	ConditionMuddy,
	ConditionSnow,
	ConditionClosed,
	ConditionUnknown,
}

// Valid reports whether c is one of the defined labels.
func (c Condition) Valid() bool {
	for _, known := range AllConditions {
		if c == known {
			return true
		}
	}
	return false
}

// DrainageClass is the USDA soil survey drainage category of a trail's dominant soil.
type DrainageClass string

const (
	DrainageExcessively    DrainageClass = "Excessively drained"
	DrainageWell           DrainageClass = "Well drained"
	DrainageModeratelyWell DrainageClass = "Moderately well drained"
	DrainageSomewhatPoorly DrainageClass = "Somewhat poorly drained"
	DrainagePoorly         DrainageClass = "Poorly drained"
	DrainageVeryPoorly     DrainageClass = "Very poorly drained"
)

// AllDrainageClasses lists the six recognised classes from fastest to slowest drying.
var AllDrainageClasses = []DrainageClass{
	DrainageExcessively,
	DrainageWell,
	DrainageModeratelyWell,
	DrainageSomewhatPoorly,
	DrainagePoorly,
	DrainageVeryPoorly,
}

// ParseDrainageClass matches s case-insensitively against the USDA class names.
// The boolean is false for anything that is not one of the six classes.
func ParseDrainageClass(s string) (DrainageClass, bool) {
	s = strings.TrimSpace(s)
	for _, dc := range AllDrainageClasses {
		if strings.EqualFold(s, string(dc)) {
			return dc, true
		}
	}
	return "", false
}

// Aspect is the compass direction a slope predominantly faces.
type Aspect string

const (
	AspectN  Aspect = "N"
	AspectNE Aspect = "NE"
	AspectE  Aspect = "E"
	AspectSE Aspect = "SE"
	AspectS  Aspect = "S"
	AspectSW Aspect = "SW"
	AspectW  Aspect = "W"
	AspectNW Aspect = "NW"
)

// AllAspects lists the eight compass directions clockwise from north.
var AllAspects = []Aspect{AspectN, AspectNE, AspectE, AspectSE, AspectS, AspectSW, AspectW, AspectNW}

// ParseAspect accepts a compass abbreviation in any case ("sw", " NE ").
func ParseAspect(s string) (Aspect, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, a := range AllAspects {
		if s == string(a) {
			return a, true
		}
	}
	return "", false
}

// AccessRule records which access-text rule decided a trail's closure state.
type AccessRule string

const (
	AccessRuleNone      AccessRule = "none"
	AccessRulePermanent AccessRule = "permanent"
	AccessRuleDateRange AccessRule = "date_range"
	AccessRuleSeasonal  AccessRule = "seasonal_heuristic"
	AccessRuleUnparsed  AccessRule = "unrecognized"
)
